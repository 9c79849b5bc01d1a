/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory RegistryStore for testing
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/suparena/artifactreplication/datastore"
	"github.com/suparena/artifactreplication/errors"
	"github.com/suparena/artifactreplication/registry"
	"github.com/suparena/artifactreplication/storagemodels"
)

// RegistryStore is an in-memory implementation of datastore.RegistryStore for testing
type RegistryStore struct {
	mu          sync.RWMutex
	data        map[string]storagemodels.RegistryEntry
	putError    error
	deleteError error
	listError   error

	puts    int
	deletes int
	lists   int
}

var _ datastore.RegistryStore = (*RegistryStore)(nil)

// New creates a new mock RegistryStore
func New() *RegistryStore {
	return &RegistryStore{
		data: make(map[string]storagemodels.RegistryEntry),
	}
}

// WithPutError makes Put operations return an error
func (m *RegistryStore) WithPutError(err error) *RegistryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *RegistryStore) WithDeleteError(err error) *RegistryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteError = err
	return m
}

// WithListError makes ListDestinations yield a single error
func (m *RegistryStore) WithListError(err error) *RegistryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listError = err
	return m
}

// Put stores an entry if the precondition holds
func (m *RegistryStore) Put(ctx context.Context, entry storagemodels.RegistryEntry, precondition storagemodels.Precondition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++

	if m.putError != nil {
		return m.putError
	}
	if entry.ID == "" {
		return errors.NewValidationError("id", "must not be empty")
	}

	_, exists := m.data[entry.ID]
	switch precondition {
	case storagemodels.MustNotExist:
		if exists {
			return errors.NewPreconditionFailedError(entry.ID, precondition.String(), nil)
		}
	case storagemodels.MustExist:
		if !exists {
			return errors.NewPreconditionFailedError(entry.ID, precondition.String(), nil)
		}
	default:
		return errors.NewValidationError("precondition", "unsupported precondition")
	}

	m.data[entry.ID] = entry
	return nil
}

// GetOne retrieves an entry by id
func (m *RegistryStore) GetOne(ctx context.Context, id string) (*storagemodels.RegistryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if entry, exists := m.data[id]; exists {
		return &entry, nil
	}
	return nil, errors.NewNotFoundError("RegistryEntry", id)
}

// Delete removes an entry by id; missing ids are ignored
func (m *RegistryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++

	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.data, id)
	return nil
}

// ListDestinations streams the destination of every entry in the destination partition
func (m *RegistryStore) ListDestinations(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[string] {
	options := storagemodels.ApplyStreamOptions(opts...)

	m.mu.Lock()
	m.lists++
	listErr := m.listError
	destinations := m.destinationsLocked()
	m.mu.Unlock()

	resultChan := make(chan storagemodels.StreamResult[string], options.BufferSize)

	go func() {
		defer close(resultChan)

		if listErr != nil {
			select {
			case <-ctx.Done():
			case resultChan <- storagemodels.StreamResult[string]{Error: listErr}:
			}
			return
		}

		for i, dest := range destinations {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult[string]{
				Item: dest,
				Meta: storagemodels.StreamMeta{
					Index:      int64(i),
					PageNumber: 1,
				},
			}:
			}
		}
	}()

	return resultChan
}

func (m *RegistryStore) destinationsLocked() []string {
	indexMap, _ := registry.GetIndexMap[storagemodels.RegistryEntry]()

	destinations := make([]string, 0, len(m.data))
	for _, entry := range m.data {
		keys := registry.ExpandKeys(indexMap, entry.KeyValues())
		if keys["gsi1_pk"] == storagemodels.DestinationPartition &&
			strings.HasPrefix(keys["gsi1_sk"], storagemodels.DestinationSortKeyPrefix) {
			destinations = append(destinations, entry.BucketArn)
		}
	}
	return destinations
}

// Helper methods for testing

// SetData directly sets the internal data map (for testing)
func (m *RegistryStore) SetData(data map[string]storagemodels.RegistryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}

// GetData returns a copy of the internal data map (for testing)
func (m *RegistryStore) GetData() map[string]storagemodels.RegistryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]storagemodels.RegistryEntry, len(m.data))
	for k, v := range m.data {
		result[k] = v
	}
	return result
}

// Count returns the number of stored entries
func (m *RegistryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Calls returns the number of Put, Delete and ListDestinations calls made so far
func (m *RegistryStore) Calls() (puts, deletes, lists int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts, m.deletes, m.lists
}

// Clear removes all data
func (m *RegistryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]storagemodels.RegistryEntry)
}
