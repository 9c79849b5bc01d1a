/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/artifactreplication/storagemodels"
)

// RegistryStore is durable access to the replication destination registry.
// Implementations must be safe for concurrent use.
type RegistryStore interface {
	// Put writes entry if precondition holds on entry.ID, otherwise it fails
	// with a PreconditionFailed error.
	Put(ctx context.Context, entry storagemodels.RegistryEntry, precondition storagemodels.Precondition) error

	// GetOne returns the entry for id, or a NotFound error.
	GetOne(ctx context.Context, id string) (*storagemodels.RegistryEntry, error)

	// Delete removes the entry for id. Deleting a missing id is a no-op.
	Delete(ctx context.Context, id string) error

	// ListDestinations lazily yields the destination reference of every
	// registered destination. The channel is closed when the sequence ends or
	// after the first error. Order is unspecified.
	ListDestinations(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[string]
}

// CollectDestinations drains ListDestinations into a slice, stopping at the first error.
func CollectDestinations(ctx context.Context, store RegistryStore, opts ...storagemodels.StreamOption) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var destinations []string
	for res := range store.ListDestinations(ctx, opts...) {
		if res.Error != nil {
			return nil, res.Error
		}
		destinations = append(destinations, res.Item)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return destinations, nil
}
