/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package badgerstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/suparena/artifactreplication/datastore"
	rerrors "github.com/suparena/artifactreplication/errors"
	"github.com/suparena/artifactreplication/registry"
	"github.com/suparena/artifactreplication/storagemodels"
)

const sep = "\x00"

var (
	entryPrefix = []byte("entry" + sep)
	indexPrefix = []byte("idx" + sep)
)

// Options configures the Badger registry store.
type Options struct {
	// Path to the database directory. If empty, uses in-memory mode.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
	// Logger receives Badger's internal logs and store debug logs.
	Logger *zerolog.Logger
}

// RegistryStore implements datastore.RegistryStore on an embedded Badger database.
// Entries are stored under their primary key and mirrored into an index keyed
// by gsi1_pk and gsi1_sk, like the DynamoDB layout.
type RegistryStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

var _ datastore.RegistryStore = (*RegistryStore)(nil)

// New opens a Badger-backed registry store.
func New(opts Options) (*RegistryStore, error) {
	badgerOpts := badger.DefaultOptions(opts.Path)

	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
		badgerOpts = badgerOpts.WithLogger(badgerLogger{logger: logger.With().Str("component", "badger").Logger()})
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &RegistryStore{db: db, logger: logger}, nil
}

// Close closes the Badger database.
func (s *RegistryStore) Close() error {
	return s.db.Close()
}

func expandKeys(id string) (map[string]string, error) {
	indexMap, ok := registry.GetIndexMap[storagemodels.RegistryEntry]()
	if !ok {
		return nil, rerrors.ErrNoIndexMap
	}
	return registry.ExpandKeys(indexMap, map[string]string{"id": id}), nil
}

func entryKey(keys map[string]string) []byte {
	return []byte(string(entryPrefix) + keys["pk"] + sep + keys["sk"])
}

func indexKey(keys map[string]string) []byte {
	return []byte(string(indexPrefix) + keys["gsi1_pk"] + sep + keys["gsi1_sk"])
}

// Put writes entry in a read-write transaction that first checks the precondition.
func (s *RegistryStore) Put(ctx context.Context, entry storagemodels.RegistryEntry, precondition storagemodels.Precondition) error {
	if entry.ID == "" {
		return rerrors.NewValidationError("id", "must not be empty")
	}
	if !precondition.Valid() {
		return rerrors.NewValidationError("precondition", fmt.Sprintf("unsupported precondition %d", int(precondition)))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	keys, err := expandKeys(entry.ID)
	if err != nil {
		return err
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(entryKey(keys))
		exists := err == nil
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read entry: %w", err)
		}

		if (precondition == storagemodels.MustNotExist && exists) ||
			(precondition == storagemodels.MustExist && !exists) {
			return rerrors.NewPreconditionFailedError(entry.ID, precondition.String(), nil)
		}

		if err := txn.Set(entryKey(keys), value); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
		return txn.Set(indexKey(keys), []byte(entry.BucketArn))
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Str("id", entry.ID).Stringer("precondition", precondition).Msg("registry entry written")
	return nil
}

// GetOne reads the entry for id.
func (s *RegistryStore) GetOne(ctx context.Context, id string) (*storagemodels.RegistryEntry, error) {
	keys, err := expandKeys(id)
	if err != nil {
		return nil, err
	}

	var result storagemodels.RegistryEntry
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(keys))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return rerrors.NewNotFoundError("RegistryEntry", id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes the entry and its index record. Missing ids are a no-op.
func (s *RegistryStore) Delete(ctx context.Context, id string) error {
	keys, err := expandKeys(id)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(entryKey(keys)); err != nil {
			return err
		}
		return txn.Delete(indexKey(keys))
	})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.logger.Debug().Str("id", id).Msg("registry entry deleted")
	return nil
}

// ListDestinations iterates the destination index one page per read transaction.
func (s *RegistryStore) ListDestinations(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[string] {
	options := storagemodels.ApplyStreamOptions(opts...)
	resultCh := make(chan storagemodels.StreamResult[string], options.BufferSize)

	go func() {
		defer close(resultCh)

		prefix := []byte(string(indexPrefix) + storagemodels.DestinationPartition + sep + storagemodels.DestinationSortKeyPrefix)
		start := time.Now()
		var index int64
		var page int
		var after []byte

		for {
			dests, last, err := s.readPage(prefix, after, int(options.PageSize))
			if err != nil {
				select {
				case <-ctx.Done():
				case resultCh <- storagemodels.StreamResult[string]{Error: fmt.Errorf("iterate destinations: %w", err)}:
				}
				return
			}
			if len(dests) == 0 {
				break
			}
			page++

			for _, dest := range dests {
				select {
				case <-ctx.Done():
					return
				case resultCh <- storagemodels.StreamResult[string]{
					Item: dest,
					Meta: storagemodels.StreamMeta{Index: index, PageNumber: page, Timestamp: time.Now()},
				}:
				}
				index++
			}
			if options.ProgressHandler != nil {
				options.ProgressHandler(storagemodels.NewProgress(index, page, start, false))
			}
			if len(dests) < int(options.PageSize) {
				break
			}
			after = last
		}

		if options.ProgressHandler != nil {
			options.ProgressHandler(storagemodels.NewProgress(index, page, start, true))
		}
	}()

	return resultCh
}

// readPage returns up to limit destinations with keys under prefix, strictly after the given key.
func (s *RegistryStore) readPage(prefix, after []byte, limit int) ([]string, []byte, error) {
	var dests []string
	var last []byte

	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		seek := prefix
		if after != nil {
			seek = after
		}
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if after != nil && bytes.Equal(item.Key(), after) {
				continue
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("copy value to result: %w", err)
			}
			dests = append(dests, string(val))
			last = item.KeyCopy(nil)
			if len(dests) >= limit {
				break
			}
		}
		return nil
	})
	return dests, last, err
}
