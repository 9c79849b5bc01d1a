/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package badgerstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/artifactreplication/datastore"
	"github.com/suparena/artifactreplication/errors"
	"github.com/suparena/artifactreplication/storagemodels"
)

func newTestStore(t *testing.T) *RegistryStore {
	t.Helper()
	logger := zerolog.Nop()
	store, err := New(Options{InMemory: true, Logger: &logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entry(id, dest string) storagemodels.RegistryEntry {
	return storagemodels.RegistryEntry{ID: id, BucketArn: dest, AccountID: "111111111111", Region: "us-east-1"}
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, entry("ABC", "arn:aws:s3:::dest-1"), storagemodels.MustNotExist))

	got, err := store.GetOne(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:s3:::dest-1", got.BucketArn)
	assert.Equal(t, "111111111111", got.AccountID)
	assert.Equal(t, "us-east-1", got.Region)
}

func TestPutPreconditions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, entry("A", "dest-a"), storagemodels.MustNotExist))

	err := store.Put(ctx, entry("A", "dest-other"), storagemodels.MustNotExist)
	assert.True(t, errors.IsPreconditionFailed(err))

	err = store.Put(ctx, entry("B", "dest-b"), storagemodels.MustExist)
	assert.True(t, errors.IsPreconditionFailed(err))
	_, err = store.GetOne(ctx, "B")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, store.Put(ctx, entry("A", "dest-a2"), storagemodels.MustExist))
	got, err := store.GetOne(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "dest-a2", got.BucketArn)

	dests, err := datastore.CollectDestinations(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"dest-a2"}, dests)
}

func TestPutValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.True(t, errors.IsValidationError(store.Put(ctx, entry("", "dest"), storagemodels.MustNotExist)))
	assert.True(t, errors.IsValidationError(store.Put(ctx, entry("A", "dest"), storagemodels.Precondition(0))))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.NoError(t, store.Delete(ctx, "missing"))

	require.NoError(t, store.Put(ctx, entry("A", "dest-a"), storagemodels.MustNotExist))
	require.NoError(t, store.Put(ctx, entry("B", "dest-b"), storagemodels.MustNotExist))
	require.NoError(t, store.Delete(ctx, "A"))

	_, err := store.GetOne(ctx, "A")
	assert.True(t, errors.IsNotFound(err))

	dests, err := datastore.CollectDestinations(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"dest-b"}, dests)
}

func TestListDestinationsPaging(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	want := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		dest := fmt.Sprintf("arn:aws:s3:::dest-%d", i)
		want = append(want, dest)
		require.NoError(t, store.Put(ctx, entry(fmt.Sprintf("ID%d", i), dest), storagemodels.MustNotExist))
	}

	var progress []storagemodels.StreamProgress
	var pages []int
	var got []string
	for res := range store.ListDestinations(ctx,
		storagemodels.WithPageSize(3),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
			progress = append(progress, p)
		}),
	) {
		require.NoError(t, res.Error)
		got = append(got, res.Item)
		pages = append(pages, res.Meta.PageNumber)
	}

	assert.ElementsMatch(t, want, got)
	assert.Equal(t, []int{1, 1, 1, 2, 2, 2, 3}, pages)
	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.True(t, last.Done)
	assert.Equal(t, int64(7), last.ItemsProcessed)
	assert.Equal(t, 3, last.PagesProcessed)
}

func TestListDestinationsEmpty(t *testing.T) {
	store := newTestStore(t)

	dests, err := datastore.CollectDestinations(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, dests)
}
