/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package artifactreplication_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/artifactreplication"
	"github.com/suparena/artifactreplication/config"
	"github.com/suparena/artifactreplication/datastore"
	"github.com/suparena/artifactreplication/datastore/mock"
	"github.com/suparena/artifactreplication/errors"
	"github.com/suparena/artifactreplication/lifecycle"
	"github.com/suparena/artifactreplication/storagemodels"
)

type recordingCopier struct {
	mu    sync.Mutex
	tasks []storagemodels.ReplicationTask
}

func (r *recordingCopier) Copy(ctx context.Context, task storagemodels.ReplicationTask) (storagemodels.Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return storagemodels.Confirmation{DestinationBucket: task.DestinationRef, DestinationKey: task.SourceKey}, nil
}

func badgerConfig() config.Config {
	cfg := config.Default()
	cfg.Registry.Backend = config.BackendBadger
	cfg.Replication.MaxConcurrency = 4
	return cfg
}

func newService(t *testing.T, opts ...artifactreplication.Option) (*artifactreplication.Service, *recordingCopier) {
	t.Helper()
	c := &recordingCopier{}
	opts = append([]artifactreplication.Option{
		artifactreplication.WithCopier(c),
		artifactreplication.WithLogger(zerolog.Nop()),
	}, opts...)

	svc, err := artifactreplication.New(context.Background(), badgerConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, c
}

func TestRegisterThenReplicate(t *testing.T) {
	ctx := context.Background()
	svc, c := newService(t)

	for _, dest := range []string{"d1", "d2"} {
		res := svc.Register(ctx, storagemodels.LifecycleEvent{
			RequestType:        storagemodels.RequestCreate,
			ResourceProperties: storagemodels.DestinationProperties{BucketArn: dest, AccountID: "111111111111", Region: "us-east-1"},
		})
		require.Equal(t, storagemodels.StatusSuccess, res.Status)
	}

	var batch storagemodels.StorageChangeBatch
	require.NoError(t, json.Unmarshal([]byte(`{"Records":[{"s3":{"bucket":{"name":"src"},"object":{"key":"key.txt"}}}]}`), &batch))

	report, err := svc.Replicate(ctx, &batch)
	require.NoError(t, err)
	assert.Len(t, report.Results, 2)

	var dests []string
	for _, task := range c.tasks {
		assert.Equal(t, "src", task.SourceBucket)
		assert.Equal(t, "key.txt", task.SourceKey)
		dests = append(dests, task.DestinationRef)
	}
	assert.ElementsMatch(t, []string{"d1", "d2"}, dests)
}

func TestCreatedDestinationIsListed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, artifactreplication.WithIDGenerator(lifecycle.IDGeneratorFunc(func() string { return "FRESH1" })))

	res := svc.Register(ctx, storagemodels.LifecycleEvent{
		RequestType:        storagemodels.RequestCreate,
		ResourceProperties: storagemodels.DestinationProperties{BucketArn: "dest-1", AccountID: "111111111111", Region: "us-east-1"},
	})
	require.Equal(t, storagemodels.StatusSuccess, res.Status)
	assert.Equal(t, "FRESH1", res.PhysicalResourceID)

	dests, err := datastore.CollectDestinations(ctx, svc.Store())
	require.NoError(t, err)
	assert.Equal(t, []string{"dest-1"}, dests)

	res = svc.Register(ctx, storagemodels.LifecycleEvent{RequestType: storagemodels.RequestDelete, PhysicalResourceID: "FRESH1"})
	require.Equal(t, storagemodels.StatusSuccess, res.Status)

	dests, err = datastore.CollectDestinations(ctx, svc.Store())
	require.NoError(t, err)
	assert.Empty(t, dests)
}

func TestReplicateNullRecords(t *testing.T) {
	svc, c := newService(t, artifactreplication.WithStore(mock.New()))

	var batch storagemodels.StorageChangeBatch
	require.NoError(t, json.Unmarshal([]byte(`{"Records":null}`), &batch))

	_, err := svc.Replicate(context.Background(), &batch)
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, c.tasks)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Registry.Backend = "redis"

	_, err := artifactreplication.New(context.Background(), cfg)
	assert.True(t, errors.IsValidationError(err))
}

func TestGetVersionInfo(t *testing.T) {
	info := artifactreplication.GetVersionInfo()
	assert.Equal(t, artifactreplication.Version, info.Version)
	assert.NotEmpty(t, info.GitCommit)
}
