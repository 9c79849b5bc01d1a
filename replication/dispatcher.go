/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package replication

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/suparena/artifactreplication/copier"
	"github.com/suparena/artifactreplication/datastore"
	"github.com/suparena/artifactreplication/errors"
	"github.com/suparena/artifactreplication/storagemodels"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency bounds the number of copies in flight per dispatch.
const DefaultMaxConcurrency = 16

// TaskResult is the outcome of one replication task.
type TaskResult struct {
	Task         storagemodels.ReplicationTask
	Confirmation storagemodels.Confirmation
	Err          error
}

// Report describes a completed dispatch. Results are ordered record by record,
// then destination by destination.
type Report struct {
	BatchID      string
	Destinations int
	Results      []TaskResult
	Duration     time.Duration
}

// Failed returns the results whose copy did not succeed.
func (r *Report) Failed() []TaskResult {
	var failed []TaskResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Dispatcher fans a storage change batch out to every registered destination.
type Dispatcher struct {
	store          datastore.RegistryStore
	copier         copier.Copier
	maxConcurrency int
	newBatchID     func() string
	logger         zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxConcurrency bounds the copies in flight. Values below 1 are ignored.
func WithMaxConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxConcurrency = n
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithBatchIDGenerator overrides how batch ids are produced.
func WithBatchIDGenerator(gen func() string) Option {
	return func(d *Dispatcher) {
		d.newBatchID = gen
	}
}

// NewDispatcher creates a Dispatcher reading destinations from store and copying with c.
func NewDispatcher(store datastore.RegistryStore, c copier.Copier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:          store,
		copier:         c,
		maxConcurrency: DefaultMaxConcurrency,
		newBatchID:     uuid.NewString,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch copies every record of batch to every registered destination.
//
// The destination set is read fresh on every call. All copies run to
// completion regardless of sibling failures; the returned error combines
// every failed copy. A registry failure or a batch without Records fails
// before any copy is attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, batch *storagemodels.StorageChangeBatch) (*Report, error) {
	start := time.Now()
	report := &Report{BatchID: d.newBatchID()}
	logger := d.logger.With().Str("batchId", report.BatchID).Logger()

	destinations, err := datastore.CollectDestinations(ctx, d.store)
	if err != nil {
		logger.Error().Err(err).Msg("listing destinations failed")
		return report, fmt.Errorf("list destinations: %w", err)
	}
	report.Destinations = len(destinations)

	if batch == nil || batch.Records == nil {
		return report, errors.NewValidationError("Records", "missing from storage change batch")
	}

	if len(destinations) == 0 {
		logger.Info().Int("records", len(batch.Records)).Msg("no destinations registered")
		report.Duration = time.Since(start)
		return report, nil
	}

	tasks := make([]storagemodels.ReplicationTask, 0, len(batch.Records)*len(destinations))
	for _, rec := range batch.Records {
		for _, dest := range destinations {
			tasks = append(tasks, storagemodels.ReplicationTask{
				SourceBucket:   rec.S3.Bucket.Name,
				SourceKey:      rec.S3.Object.Key,
				SourceVersion:  rec.SourceVersion(),
				DestinationRef: dest,
			})
		}
	}

	report.Results = make([]TaskResult, len(tasks))

	// A plain group: a failed copy must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(d.maxConcurrency)
	for i, task := range tasks {
		g.Go(func() error {
			conf, err := d.copier.Copy(ctx, task)
			report.Results[i] = TaskResult{Task: task, Confirmation: conf, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, res := range report.Results {
		errs = multierr.Append(errs, res.Err)
	}
	report.Duration = time.Since(start)

	failed := len(multierr.Errors(errs))
	event := logger.Info()
	if errs != nil {
		event = logger.Error().Err(errs)
	}
	event.Int("records", len(batch.Records)).
		Int("destinations", len(destinations)).
		Int("copies", len(tasks)).
		Int("failed", failed).
		Dur("duration", report.Duration).
		Msg("dispatch complete")

	return report, errs
}
