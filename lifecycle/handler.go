/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package lifecycle

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/suparena/artifactreplication/datastore"
	"github.com/suparena/artifactreplication/errors"
	"github.com/suparena/artifactreplication/storagemodels"
)

const (
	// ReasonRegistrationError is the reason reported for every internal fault.
	ReasonRegistrationError = "Error registering."

	resultName = "TheName"
)

// Handler turns resource lifecycle events into registry writes.
type Handler struct {
	store  datastore.RegistryStore
	idgen  IDGenerator
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithIDGenerator sets the generator used for Create events without a physical id.
func WithIDGenerator(g IDGenerator) Option {
	return func(h *Handler) {
		h.idgen = g
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithClock overrides the clock used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler creates a Handler writing to store.
func NewHandler(store datastore.RegistryStore, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		idgen:  NewBase36Generator(nil),
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle applies event to the registry and reports the outcome.
// It never returns an error and never panics; faults become a FAILED result.
func (h *Handler) Handle(ctx context.Context, event storagemodels.LifecycleEvent) (result storagemodels.LifecycleResult) {
	id := event.PhysicalResourceID

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Str("requestType", string(event.RequestType)).Str("id", id).
				Interface("panic", r).Msg("lifecycle handler panicked")
			result = failed(id, ReasonRegistrationError)
		}
	}()

	var err error
	switch event.RequestType {
	case storagemodels.RequestCreate:
		if id == "" {
			id = h.idgen.NewID()
		}
		err = h.store.Put(ctx, h.entry(id, event.ResourceProperties), storagemodels.MustNotExist)

	case storagemodels.RequestUpdate:
		if id == "" {
			err = errors.NewValidationError("PhysicalResourceId", "required for Update")
			break
		}
		entry := h.entry(id, event.ResourceProperties)
		if existing, getErr := h.store.GetOne(ctx, id); getErr == nil {
			entry.CreatedAt = existing.CreatedAt
		}
		err = h.store.Put(ctx, entry, storagemodels.MustExist)

	case storagemodels.RequestDelete:
		if id == "" {
			err = errors.NewValidationError("PhysicalResourceId", "required for Delete")
			break
		}
		err = h.store.Delete(ctx, id)

	default:
		unknown := errors.NewUnrecognizedRequestTypeError(string(event.RequestType))
		h.logger.Warn().Err(unknown).Msg("rejecting lifecycle event")
		return failed(event.PhysicalResourceID, unknown.Error())
	}

	if err != nil {
		h.logger.Error().Err(err).
			Str("requestType", string(event.RequestType)).
			Str("id", id).
			Bool("preconditionFailed", errors.IsPreconditionFailed(err)).
			Msg("registration failed")
		return failed(id, ReasonRegistrationError)
	}

	h.logger.Info().Str("requestType", string(event.RequestType)).Str("id", id).
		Str("bucketArn", event.ResourceProperties.BucketArn).Msg("registration applied")

	return storagemodels.LifecycleResult{
		Status:             storagemodels.StatusSuccess,
		PhysicalResourceID: id,
		Data:               map[string]string{"Name": resultName},
	}
}

func (h *Handler) entry(id string, props storagemodels.DestinationProperties) storagemodels.RegistryEntry {
	e := storagemodels.RegistryEntry{
		ID:        id,
		BucketArn: props.BucketArn,
		AccountID: props.AccountID,
		Region:    props.Region,
	}
	e.Touch(h.now())
	return e
}

func failed(id, reason string) storagemodels.LifecycleResult {
	return storagemodels.LifecycleResult{
		Status:             storagemodels.StatusFailed,
		PhysicalResourceID: id,
		Reason:             reason,
	}
}
