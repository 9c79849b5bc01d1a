/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package artifactreplication

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"
	"github.com/suparena/artifactreplication/config"
	"github.com/suparena/artifactreplication/copier"
	"github.com/suparena/artifactreplication/datastore"
	"github.com/suparena/artifactreplication/datastore/badgerstore"
	"github.com/suparena/artifactreplication/datastore/ddb"
	"github.com/suparena/artifactreplication/lifecycle"
	"github.com/suparena/artifactreplication/logging"
	"github.com/suparena/artifactreplication/replication"
	"github.com/suparena/artifactreplication/storagemodels"
	"go.uber.org/multierr"
)

// Service wires the registry, the lifecycle handler and the replication dispatcher.
type Service struct {
	store      datastore.RegistryStore
	handler    *lifecycle.Handler
	dispatcher *replication.Dispatcher
	logger     zerolog.Logger
	closers    []func() error
}

type serviceOptions struct {
	store  datastore.RegistryStore
	copier copier.Copier
	idgen  lifecycle.IDGenerator
	logger *zerolog.Logger
	awsCfg *aws.Config
}

// Option overrides a component the Service would otherwise build from config.
type Option func(*serviceOptions)

// WithStore uses store instead of the configured registry backend.
func WithStore(store datastore.RegistryStore) Option {
	return func(o *serviceOptions) { o.store = store }
}

// WithCopier uses c instead of an S3 copier.
func WithCopier(c copier.Copier) Option {
	return func(o *serviceOptions) { o.copier = c }
}

// WithIDGenerator sets the generator for new registry ids.
func WithIDGenerator(g lifecycle.IDGenerator) Option {
	return func(o *serviceOptions) { o.idgen = g }
}

// WithLogger uses logger instead of one built from the log config.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *serviceOptions) { o.logger = &logger }
}

// WithAWSConfig uses cfg instead of loading one.
func WithAWSConfig(cfg aws.Config) Option {
	return func(o *serviceOptions) { o.awsCfg = &cfg }
}

// New builds a Service from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, App: "artifact-replication"})
	if o.logger != nil {
		logger = *o.logger
	}

	s := &Service{logger: logger}

	awsConfig := func() (aws.Config, error) {
		if o.awsCfg == nil {
			c, err := config.NewAWSConfig(ctx, cfg.AWS)
			if err != nil {
				return aws.Config{}, err
			}
			o.awsCfg = &c
		}
		return *o.awsCfg, nil
	}

	s.store = o.store
	if s.store == nil {
		store, err := s.openStore(cfg.Registry, awsConfig)
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	c := o.copier
	if c == nil {
		base, err := awsConfig()
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		c = copier.NewFromConfig(config.NewReplicationAWSConfig(base, cfg.Replication),
			copier.WithLogger(logging.Component(logger, "copier")))
	}

	handlerOpts := []lifecycle.Option{lifecycle.WithLogger(logging.Component(logger, "lifecycle"))}
	if o.idgen != nil {
		handlerOpts = append(handlerOpts, lifecycle.WithIDGenerator(o.idgen))
	}
	s.handler = lifecycle.NewHandler(s.store, handlerOpts...)

	s.dispatcher = replication.NewDispatcher(s.store, c,
		replication.WithMaxConcurrency(cfg.Replication.MaxConcurrency),
		replication.WithLogger(logging.Component(logger, "dispatcher")),
	)

	logger.Info().
		Str("backend", cfg.Registry.Backend).
		Int("maxConcurrency", cfg.Replication.MaxConcurrency).
		Msg("replication service ready")
	return s, nil
}

func (s *Service) openStore(cfg config.RegistryConfig, awsConfig func() (aws.Config, error)) (datastore.RegistryStore, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		logger := logging.Component(s.logger, "badger")
		store, err := badgerstore.New(badgerstore.Options{Path: cfg.BadgerPath, Logger: &logger})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		return store, nil

	case config.BackendDynamoDB:
		awsCfg, err := awsConfig()
		if err != nil {
			return nil, err
		}
		gsi, ok := ddb.GetGSIConfig(cfg.IndexName)
		if !ok {
			gsi = ddb.GSIConfig{IndexName: cfg.IndexName, PartitionKeyName: "gsi1_pk", SortKeyName: "gsi1_sk"}
		}
		return ddb.NewRegistryStoreFromConfig(awsCfg, cfg.TableName,
			ddb.WithGSI(gsi),
			ddb.WithLogger(logging.Component(s.logger, "dynamodb")),
		), nil

	default:
		return nil, fmt.Errorf("unsupported registry backend %q", cfg.Backend)
	}
}

// Register applies a resource lifecycle event to the registry.
func (s *Service) Register(ctx context.Context, event storagemodels.LifecycleEvent) storagemodels.LifecycleResult {
	return s.handler.Handle(ctx, event)
}

// Replicate copies every changed object in batch to every registered destination.
func (s *Service) Replicate(ctx context.Context, batch *storagemodels.StorageChangeBatch) (*replication.Report, error) {
	return s.dispatcher.Dispatch(ctx, batch)
}

// Store returns the registry the service writes to.
func (s *Service) Store() datastore.RegistryStore {
	return s.store
}

// Close releases resources held by the registry backend.
func (s *Service) Close() error {
	var err error
	for _, c := range s.closers {
		err = multierr.Append(err, c())
	}
	s.closers = nil
	return err
}
