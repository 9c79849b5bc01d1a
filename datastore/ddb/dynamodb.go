/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/suparena/artifactreplication/datastore"
	rerrors "github.com/suparena/artifactreplication/errors"
	"github.com/suparena/artifactreplication/registry"
	"github.com/suparena/artifactreplication/storagemodels"
)

// API is the subset of the DynamoDB client used by RegistryStore.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// RegistryStore implements datastore.RegistryStore on a single DynamoDB table.
type RegistryStore struct {
	client    API
	tableName string
	gsi       GSIConfig
	logger    zerolog.Logger
}

var _ datastore.RegistryStore = (*RegistryStore)(nil)

// Option configures a RegistryStore.
type Option func(*RegistryStore)

// WithGSI overrides the destination index configuration.
func WithGSI(cfg GSIConfig) Option {
	return func(s *RegistryStore) {
		s.gsi = cfg
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *RegistryStore) {
		s.logger = logger
	}
}

// NewRegistryStore constructs a RegistryStore over an existing client.
func NewRegistryStore(client API, tableName string, opts ...Option) *RegistryStore {
	s := &RegistryStore{
		client:    client,
		tableName: tableName,
		gsi:       DefaultGSIConfigs[DefaultIndexName],
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRegistryStoreFromConfig creates the DynamoDB client from an AWS config.
func NewRegistryStoreFromConfig(cfg aws.Config, tableName string, opts ...Option) *RegistryStore {
	s := NewRegistryStore(sdk.NewFromConfig(cfg), tableName, opts...)
	s.logger.Debug().
		Str("table", tableName).
		Str("region", cfg.Region).
		Msg("DynamoDB registry store initialized")
	return s
}

// Put writes entry guarded by the existence precondition on its primary key.
func (d *RegistryStore) Put(ctx context.Context, entry storagemodels.RegistryEntry, precondition storagemodels.Precondition) error {
	if entry.ID == "" {
		return rerrors.NewValidationError("id", "must not be empty")
	}
	cond, err := d.conditionFor(precondition)
	if err != nil {
		return err
	}

	item, err := marshalEntry(entry)
	if err != nil {
		return err
	}

	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition expression: %w", err)
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:                 &d.tableName,
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return rerrors.NewPreconditionFailedError(entry.ID, precondition.String(), err)
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}

	d.logger.Debug().
		Str("id", entry.ID).
		Stringer("precondition", precondition).
		Msg("registry entry written")
	return nil
}

// GetOne retrieves the primary record for id.
func (d *RegistryStore) GetOne(ctx context.Context, id string) (*storagemodels.RegistryEntry, error) {
	key, err := primaryKey(id)
	if err != nil {
		return nil, err
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &d.tableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, rerrors.NewNotFoundError("RegistryEntry", id)
	}

	result := new(storagemodels.RegistryEntry)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Delete removes the primary record for id. It carries no condition, so a
// missing id succeeds.
func (d *RegistryStore) Delete(ctx context.Context, id string) error {
	key, err := primaryKey(id)
	if err != nil {
		return err
	}

	_, err = d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &d.tableName,
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}

	d.logger.Debug().Str("id", id).Msg("registry entry deleted")
	return nil
}

func (d *RegistryStore) conditionFor(p storagemodels.Precondition) (expression.ConditionBuilder, error) {
	pk := expression.Name(PrimaryKeyName)
	switch p {
	case storagemodels.MustNotExist:
		return expression.AttributeNotExists(pk), nil
	case storagemodels.MustExist:
		return expression.AttributeExists(pk), nil
	default:
		return expression.ConditionBuilder{}, rerrors.NewValidationError("precondition", fmt.Sprintf("unsupported precondition %d", int(p)))
	}
}

// marshalEntry converts the entry to an item and adds the key attributes
// expanded from its index map.
func marshalEntry(entry storagemodels.RegistryEntry) (map[string]types.AttributeValue, error) {
	indexMap, ok := registry.GetIndexMap[storagemodels.RegistryEntry]()
	if !ok {
		return nil, rerrors.ErrNoIndexMap
	}

	av, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}

	for k, v := range registry.ExpandKeys(indexMap, stringAttributes(av)) {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	return av, nil
}

// stringAttributes extracts the scalar attributes usable as macro values.
func stringAttributes(av map[string]types.AttributeValue) map[string]string {
	values := make(map[string]string, len(av))
	for name, val := range av {
		switch tv := val.(type) {
		case *types.AttributeValueMemberS:
			values[name] = tv.Value
		case *types.AttributeValueMemberN:
			values[name] = tv.Value
		case *types.AttributeValueMemberBOOL:
			values[name] = fmt.Sprintf("%v", tv.Value)
		}
	}
	return values
}

// primaryKey builds the table key of the primary record for id.
func primaryKey(id string) (map[string]types.AttributeValue, error) {
	if id == "" {
		return nil, rerrors.NewValidationError("id", "must not be empty")
	}
	indexMap, ok := registry.GetIndexMap[storagemodels.RegistryEntry]()
	if !ok {
		return nil, rerrors.ErrNoIndexMap
	}
	expanded := registry.ExpandKeys(indexMap, map[string]string{"id": id})

	pk, sk := expanded[PrimaryKeyName], expanded[SortKeyName]
	if pk == "" || sk == "" {
		return nil, fmt.Errorf("expanded index map missing valid %s or %s", PrimaryKeyName, SortKeyName)
	}
	return map[string]types.AttributeValue{
		PrimaryKeyName: &types.AttributeValueMemberS{Value: pk},
		SortKeyName:    &types.AttributeValueMemberS{Value: sk},
	}, nil
}
