/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/suparena/artifactreplication/storagemodels"
)

// destinationAttribute is the item attribute holding the destination reference.
const destinationAttribute = "bucketArn"

// destinationProjection is the projected shape of a destination query item.
type destinationProjection struct {
	BucketArn string `dynamodbav:"bucketArn"`
}

// destinationsQuery builds the index query selecting every destination:
// gsi1_pk = ReplicateBuildArtifact AND begins_with(gsi1_sk, "Bucket|").
func (d *RegistryStore) destinationsQuery(pageSize int32) (*dynamodb.QueryInput, error) {
	keyCond := expression.Key(d.gsi.PartitionKeyName).Equal(expression.Value(storagemodels.DestinationPartition)).
		And(expression.Key(d.gsi.SortKeyName).BeginsWith(storagemodels.DestinationSortKeyPrefix))

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithProjection(expression.NamesList(expression.Name(destinationAttribute))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build destinations query: %w", err)
	}

	return &dynamodb.QueryInput{
		TableName:                 &d.tableName,
		IndexName:                 &d.gsi.IndexName,
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     &pageSize,
	}, nil
}
