/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/artifactreplication/storagemodels"
)

// fakeDynamo is an in-memory API that understands the existence conditions
// and the destination index query issued by RegistryStore.
type fakeDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	puts     []*sdk.PutItemInput
	deletes  []*sdk.DeleteItemInput
	queries  []*sdk.QueryInput
	putErr   error
	queryErr error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func attrS(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func itemKey(key map[string]types.AttributeValue) string {
	return attrS(key, "pk") + "|" + attrS(key, "sk")
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &sdk.GetItemOutput{Item: f.items[itemKey(params.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, params)
	if f.putErr != nil {
		return nil, f.putErr
	}

	k := itemKey(params.Item)
	_, exists := f.items[k]
	cond := aws.ToString(params.ConditionExpression)
	switch {
	case strings.Contains(cond, "attribute_not_exists") && exists,
		strings.Contains(cond, "attribute_exists") && !strings.Contains(cond, "attribute_not_exists") && !exists:
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	f.items[k] = params.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, params)
	delete(f.items, itemKey(params.Key))
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, params)
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	var matched []map[string]types.AttributeValue
	for _, item := range f.items {
		if attrS(item, "gsi1_pk") == storagemodels.DestinationPartition &&
			strings.HasPrefix(attrS(item, "gsi1_sk"), storagemodels.DestinationSortKeyPrefix) {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return attrS(matched[i], "gsi1_sk") < attrS(matched[j], "gsi1_sk")
	})

	start := 0
	if params.ExclusiveStartKey != nil {
		after := attrS(params.ExclusiveStartKey, "gsi1_sk")
		for start < len(matched) && attrS(matched[start], "gsi1_sk") <= after {
			start++
		}
	}
	end := len(matched)
	if params.Limit != nil && start+int(*params.Limit) < end {
		end = start + int(*params.Limit)
	}

	out := &sdk.QueryOutput{Items: matched[start:end]}
	if end < len(matched) {
		last := matched[end-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"pk":      last["pk"],
			"sk":      last["sk"],
			"gsi1_pk": last["gsi1_pk"],
			"gsi1_sk": last["gsi1_sk"],
		}
	}
	return out, nil
}
