/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/artifactreplication/storagemodels"
)

// ListDestinations streams the destination reference of every registered
// destination, one index page at a time. Failed queries are not retried.
func (d *RegistryStore) ListDestinations(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[string] {
	options := storagemodels.ApplyStreamOptions(opts...)

	resultCh := make(chan storagemodels.StreamResult[string], options.BufferSize)

	go d.streamWorker(ctx, options, resultCh)

	return resultCh
}

// streamWorker pages through the destination index
func (d *RegistryStore) streamWorker(
	ctx context.Context,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[string],
) {
	defer close(resultCh)

	var itemIndex int64
	var pageNumber int
	startTime := time.Now()

	reportProgress := func(done bool) {
		if options.ProgressHandler != nil {
			options.ProgressHandler(storagemodels.NewProgress(itemIndex, pageNumber, startTime, done))
		}
	}

	send := func(res storagemodels.StreamResult[string]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- res:
			return true
		}
	}

	input, err := d.destinationsQuery(options.PageSize)
	if err != nil {
		send(storagemodels.StreamResult[string]{Error: err})
		return
	}

	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		out, err := d.client.Query(ctx, input)
		if err != nil {
			d.logger.Error().Err(err).Int("page", pageNumber+1).Msg("destination query failed")
			send(storagemodels.StreamResult[string]{
				Error: fmt.Errorf("query failed: %w", err),
				Meta: storagemodels.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber + 1,
					Timestamp:  time.Now(),
				},
			})
			return
		}

		pageNumber++

		for _, item := range out.Items {
			var dest destinationProjection
			res := storagemodels.StreamResult[string]{
				Meta: storagemodels.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			}
			if err := attributevalue.UnmarshalMap(item, &dest); err != nil {
				res.Error = fmt.Errorf("failed to unmarshal destination: %w", err)
			} else {
				res.Item = dest.BucketArn
			}
			itemIndex++

			if !send(res) || res.Error != nil {
				return
			}
		}

		reportProgress(false)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}

	reportProgress(true)
}
