/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package copier

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	rerrors "github.com/suparena/artifactreplication/errors"
	"github.com/suparena/artifactreplication/storagemodels"
)

// API is the subset of the S3 client used by the copier.
type API interface {
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// Copier performs a single server-side object copy.
type Copier interface {
	Copy(ctx context.Context, task storagemodels.ReplicationTask) (storagemodels.Confirmation, error)
}

// S3Copier implements Copier with S3 CopyObject.
type S3Copier struct {
	client API
	logger zerolog.Logger
	now    func() time.Time
}

var _ Copier = (*S3Copier)(nil)

// Option configures an S3Copier.
type Option func(*S3Copier)

// WithLogger sets the logger for copy attempts and outcomes.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *S3Copier) {
		c.logger = logger
	}
}

// WithClock overrides the clock used to stamp confirmations.
func WithClock(now func() time.Time) Option {
	return func(c *S3Copier) {
		c.now = now
	}
}

// New creates an S3Copier around client.
func New(client API, opts ...Option) *S3Copier {
	c := &S3Copier{
		client: client,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates an S3Copier with a client built from cfg.
func NewFromConfig(cfg aws.Config, opts ...Option) *S3Copier {
	return New(s3.NewFromConfig(cfg), opts...)
}

// DecodeKey turns a notification object key into the real key.
// Plus signs become spaces before percent escapes are resolved, so "a+b%2Bc"
// decodes to "a b+c".
func DecodeKey(key string) (string, error) {
	return url.PathUnescape(strings.ReplaceAll(key, "+", " "))
}

// BucketName returns the bucket name for a destination given as an S3 ARN or a bare name.
func BucketName(ref string) (string, error) {
	if !arn.IsARN(ref) {
		if ref == "" {
			return "", rerrors.NewValidationError("destination", "must not be empty")
		}
		return ref, nil
	}
	parsed, err := arn.Parse(ref)
	if err != nil {
		return "", rerrors.NewValidationError("destination", err.Error())
	}
	if parsed.Service != "s3" || parsed.Resource == "" {
		return "", rerrors.NewValidationError("destination", fmt.Sprintf("%q is not an S3 bucket ARN", ref))
	}
	return parsed.Resource, nil
}

// Copy copies the task's source object into its destination bucket.
// No retries are attempted.
func (c *S3Copier) Copy(ctx context.Context, task storagemodels.ReplicationTask) (storagemodels.Confirmation, error) {
	copyErr := &rerrors.CopyError{
		SourceBucket:   task.SourceBucket,
		SourceKey:      task.SourceKey,
		DestinationRef: task.DestinationRef,
		DestinationKey: task.DestinationKey,
	}

	key, err := DecodeKey(task.SourceKey)
	if err != nil {
		copyErr.Err = fmt.Errorf("decode source key: %w", err)
		c.logFailure(copyErr)
		return storagemodels.Confirmation{}, copyErr
	}
	copyErr.SourceKey = key

	destKey := task.DestinationKey
	if destKey == "" {
		destKey = key
	}
	copyErr.DestinationKey = destKey

	bucket, err := BucketName(task.DestinationRef)
	if err != nil {
		copyErr.Err = err
		c.logFailure(copyErr)
		return storagemodels.Confirmation{}, copyErr
	}

	source := url.PathEscape(task.SourceBucket) + "/" + escapeKey(key)
	if task.SourceVersion != "" {
		source += "?versionId=" + url.QueryEscape(task.SourceVersion)
	}

	c.logger.Info().Msgf("Attempting: copying %s:%s to %s:%s", task.SourceBucket, key, bucket, destKey)

	out, err := c.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(bucket),
		Key:               aws.String(destKey),
		CopySource:        aws.String(source),
		ACL:               types.ObjectCannedACLBucketOwnerFullControl,
		MetadataDirective: types.MetadataDirectiveCopy,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			copyErr.Code = apiErr.ErrorCode()
		}
		copyErr.Err = err
		c.logFailure(copyErr)
		return storagemodels.Confirmation{}, copyErr
	}

	c.logger.Info().Msgf("Success: copying %s:%s to %s:%s", task.SourceBucket, key, bucket, destKey)

	conf := storagemodels.Confirmation{
		DestinationBucket: bucket,
		DestinationKey:    destKey,
		CopiedAt:          c.now(),
	}
	if out != nil {
		conf.VersionID = aws.ToString(out.VersionId)
		if out.CopyObjectResult != nil {
			conf.ETag = aws.ToString(out.CopyObjectResult.ETag)
		}
	}
	return conf, nil
}

func (c *S3Copier) logFailure(err *rerrors.CopyError) {
	c.logger.Error().Err(err.Err).Str("code", err.Code).
		Msgf("Error: copying %s:%s to %s:%s", err.SourceBucket, err.SourceKey, err.DestinationRef, err.DestinationKey)
}

// escapeKey escapes each path segment of key, keeping the separators.
// S3 reads '+' in the copy source as a space, so it is escaped too.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(url.PathEscape(s), "+", "%2B")
	}
	return strings.Join(segments, "/")
}
