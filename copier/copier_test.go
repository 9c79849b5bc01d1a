/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package copier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/artifactreplication/errors"
	"github.com/suparena/artifactreplication/storagemodels"
)

// fakeS3 records CopyObject calls and fails for configured destination buckets.
type fakeS3 struct {
	mu    sync.Mutex
	calls []*s3.CopyObjectInput
	fail  map[string]error
}

func (f *fakeS3) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)

	if err, ok := f.fail[aws.ToString(params.Bucket)]; ok {
		return nil, err
	}
	return &s3.CopyObjectOutput{
		VersionId:        aws.String("v-dest"),
		CopyObjectResult: &types.CopyObjectResult{ETag: aws.String(`"etag"`)},
	}, nil
}

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"key.txt", "key.txt"},
		{"a+b%2Bc", "a b+c"},
		{"dir%2Fsub/file+name.zip", "dir/sub/file name.zip"},
		{"100%25", "100%"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DecodeKey(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeKey("bad%zz")
	assert.Error(t, err)
}

func TestBucketName(t *testing.T) {
	name, err := BucketName("arn:aws:s3:::dest-1")
	require.NoError(t, err)
	assert.Equal(t, "dest-1", name)

	name, err = BucketName("dest-2")
	require.NoError(t, err)
	assert.Equal(t, "dest-2", name)

	_, err = BucketName("arn:aws:sqs:us-east-1:111111111111:queue")
	assert.True(t, errors.IsValidationError(err))

	_, err = BucketName("")
	assert.True(t, errors.IsValidationError(err))
}

func TestCopyRequestShape(t *testing.T) {
	client := &fakeS3{}
	copiedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := New(client, WithClock(func() time.Time { return copiedAt }))

	conf, err := c.Copy(context.Background(), storagemodels.ReplicationTask{
		SourceBucket:   "src",
		SourceKey:      "a+b%2Bc",
		DestinationRef: "arn:aws:s3:::dest-1",
	})
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	in := client.calls[0]
	assert.Equal(t, "dest-1", aws.ToString(in.Bucket))
	assert.Equal(t, "a b+c", aws.ToString(in.Key))
	assert.Equal(t, "src/a%20b%2Bc", aws.ToString(in.CopySource))
	assert.Equal(t, types.ObjectCannedACLBucketOwnerFullControl, in.ACL)
	assert.Equal(t, types.MetadataDirectiveCopy, in.MetadataDirective)

	assert.Equal(t, storagemodels.Confirmation{
		DestinationBucket: "dest-1",
		DestinationKey:    "a b+c",
		VersionID:         "v-dest",
		ETag:              `"etag"`,
		CopiedAt:          copiedAt,
	}, conf)
}

func TestCopyWithVersionAndExplicitKey(t *testing.T) {
	client := &fakeS3{}
	c := New(client)

	_, err := c.Copy(context.Background(), storagemodels.ReplicationTask{
		SourceBucket:   "src",
		SourceKey:      "builds/app.zip",
		SourceVersion:  "3HL4kqtJ",
		DestinationRef: "dest-plain",
		DestinationKey: "mirror/app.zip",
	})
	require.NoError(t, err)

	in := client.calls[0]
	assert.Equal(t, "dest-plain", aws.ToString(in.Bucket))
	assert.Equal(t, "mirror/app.zip", aws.ToString(in.Key))
	assert.Equal(t, "src/builds/app.zip?versionId=3HL4kqtJ", aws.ToString(in.CopySource))
}

func TestCopySourceEscapesPlusWithVersion(t *testing.T) {
	client := &fakeS3{}
	c := New(client)

	_, err := c.Copy(context.Background(), storagemodels.ReplicationTask{
		SourceBucket:   "src",
		SourceKey:      "builds/c%2B%2B/app+1.0.zip",
		SourceVersion:  "v7",
		DestinationRef: "dest",
	})
	require.NoError(t, err)

	in := client.calls[0]
	assert.Equal(t, "builds/c++/app 1.0.zip", aws.ToString(in.Key))
	assert.Equal(t, "src/builds/c%2B%2B/app%201.0.zip?versionId=v7", aws.ToString(in.CopySource))
}

func TestCopyFailure(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
	client := &fakeS3{fail: map[string]error{"dest-1": apiErr}}
	c := New(client)

	_, err := c.Copy(context.Background(), storagemodels.ReplicationTask{
		SourceBucket:   "src",
		SourceKey:      "key.txt",
		DestinationRef: "arn:aws:s3:::dest-1",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCopyFailed(err))

	ce, ok := errors.AsCopyError(err)
	require.True(t, ok)
	assert.Equal(t, "AccessDenied", ce.Code)
	assert.Equal(t, "src", ce.SourceBucket)
	assert.Equal(t, "key.txt", ce.SourceKey)
	assert.Equal(t, "arn:aws:s3:::dest-1", ce.DestinationRef)
	assert.Equal(t, "key.txt", ce.DestinationKey)
	assert.ErrorIs(t, err, apiErr)
}

func TestCopyMalformedKeyNeverCallsClient(t *testing.T) {
	client := &fakeS3{}
	c := New(client)

	_, err := c.Copy(context.Background(), storagemodels.ReplicationTask{
		SourceBucket:   "src",
		SourceKey:      "bad%zz",
		DestinationRef: "dest",
	})
	assert.True(t, errors.IsCopyFailed(err))
	assert.Empty(t, client.calls)
}
