/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/artifactreplication/registry"
)

const (
	// PrimarySortKey marks the primary record for an id.
	PrimarySortKey = "Primary"
	// DestinationPartition groups every replication destination in the index.
	DestinationPartition = "ReplicateBuildArtifact"
	// DestinationSortKeyPrefix prefixes the index sort key of every destination.
	DestinationSortKeyPrefix = "Bucket|"
)

// RegistryEntryIndexMap holds the key templates of a RegistryEntry.
// Macros like {id} are replaced with the entry's attribute values at write time.
var RegistryEntryIndexMap = map[string]string{
	"pk":      "{id}",
	"sk":      PrimarySortKey,
	"gsi1_pk": DestinationPartition,
	"gsi1_sk": DestinationSortKeyPrefix + "{id}",
}

func init() {
	registry.RegisterIndexMap[RegistryEntry](RegistryEntryIndexMap)
}

// RegistryEntry is a registered replication destination.
// Key attributes (pk, sk, gsi1_pk, gsi1_sk) are derived from RegistryEntryIndexMap.
type RegistryEntry struct {
	ID        string `dynamodbav:"id" json:"id"`
	BucketArn string `dynamodbav:"bucketArn" json:"bucketArn"`
	AccountID string `dynamodbav:"accountId" json:"accountId"`
	Region    string `dynamodbav:"region" json:"region"`

	// CreatedAt and UpdatedAt are RFC3339 timestamps, informational only.
	CreatedAt string `dynamodbav:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt string `dynamodbav:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// KeyValues returns the attribute values used to expand the index map macros.
func (e RegistryEntry) KeyValues() map[string]string {
	return map[string]string{"id": e.ID}
}

// Touch stamps the entry with the given time. CreatedAt is only set when empty.
func (e *RegistryEntry) Touch(now time.Time) {
	ts := strfmt.DateTime(now.UTC()).String()
	if e.CreatedAt == "" {
		e.CreatedAt = ts
	}
	e.UpdatedAt = ts
}

// Precondition is the existence check a registry write must satisfy on the entry id.
type Precondition int

const (
	// MustNotExist fails the write if an entry with the same id exists.
	MustNotExist Precondition = iota + 1
	// MustExist fails the write if no entry with the id exists.
	MustExist
)

func (p Precondition) String() string {
	switch p {
	case MustNotExist:
		return "MustNotExist"
	case MustExist:
		return "MustExist"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is one of the defined preconditions.
func (p Precondition) Valid() bool {
	return p == MustNotExist || p == MustExist
}

// ReplicationTask is one copy of a changed object to one destination.
// It lives only for the duration of a single dispatch.
type ReplicationTask struct {
	SourceBucket string
	// SourceKey is the key as delivered by the notification, still plus-and-percent encoded.
	SourceKey     string
	SourceVersion string
	// DestinationRef is a bucket ARN or a bare bucket name.
	DestinationRef string
	// DestinationKey defaults to the decoded source key when empty.
	DestinationKey string
}

// Confirmation describes a completed copy.
type Confirmation struct {
	DestinationBucket string
	DestinationKey    string
	VersionID         string
	ETag              string
	CopiedAt          time.Time
}
