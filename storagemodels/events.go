/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// RequestType is the kind of lifecycle operation requested for a registry entry.
type RequestType string

const (
	RequestCreate RequestType = "Create"
	RequestUpdate RequestType = "Update"
	RequestDelete RequestType = "Delete"
)

// LifecycleEvent is a custom-resource lifecycle request for a replication destination.
type LifecycleEvent struct {
	RequestType        RequestType           `json:"RequestType"`
	PhysicalResourceID string                `json:"PhysicalResourceId,omitempty"`
	ResourceProperties DestinationProperties `json:"ResourceProperties"`
}

// DestinationProperties describes the destination bucket to register.
type DestinationProperties struct {
	BucketArn string `json:"BucketArn"`
	AccountID string `json:"AccountId"`
	Region    string `json:"Region"`
}

// Status is the outcome reported back to the lifecycle orchestrator.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// LifecycleResult is the response to a LifecycleEvent.
type LifecycleResult struct {
	Status             Status            `json:"Status"`
	PhysicalResourceID string            `json:"PhysicalResourceId,omitempty"`
	Data               map[string]string `json:"Data,omitempty"`
	Reason             string            `json:"reason,omitempty"`
}

// StorageChangeBatch is a storage-change notification.
// A nil Records slice (absent or null in JSON) is invalid input; an empty one is not.
type StorageChangeBatch struct {
	Records []ChangeRecord `json:"Records"`
}

// ChangeRecord is a single changed object.
type ChangeRecord struct {
	S3 S3Entity `json:"s3"`
}

type S3Entity struct {
	Bucket S3Bucket `json:"bucket"`
	Object S3Object `json:"object"`
}

type S3Bucket struct {
	Name string `json:"name"`
}

// S3Object identifies the changed object. Key is plus-and-percent encoded.
type S3Object struct {
	Key       string `json:"key"`
	Version   string `json:"version,omitempty"`
	VersionID string `json:"versionId,omitempty"`
}

// SourceVersion returns the object version carried by the record, if any.
func (r ChangeRecord) SourceVersion() string {
	if r.S3.Object.Version != "" {
		return r.S3.Object.Version
	}
	return r.S3.Object.VersionID
}
