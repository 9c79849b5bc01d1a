/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a registry entry is not found
	ErrNotFound = errors.New("entry not found")

	// ErrPreconditionFailed is returned when a conditional write finds the
	// entry in the wrong existence state
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnrecognizedRequestType is returned for lifecycle events with an unknown request type
	ErrUnrecognizedRequestType = errors.New("unrecognized request type")

	// ErrCopyFailed is returned when a single object copy fails
	ErrCopyFailed = errors.New("copy failed")

	// ErrNoIndexMap is returned when no index map is found for a type
	ErrNoIndexMap = errors.New("no index map found for type")
)

// NotFoundError represents an error when a registry entry is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PreconditionFailedError represents a conditional write whose existence
// check on the key did not hold.
type PreconditionFailedError struct {
	Key       string
	Condition string
	Err       error
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("precondition %s failed for key %q", e.Condition, e.Key)
}

func (e *PreconditionFailedError) Is(target error) bool {
	return target == ErrPreconditionFailed
}

func (e *PreconditionFailedError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UnrecognizedRequestTypeError is returned for lifecycle events that are
// neither Create, Update nor Delete.
type UnrecognizedRequestTypeError struct {
	RequestType string
}

func (e *UnrecognizedRequestTypeError) Error() string {
	return fmt.Sprintf("Unknown RequestType '%s'", e.RequestType)
}

func (e *UnrecognizedRequestTypeError) Is(target error) bool {
	return target == ErrUnrecognizedRequestType
}

// CopyError carries the context of a failed source to destination copy.
type CopyError struct {
	SourceBucket   string
	SourceKey      string
	DestinationRef string
	DestinationKey string
	// Code is the service error code, if the failure came from the storage API.
	Code string
	Err  error
}

func (e *CopyError) Error() string {
	msg := fmt.Sprintf("copying %s:%s to %s:%s", e.SourceBucket, e.SourceKey, e.DestinationRef, e.DestinationKey)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CopyError) Is(target error) bool {
	return target == ErrCopyFailed
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewPreconditionFailedError creates a new PreconditionFailedError
func NewPreconditionFailedError(key, condition string, cause error) error {
	return &PreconditionFailedError{Key: key, Condition: condition, Err: cause}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewUnrecognizedRequestTypeError creates a new UnrecognizedRequestTypeError
func NewUnrecognizedRequestTypeError(requestType string) error {
	return &UnrecognizedRequestTypeError{RequestType: requestType}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPreconditionFailed checks if an error is a failed write precondition
func IsPreconditionFailed(err error) bool {
	return errors.Is(err, ErrPreconditionFailed)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnrecognizedRequestType checks if an error is an unknown lifecycle request type
func IsUnrecognizedRequestType(err error) bool {
	return errors.Is(err, ErrUnrecognizedRequestType)
}

// IsCopyFailed checks if an error is, or wraps, a CopyError
func IsCopyFailed(err error) bool {
	return errors.Is(err, ErrCopyFailed)
}

// AsCopyError extracts the CopyError from err, if any
func AsCopyError(err error) (*CopyError, bool) {
	var ce *CopyError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
