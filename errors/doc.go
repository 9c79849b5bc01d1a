/*
Package errors provides semantic error types for artifact replication.

The package defines the failure scenarios of the registry and the replication
pipeline with specific types that can be checked using the standard errors.Is()
function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound                = errors.New("entry not found")
	    ErrPreconditionFailed      = errors.New("precondition failed")
	    ErrInvalidInput            = errors.New("invalid input")
	    ErrUnrecognizedRequestType = errors.New("unrecognized request type")
	    ErrCopyFailed              = errors.New("copy failed")
	)

Usage:

	err := store.Put(ctx, entry, storagemodels.MustNotExist)
	if errors.IsPreconditionFailed(err) {
	    // an entry with the same id is already registered
	}

	if ce, ok := errors.AsCopyError(err); ok {
	    log.Printf("copy to %s failed: %v", ce.DestinationRef, ce.Err)
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
