package blobgate

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrObjectNotFound indicates an object was not found in a bucket
	ErrObjectNotFound = errors.New("object not found")

	// ErrMissingKey indicates the request payload did not carry a key
	ErrMissingKey = errors.New("missing 'key' field in request body")

	// ErrMissingContent indicates the upload payload did not carry content
	ErrMissingContent = errors.New("missing 'content' field in request body")

	// ErrEmptyBody indicates a request that requires a body arrived without one
	ErrEmptyBody = errors.New("request body is required")
)

// StorageError represents an error from a blob-store operation.
type StorageError struct {
	Bucket string
	Key    string
	Op     string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s in bucket %s: %v", e.Op, e.Key, e.Bucket, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
