package blobgate

import (
	"context"
)

// BlobStore defines the interface for bucket-scoped blob storage.
//
// A single put or delete is atomic from the caller's point of view.
// DeleteBatch is not: partial success is expected, and the returned slice
// holds exactly the keys the store confirmed deleted. Absent objects are
// reported by wrapping ErrObjectNotFound.
type BlobStore interface {
	// Get downloads an object's bytes.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// Head retrieves object metadata without transferring the body.
	Head(ctx context.Context, bucket, key string) (*ObjectMeta, error)

	// Put stores an object, overwriting any existing object under key.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error

	// Delete removes a single object.
	Delete(ctx context.Context, bucket, key string) error

	// DeleteBatch removes multiple objects and returns the confirmed-deleted keys.
	DeleteBatch(ctx context.Context, bucket string, keys []string) ([]string, error)

	// List enumerates all objects in a bucket.
	List(ctx context.Context, bucket string) ([]StoredObject, error)
}

// Service is the contract every operation service implements. A service
// never returns an error: all failures are converted into the envelope.
type Service interface {
	Handle(ctx context.Context, env RequestEnvelope) ResponseEnvelope
}

// Invoker forwards a serialized request envelope to a named target service,
// which may run in-process or across a process boundary, and returns the
// raw reply bytes.
type Invoker interface {
	Invoke(ctx context.Context, target string, payload []byte) ([]byte, error)
}

// EventSink receives notifications about stored objects. Sinks are invoked
// best-effort after the primary operation's outcome is already determined.
type EventSink interface {
	ObjectStored(ctx context.Context, bucket, key string) error
}
