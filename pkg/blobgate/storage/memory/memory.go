package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blobgate/blobgate/pkg/blobgate"
)

type object struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// Store is an in-memory implementation of the blobgate.BlobStore interface,
// used for tests and local development.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string]object
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{buckets: make(map[string]map[string]object)}
}

// Get downloads an object's bytes.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, &blobgate.StorageError{Bucket: bucket, Key: key, Op: "get", Err: blobgate.ErrObjectNotFound}
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

// Head retrieves object metadata without transferring the body.
func (s *Store) Head(ctx context.Context, bucket, key string) (*blobgate.ObjectMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, &blobgate.StorageError{Bucket: bucket, Key: key, Op: "head", Err: blobgate.ErrObjectNotFound}
	}
	return &blobgate.ObjectMeta{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.lastModified,
	}, nil
}

// Put stores an object, overwriting any existing object under key.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string]object)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.buckets[bucket][key] = object{
		data:         stored,
		contentType:  contentType,
		lastModified: time.Now().UTC(),
	}
	return nil
}

// Delete removes a single object.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[bucket][key]; !ok {
		return &blobgate.StorageError{Bucket: bucket, Key: key, Op: "delete", Err: blobgate.ErrObjectNotFound}
	}
	delete(s.buckets[bucket], key)
	return nil
}

// DeleteBatch removes multiple objects, confirming only the keys that
// existed. Missing keys are simply absent from the confirmed list.
func (s *Store) DeleteBatch(ctx context.Context, bucket string, keys []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := s.buckets[bucket][key]; ok {
			delete(s.buckets[bucket], key)
			deleted = append(deleted, key)
		}
	}
	return deleted, nil
}

// List enumerates all objects in a bucket, ordered by key.
func (s *Store) List(ctx context.Context, bucket string) ([]blobgate.StoredObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects := make([]blobgate.StoredObject, 0, len(s.buckets[bucket]))
	for key, obj := range s.buckets[bucket] {
		objects = append(objects, blobgate.StoredObject{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}
