package blobgate

import (
	"context"
	"encoding/json"
	"log/slog"
)

// DeleteService deletes objects from the primary bucket and, best-effort,
// their derived counterparts from the derived bucket. The derived object's
// existence is never guaranteed (the pipeline may not have run, or never
// will for non-image keys), so its deletion failing is not an error the
// caller sees.
type DeleteService struct {
	store         BlobStore
	bucket        string
	derivedBucket string
	logger        *slog.Logger
}

// DeleteOption configures a DeleteService.
type DeleteOption func(*DeleteService)

// WithDeleteLogger sets the logger for the service.
func WithDeleteLogger(logger *slog.Logger) DeleteOption {
	return func(s *DeleteService) { s.logger = logger }
}

// NewDeleteService creates a delete service over the given bucket pair.
func NewDeleteService(store BlobStore, bucket, derivedBucket string, opts ...DeleteOption) *DeleteService {
	s := &DeleteService{
		store:         store,
		bucket:        bucket,
		derivedBucket: derivedBucket,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type deleteResult struct {
	Deleted []string `json:"deleted"`
	Message string   `json:"message"`
}

// Handle deletes the payload's key or keys. The reported deleted list is
// always the primary bucket's confirmed outcome, never the derived
// bucket's.
func (s *DeleteService) Handle(ctx context.Context, env RequestEnvelope) ResponseEnvelope {
	body := NormalizeBody(env.Body)
	if IsEmptyBody(body) {
		return ErrorResponse(400, ErrEmptyBody.Error())
	}

	var payload struct {
		Key  string   `json:"key"`
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		s.logger.Warn("unparseable delete payload", "err", err)
		return ErrorResponse(400, "invalid JSON: "+err.Error())
	}

	switch {
	case payload.Key != "":
		return s.deleteOne(ctx, payload.Key)
	case len(payload.Keys) > 0:
		return s.deleteBatch(ctx, payload.Keys)
	default:
		return ErrorResponse(400, "missing 'key' or 'keys' field")
	}
}

func (s *DeleteService) deleteOne(ctx context.Context, key string) ResponseEnvelope {
	if err := s.store.Delete(ctx, s.bucket, key); err != nil {
		s.logger.Error("delete failed", "bucket", s.bucket, "key", key, "err", err)
		return ErrorResponse(500, err.Error())
	}

	derivedKey := DeriveKey(key)
	TryBestEffort(s.logger, "delete_derived", func() error {
		return s.store.Delete(ctx, s.derivedBucket, derivedKey)
	})
	s.logger.Info("object deleted", "key", key, "derived_key", derivedKey)

	return JSONResponse(200, deleteResult{
		Deleted: []string{key},
		Message: "File deleted successfully from both buckets",
	})
}

func (s *DeleteService) deleteBatch(ctx context.Context, keys []string) ResponseEnvelope {
	deleted, err := s.store.DeleteBatch(ctx, s.bucket, keys)
	if err != nil {
		s.logger.Error("batch delete failed", "bucket", s.bucket, "count", len(keys), "err", err)
		return ErrorResponse(500, err.Error())
	}

	derivedKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		derivedKeys = append(derivedKeys, DeriveKey(k))
	}
	TryBestEffort(s.logger, "delete_derived_batch", func() error {
		_, err := s.store.DeleteBatch(ctx, s.derivedBucket, derivedKeys)
		return err
	})
	s.logger.Info("batch delete finished", "requested", len(keys), "deleted", len(deleted))

	if deleted == nil {
		deleted = []string{}
	}
	return JSONResponse(200, deleteResult{
		Deleted: deleted,
		Message: "Files deleted successfully from both buckets",
	})
}
