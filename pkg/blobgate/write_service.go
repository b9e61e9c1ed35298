package blobgate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
)

// WriteService validates and stores an uploaded payload in the primary
// bucket. Writes are unconditional: no existence check, last write wins.
type WriteService struct {
	store  BlobStore
	bucket string
	events EventSink
	logger *slog.Logger
}

// WriteOption configures a WriteService.
type WriteOption func(*WriteService)

// WithEventSink sets the sink notified after a successful store. The
// notification is best-effort and never affects the upload's outcome.
func WithEventSink(sink EventSink) WriteOption {
	return func(s *WriteService) { s.events = sink }
}

// WithWriteLogger sets the logger for the service.
func WithWriteLogger(logger *slog.Logger) WriteOption {
	return func(s *WriteService) { s.logger = logger }
}

// NewWriteService creates a write service over the given primary bucket.
func NewWriteService(store BlobStore, bucket string, opts ...WriteOption) *WriteService {
	s := &WriteService{
		store:  store,
		bucket: bucket,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle stores the payload's content under its key.
func (s *WriteService) Handle(ctx context.Context, env RequestEnvelope) ResponseEnvelope {
	body := NormalizeBody(env.Body)

	var payload struct {
		Key     string `json:"key"`
		Content string `json:"content"`
	}
	if !IsEmptyBody(body) {
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			s.logger.Warn("unparseable upload payload", "err", err)
			return ErrorResponse(400, "invalid JSON: "+err.Error())
		}
	}

	if payload.Content == "" {
		return ErrorResponse(400, ErrMissingContent.Error())
	}
	if payload.Key == "" {
		return ErrorResponse(400, ErrMissingKey.Error())
	}

	data, err := base64.StdEncoding.DecodeString(payload.Content)
	if err != nil {
		s.logger.Error("content is not valid base64", "key", payload.Key, "err", err)
		return ErrorResponse(500, "failed to decode content: "+err.Error())
	}

	contentType := MimeTypeForKey(payload.Key)
	if err := s.store.Put(ctx, s.bucket, payload.Key, data, contentType); err != nil {
		s.logger.Error("put failed", "bucket", s.bucket, "key", payload.Key, "err", err)
		return ErrorResponse(500, "upload failed: "+err.Error())
	}
	s.logger.Info("object stored", "bucket", s.bucket, "key", payload.Key, "size", len(data))

	// The upload's outcome is already determined; the notification must not
	// change it.
	if s.events != nil {
		TryBestEffort(s.logger, "notify_object_stored", func() error {
			return s.events.ObjectStored(ctx, s.bucket, payload.Key)
		})
	}

	return TextResponse(200, "Object uploaded successfully")
}
