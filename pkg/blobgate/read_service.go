package blobgate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
)

// DefaultObjectKey is fetched when a request carries no key and no listing
// signal. Serving an HTML page by default keeps plain browser requests
// working; API clients signal intent via format=json or Content-Type.
const DefaultObjectKey = "index.html"

// MaxFetchBytes is the largest object the gateway will transfer inline.
// Enforced against Head metadata before any transfer starts.
const MaxFetchBytes = 10 * 1024 * 1024

// ReadService classifies between "list all objects" and "fetch one object"
// and executes against the primary bucket.
type ReadService struct {
	store      BlobStore
	bucket     string
	defaultKey string
	logger     *slog.Logger
}

// ReadOption configures a ReadService.
type ReadOption func(*ReadService)

// WithDefaultKey overrides the key fetched when a request carries no key.
func WithDefaultKey(key string) ReadOption {
	return func(s *ReadService) { s.defaultKey = key }
}

// WithReadLogger sets the logger for the service.
func WithReadLogger(logger *slog.Logger) ReadOption {
	return func(s *ReadService) { s.logger = logger }
}

// NewReadService creates a read service over the given primary bucket.
func NewReadService(store BlobStore, bucket string, opts ...ReadOption) *ReadService {
	s := &ReadService{
		store:      store,
		bucket:     bucket,
		defaultKey: DefaultObjectKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle classifies the request and executes a fetch or a list.
//
// Classification for an empty body, in order: an explicit format=json query
// parameter lists; a JSON Content-Type lists; an Accept header naming
// text/html fetches the default key; no signal at all also fetches the
// default key. A non-empty body is normalized and its "key" field fetched.
func (s *ReadService) Handle(ctx context.Context, env RequestEnvelope) ResponseEnvelope {
	body := NormalizeBody(env.Body)

	if IsEmptyBody(body) {
		switch {
		case env.Query("format") == "json":
			return s.list(ctx)
		case strings.Contains(strings.ToLower(env.Header("Content-Type")), "application/json"):
			return s.list(ctx)
		case strings.Contains(strings.ToLower(env.Header("Accept")), "text/html"):
			return s.fetch(ctx, s.defaultKey)
		default:
			return s.fetch(ctx, s.defaultKey)
		}
	}

	var payload struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		s.logger.Warn("unparseable fetch payload, falling back to default key", "err", err)
	}
	key := payload.Key
	if key == "" {
		key = s.defaultKey
	}
	return s.fetch(ctx, key)
}

func (s *ReadService) fetch(ctx context.Context, key string) ResponseEnvelope {
	meta, err := s.store.Head(ctx, s.bucket, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			s.logger.Info("object not found", "bucket", s.bucket, "key", key)
			return ErrorResponse(404, "object not found: "+key)
		}
		s.logger.Error("head failed", "bucket", s.bucket, "key", key, "err", err)
		return ErrorResponse(404, err.Error())
	}

	// Size gate runs before the transfer, not after.
	if meta.Size >= MaxFetchBytes {
		s.logger.Info("object too large for inline fetch", "key", key, "size", meta.Size)
		return ErrorResponse(413, "object too large")
	}

	data, err := s.store.Get(ctx, s.bucket, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return ErrorResponse(404, "object not found: "+key)
		}
		s.logger.Error("get failed", "bucket", s.bucket, "key", key, "err", err)
		return ErrorResponse(500, err.Error())
	}

	mime := MimeTypeForKey(key)
	if IsTextMimeType(mime) {
		return responseWith(200, string(data), mime, false)
	}
	return BinaryResponse(200, data, mime)
}

func (s *ReadService) list(ctx context.Context) ResponseEnvelope {
	objects, err := s.store.List(ctx, s.bucket)
	if err != nil {
		// List failures degrade to an empty array rather than surfacing
		// store internals.
		s.logger.Error("list failed", "bucket", s.bucket, "err", err)
		return RawJSONResponse(500, "[]")
	}
	if objects == nil {
		objects = []StoredObject{}
	}
	return JSONResponse(200, objects)
}
