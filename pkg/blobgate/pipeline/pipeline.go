// Package pipeline keeps the derived bucket's thumbnails consistent with
// the primary bucket's originals. It reacts to "new object stored" events,
// downscales supported images, and stores the result under a deterministic
// derived key.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"

	"github.com/google/uuid"

	"github.com/blobgate/blobgate/pkg/blobgate"
)

// Outcome classifies a pipeline run. A skipped run is not an error:
// non-image uploads are expected and ignored. A decode failure on a
// supported extension is an error, distinguishing "nothing to do" from
// "something went wrong".
type Outcome string

// Outcome constants (typed).
const (
	OutcomeResized Outcome = "resized"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// Extensions the pipeline derives thumbnails for, mapped to the encoded
// content type. The output format always matches the source extension.
var supportedFormats = map[string]string{
	"jpg": "image/jpeg",
	"png": "image/png",
}

// ObjectCreatedEvent is the trigger carrying the stored object's location.
type ObjectCreatedEvent struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Result describes a finished pipeline run.
type Result struct {
	RunID      uuid.UUID
	Outcome    Outcome
	DerivedKey string
	Width      int
	Height     int
}

// Pipeline derives thumbnails into the derived bucket. Runs are
// deterministic: the derived bytes are a pure function of the source bytes
// and the fixed scale policy, so duplicate trigger delivery is safe to
// replay.
type Pipeline struct {
	store         blobgate.BlobStore
	derivedBucket string
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a pipeline writing thumbnails into derivedBucket.
func New(store blobgate.BlobStore, derivedBucket string, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:         store,
		derivedBucket: derivedBucket,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle runs a single pass for one event: classify, fetch, decode, resize,
// encode, store. No retries happen inside the handler.
func (p *Pipeline) Handle(ctx context.Context, evt ObjectCreatedEvent) (Result, error) {
	result := Result{RunID: uuid.New()}

	ext := blobgate.KeyExtension(evt.Key)
	contentType, ok := supportedFormats[ext]
	if !ok {
		p.logger.Info("skipping non-image object", "key", evt.Key, "ext", ext)
		result.Outcome = OutcomeSkipped
		blobgate.ObservePipelineRun(string(OutcomeSkipped))
		return result, nil
	}

	data, err := p.store.Get(ctx, evt.Bucket, evt.Key)
	if err != nil {
		result.Outcome = OutcomeError
		blobgate.ObservePipelineRun(string(OutcomeError))
		return result, fmt.Errorf("failed to fetch source object %s/%s: %w", evt.Bucket, evt.Key, err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Extension said image, content disagreed. Unlike the skip above,
		// this is an error outcome.
		result.Outcome = OutcomeError
		blobgate.ObservePipelineRun(string(OutcomeError))
		return result, fmt.Errorf("failed to decode image %s: %w", evt.Key, err)
	}

	thumb := Resize(src)
	encoded, err := encode(thumb, ext)
	if err != nil {
		result.Outcome = OutcomeError
		blobgate.ObservePipelineRun(string(OutcomeError))
		return result, fmt.Errorf("failed to encode thumbnail for %s: %w", evt.Key, err)
	}

	derivedKey := blobgate.DeriveKey(evt.Key)
	if err := p.store.Put(ctx, p.derivedBucket, derivedKey, encoded, contentType); err != nil {
		result.Outcome = OutcomeError
		blobgate.ObservePipelineRun(string(OutcomeError))
		return result, fmt.Errorf("failed to store thumbnail %s/%s: %w", p.derivedBucket, derivedKey, err)
	}

	bounds := thumb.Bounds()
	result.Outcome = OutcomeResized
	result.DerivedKey = derivedKey
	result.Width = bounds.Dx()
	result.Height = bounds.Dy()
	blobgate.ObservePipelineRun(string(OutcomeResized))
	p.logger.Info("thumbnail stored",
		"run_id", result.RunID,
		"source", evt.Bucket+"/"+evt.Key,
		"derived", p.derivedBucket+"/"+derivedKey,
		"width", result.Width,
		"height", result.Height,
		"bytes", len(encoded))
	return result, nil
}

func encode(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	switch ext {
	case "jpg":
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", ext)
	}
	return buf.Bytes(), nil
}
