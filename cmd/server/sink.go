package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/blobgate/blobgate/pkg/blobgate/pipeline"
)

// pipelineRunTimeout bounds a single asynchronous thumbnail run.
const pipelineRunTimeout = 60 * time.Second

func pipelineContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), pipelineRunTimeout)
}

// pipelineSink triggers the thumbnail pipeline when the write service
// stores an object. Runs happen asynchronously on a detached context so the
// upload's latency and outcome are unaffected; failures are logged by the
// pipeline itself.
type pipelineSink struct {
	thumbnailer *pipeline.Pipeline
	logger      *slog.Logger
	wg          sync.WaitGroup
}

func newPipelineSink(thumbnailer *pipeline.Pipeline, logger *slog.Logger) *pipelineSink {
	return &pipelineSink{thumbnailer: thumbnailer, logger: logger}
}

// ObjectStored schedules a pipeline run for the stored object.
func (s *pipelineSink) ObjectStored(_ context.Context, bucket, key string) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := pipelineContext()
		defer cancel()
		evt := pipeline.ObjectCreatedEvent{Bucket: bucket, Key: key}
		if _, err := s.thumbnailer.Handle(ctx, evt); err != nil {
			s.logger.Error("pipeline run failed", "bucket", bucket, "key", key, "err", err)
		}
	}()
	return nil
}

// Wait blocks until in-flight pipeline runs finish. Called during shutdown.
func (s *pipelineSink) Wait() {
	s.wg.Wait()
}
