package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blobgate/blobgate/pkg/blobgate"
	"github.com/blobgate/blobgate/pkg/blobgate/config"
	"github.com/blobgate/blobgate/pkg/blobgate/pipeline"
)

func main() {
	// Local development convenience; in deployment the environment is real.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	store, err := cfg.BuildStore()
	if err != nil {
		slog.Error("failed to build blob store", "err", err)
		os.Exit(1)
	}

	thumbnailer := pipeline.New(store, cfg.DerivedBucket, pipeline.WithLogger(logger))
	sink := newPipelineSink(thumbnailer, logger)

	readService := blobgate.NewReadService(store, cfg.PrimaryBucket, blobgate.WithReadLogger(logger))
	writeService := blobgate.NewWriteService(store, cfg.PrimaryBucket,
		blobgate.WithEventSink(sink),
		blobgate.WithWriteLogger(logger))
	deleteService := blobgate.NewDeleteService(store, cfg.PrimaryBucket, cfg.DerivedBucket,
		blobgate.WithDeleteLogger(logger))

	invoker := blobgate.NewLocalInvoker()
	invoker.Register(blobgate.TargetRead, readService)
	invoker.Register(blobgate.TargetUpload, writeService)
	invoker.Register(blobgate.TargetDelete, deleteService)

	dispatcher := blobgate.NewDispatcher(invoker,
		blobgate.WithDispatchTimeout(cfg.DispatchTimeout()),
		blobgate.WithDispatchLogger(logger))

	server := newGatewayServer(dispatcher, thumbnailer, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Routes(),
	}

	go func() {
		slog.Info("gateway starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"backend", cfg.StorageBackend,
			"primary_bucket", cfg.PrimaryBucket,
			"derived_bucket", cfg.DerivedBucket)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sink.Wait()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("server exiting")
}
