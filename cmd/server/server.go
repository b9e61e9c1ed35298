package main

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blobgate/blobgate/pkg/blobgate"
	"github.com/blobgate/blobgate/pkg/blobgate/pipeline"
)

// gatewayServer converts HTTP traffic to request envelopes, hands them to
// the dispatcher, and writes the resulting response envelopes back.
type gatewayServer struct {
	dispatcher  *blobgate.Dispatcher
	thumbnailer *pipeline.Pipeline
	logger      *slog.Logger
}

func newGatewayServer(dispatcher *blobgate.Dispatcher, thumbnailer *pipeline.Pipeline, logger *slog.Logger) *gatewayServer {
	return &gatewayServer{
		dispatcher:  dispatcher,
		thumbnailer: thumbnailer,
		logger:      logger,
	}
}

// Routes sets up the HTTP routes.
func (s *gatewayServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/events", s.handleEvents)

	// Everything else is gateway traffic.
	r.HandleFunc("/*", s.handleGateway)

	return r
}

func (s *gatewayServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleEvents accepts an S3-style bucket notification and runs the
// thumbnail pipeline for each record. Replies 202: the caller is a
// notification hop, not a client waiting on the thumbnail.
func (s *gatewayServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := pipeline.ParseS3Event(payload)
	if err != nil {
		s.logger.Warn("rejecting event payload", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, evt := range events {
		go func(evt pipeline.ObjectCreatedEvent) {
			ctx, cancel := pipelineContext()
			defer cancel()
			if _, err := s.thumbnailer.Handle(ctx, evt); err != nil {
				s.logger.Error("pipeline run failed", "bucket", evt.Bucket, "key", evt.Key, "err", err)
			}
		}(evt)
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]any{"accepted": len(events)})
}

func (s *gatewayServer) handleGateway(w http.ResponseWriter, r *http.Request) {
	env, err := envelopeFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := s.dispatcher.Handle(r.Context(), env)
	writeEnvelope(w, resp, s.logger)
}

// envelopeFromRequest flattens an *http.Request into the transport
// envelope. Multi-valued headers and query parameters keep their first
// value, matching the proxy-event shape.
func envelopeFromRequest(r *http.Request) (blobgate.RequestEnvelope, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return blobgate.RequestEnvelope{}, err
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	query := r.URL.Query()
	queryParams := make(map[string]string, len(query))
	for name, values := range query {
		if len(values) > 0 {
			queryParams[name] = values[0]
		}
	}

	return blobgate.RequestEnvelope{
		HTTPMethod:  r.Method,
		Body:        string(body),
		Headers:     headers,
		QueryParams: queryParams,
	}, nil
}

// writeEnvelope writes a response envelope back as HTTP. Base64 bodies are
// decoded to raw bytes; a body that claims base64 but fails to decode is
// written as-is rather than dropped.
func writeEnvelope(w http.ResponseWriter, resp blobgate.ResponseEnvelope, logger *slog.Logger) {
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if resp.IsBase64Encoded {
		data, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			logger.Error("response claims base64 but does not decode", "err", err)
			_, _ = io.WriteString(w, resp.Body)
			return
		}
		_, _ = w.Write(data)
		return
	}
	_, _ = io.WriteString(w, resp.Body)
}
