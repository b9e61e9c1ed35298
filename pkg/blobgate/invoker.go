package blobgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// LocalInvoker routes envelopes to services registered in-process. The
// payload still crosses a marshal/unmarshal boundary, so a service behaves
// identically whether it is invoked locally or remotely.
type LocalInvoker struct {
	mu       sync.RWMutex
	services map[string]Service
}

// NewLocalInvoker creates an empty in-process invoker.
func NewLocalInvoker() *LocalInvoker {
	return &LocalInvoker{services: make(map[string]Service)}
}

// Register binds a target name to a service.
func (l *LocalInvoker) Register(target string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services[target] = svc
}

// Invoke unmarshals the payload, calls the named service, and marshals its
// reply.
func (l *LocalInvoker) Invoke(ctx context.Context, target string, payload []byte) ([]byte, error) {
	l.mu.RLock()
	svc, ok := l.services[target]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no service registered for target %q", target)
	}

	var env RequestEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("invalid payload for target %q: %w", target, err)
	}

	resp := svc.Handle(ctx, env)
	return json.Marshal(resp)
}

// HTTPInvoker forwards envelopes to out-of-process services over HTTP. The
// reply body is returned as-is; the dispatcher owns normalization.
type HTTPInvoker struct {
	client    *http.Client
	endpoints map[string]string
}

// NewHTTPInvoker creates an invoker posting payloads to the given
// target→URL endpoints. A nil client falls back to http.DefaultClient; the
// dispatcher bounds each call with a context deadline either way.
func NewHTTPInvoker(endpoints map[string]string, client *http.Client) *HTTPInvoker {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPInvoker{client: client, endpoints: endpoints}
}

// Invoke posts the payload to the target's endpoint and returns the raw
// reply bytes.
func (h *HTTPInvoker) Invoke(ctx context.Context, target string, payload []byte) ([]byte, error) {
	url, ok := h.endpoints[target]
	if !ok {
		return nil, fmt.Errorf("no endpoint configured for target %q", target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request for target %q: %w", target, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed calling target %q: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading reply from target %q: %w", target, err)
	}
	return body, nil
}
