package blobgate

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// DefaultDispatchTimeout bounds a single downstream invocation.
const DefaultDispatchTimeout = 25 * time.Second

// Dispatcher classifies an inbound request into an action, forwards it to
// the matching service through an Invoker, and normalizes the reply into a
// ResponseEnvelope. No downstream failure escapes it: transport errors and
// timeouts become 500 responses.
type Dispatcher struct {
	invoker Invoker
	timeout time.Duration
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchTimeout bounds the downstream call.
func WithDispatchTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) { dp.timeout = d }
}

// WithDispatchLogger sets the logger for the dispatcher.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(dp *Dispatcher) { dp.logger = logger }
}

// NewDispatcher creates a dispatcher forwarding through the given invoker.
func NewDispatcher(invoker Invoker, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		invoker: invoker,
		timeout: DefaultDispatchTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ResolveAction decides which operation a request maps to. An explicit
// action query parameter wins, case-insensitively; anything it names other
// than delete or upload is a fetch. Without it, the HTTP method decides:
// POST uploads, DELETE deletes, and everything else (PUT is repurposed as a
// download trigger by frontend convention) goes to the read service, which
// resolves fetch-vs-list itself.
func ResolveAction(env RequestEnvelope) Action {
	if explicit := env.Query("action"); explicit != "" {
		switch strings.ToLower(explicit) {
		case "delete":
			return ActionDelete
		case "upload":
			return ActionUpload
		default:
			return ActionFetch
		}
	}

	switch strings.ToUpper(env.HTTPMethod) {
	case "POST":
		return ActionUpload
	case "DELETE":
		return ActionDelete
	case "PUT":
		return ActionFetch
	default:
		return ActionFetch
	}
}

// Target names for the operation services.
const (
	TargetRead   = "read"
	TargetUpload = "upload"
	TargetDelete = "delete"
)

func targetForAction(action Action) string {
	switch action {
	case ActionUpload:
		return TargetUpload
	case ActionDelete:
		return TargetDelete
	default:
		return TargetRead
	}
}

// ForwardEnvelope builds the canonical payload handed to a target service:
// the original method, the original body (or "{}" when absent), and the
// headers and query parameters forwarded unchanged.
func ForwardEnvelope(env RequestEnvelope) RequestEnvelope {
	body := env.Body
	if strings.TrimSpace(body) == "" {
		body = "{}"
	}
	return RequestEnvelope{
		HTTPMethod:  env.HTTPMethod,
		Body:        body,
		Headers:     env.Headers,
		QueryParams: env.QueryParams,
	}
}

// Handle resolves the action, invokes the target service, and normalizes
// its reply.
func (d *Dispatcher) Handle(ctx context.Context, env RequestEnvelope) ResponseEnvelope {
	action := ResolveAction(env)
	target := targetForAction(action)
	d.logger.Info("dispatching request", "method", env.HTTPMethod, "action", action, "target", target)

	payload, err := json.Marshal(ForwardEnvelope(env))
	if err != nil {
		resp := ErrorResponse(500, "failed to encode payload: "+err.Error())
		d.observe(action, resp.StatusCode)
		return resp
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	reply, err := d.invoker.Invoke(callCtx, target, payload)
	if err != nil {
		d.logger.Error("downstream invocation failed", "target", target, "err", err)
		resp := ErrorResponse(500, err.Error())
		d.observe(action, resp.StatusCode)
		return resp
	}

	resp := normalizeReply(reply)
	d.observe(action, resp.StatusCode)
	return resp
}

func (d *Dispatcher) observe(action Action, status int) {
	requestsTotal.WithLabelValues(string(action), strconv.Itoa(status)).Inc()
}

// normalizeReply turns a downstream reply into a well-formed response
// envelope. Structured replies keep their fields, with statusCode
// defaulting to 200 and the reply's headers merged over the gateway CORS
// set. A reply that is not envelope-shaped is wrapped as 200 plain text.
func normalizeReply(reply []byte) ResponseEnvelope {
	var parsed struct {
		StatusCode      *int              `json:"statusCode"`
		Body            *string           `json:"body"`
		Headers         map[string]string `json:"headers"`
		IsBase64Encoded *bool             `json:"isBase64Encoded"`
	}
	if err := json.Unmarshal(reply, &parsed); err != nil || (parsed.StatusCode == nil && parsed.Body == nil) {
		return TextResponse(200, string(reply))
	}

	resp := ResponseEnvelope{StatusCode: 200, Headers: corsHeaders()}
	if parsed.StatusCode != nil {
		resp.StatusCode = *parsed.StatusCode
	}
	if parsed.Body != nil {
		resp.Body = *parsed.Body
	}
	for k, v := range parsed.Headers {
		resp.Headers[k] = v
	}
	if parsed.IsBase64Encoded != nil {
		resp.IsBase64Encoded = *parsed.IsBase64Encoded
	}
	return resp
}
