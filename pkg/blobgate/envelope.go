package blobgate

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strings"
)

// wrapperShape is the marker pair an upstream hop leaves on a re-wrapped
// body: a JSON object carrying both the original body and the HTTP method.
type wrapperShape struct {
	Body       *string `json:"body"`
	HTTPMethod *string `json:"httpMethod"`
}

// IsWrapped reports whether body is a one-level entry-point wrapper: a JSON
// object containing both a "body" and an "httpMethod" field.
func IsWrapped(body string) bool {
	if !strings.HasPrefix(strings.TrimSpace(body), "{") {
		return false
	}
	var w wrapperShape
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return false
	}
	return w.Body != nil && w.HTTPMethod != nil
}

// UnwrapOnce removes one level of entry-point wrapping from a request body.
// Applying it to an already-unwrapped body is a no-op, so the normalization
// is idempotent.
func UnwrapOnce(body string) string {
	if !IsWrapped(body) {
		return body
	}
	var w wrapperShape
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return body
	}
	return *w.Body
}

var base64Shape = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

// DecodeBase64Body decodes a request body that the transport delivered
// base64-encoded. Bodies that already look like JSON, or that fail to
// decode, are returned untouched.
func DecodeBase64Body(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return body
	}
	if !base64Shape.MatchString(trimmed) {
		return body
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return body
	}
	return string(decoded)
}

// NormalizeBody applies the full body normalization a service performs at
// its boundary: transport-level base64 decoding, then one level of
// entry-point unwrapping.
func NormalizeBody(body string) string {
	return UnwrapOnce(DecodeBase64Body(body))
}

// IsEmptyBody reports whether a body carries no payload at all: absent,
// whitespace, or the literal "{}" the dispatcher substitutes for an empty
// body.
func IsEmptyBody(body string) bool {
	trimmed := strings.TrimSpace(body)
	return trimmed == "" || trimmed == "{}"
}
