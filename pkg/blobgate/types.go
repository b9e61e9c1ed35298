package blobgate

import (
	"strings"
	"time"
)

// Action is the operation a request resolves to.
type Action string

// Action constants (typed).
const (
	ActionFetch  Action = "get"
	ActionList   Action = "list"
	ActionUpload Action = "upload"
	ActionDelete Action = "delete"
)

// BucketRole distinguishes the bucket holding originals from the bucket
// holding pipeline-generated thumbnails.
type BucketRole string

// Bucket role constants (typed).
const (
	BucketRolePrimary BucketRole = "primary"
	BucketRoleDerived BucketRole = "derived"
)

// StoredObject is the listing projection of an object in a bucket.
type StoredObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// ObjectMeta contains metadata about an object in storage, retrieved
// without transferring the object body.
type ObjectMeta struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// RequestEnvelope is the transport-level request shape consumed by the
// dispatcher and services. The JSON field names follow the proxy-event wire
// format, so an envelope round-trips unchanged across a process boundary.
type RequestEnvelope struct {
	HTTPMethod      string            `json:"httpMethod"`
	Body            string            `json:"body"`
	Headers         map[string]string `json:"headers,omitempty"`
	QueryParams     map[string]string `json:"queryStringParameters,omitempty"`
	IsBase64Encoded bool              `json:"isBase64Encoded,omitempty"`
}

// Header returns the value of the named header, matched case-insensitively.
func (e RequestEnvelope) Header(name string) string {
	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Query returns the value of the named query parameter.
func (e RequestEnvelope) Query(name string) string {
	return e.QueryParams[name]
}

// ResponseEnvelope is the uniform reply shape every service produces.
// IsBase64Encoded is true iff Body is a base64 encoding of binary content;
// text bodies are never base64-encoded.
type ResponseEnvelope struct {
	StatusCode      int               `json:"statusCode"`
	Body            string            `json:"body"`
	Headers         map[string]string `json:"headers,omitempty"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}
