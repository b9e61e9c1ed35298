package blobgate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// CORS headers attached to every response the gateway produces.
func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
	}
}

func responseWith(status int, body, contentType string, isBase64 bool) ResponseEnvelope {
	headers := corsHeaders()
	headers["Content-Type"] = contentType
	return ResponseEnvelope{
		StatusCode:      status,
		Body:            body,
		Headers:         headers,
		IsBase64Encoded: isBase64,
	}
}

// TextResponse builds a plain-text response. Text bodies are never
// base64-encoded.
func TextResponse(status int, body string) ResponseEnvelope {
	return responseWith(status, body, "text/plain", false)
}

// JSONResponse builds an application/json response from v. A value that
// cannot be marshalled degrades to a 500 error response.
func JSONResponse(status int, v any) ResponseEnvelope {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrorResponse(500, fmt.Sprintf("failed to encode response: %v", err))
	}
	return responseWith(status, string(data), "application/json", false)
}

// RawJSONResponse builds an application/json response from pre-encoded JSON.
func RawJSONResponse(status int, body string) ResponseEnvelope {
	return responseWith(status, body, "application/json", false)
}

// ErrorResponse builds a JSON error body of the form {"error": message}.
func ErrorResponse(status int, message string) ResponseEnvelope {
	return JSONResponse(status, map[string]string{"error": message})
}

// BinaryResponse builds a base64-encoded response carrying binary content.
func BinaryResponse(status int, data []byte, contentType string) ResponseEnvelope {
	return responseWith(status, base64.StdEncoding.EncodeToString(data), contentType, true)
}
