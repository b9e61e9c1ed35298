package blobgate

import (
	"strings"
)

// DerivedKeyPrefix is prepended to a primary key to form its derived
// counterpart's key. The mapping is recomputed, never persisted, so it must
// stay deterministic and total over all valid keys.
const DerivedKeyPrefix = "resized-"

// DeriveKey maps a primary-bucket key to its derived-bucket counterpart.
func DeriveKey(key string) string {
	return DerivedKeyPrefix + key
}

// DefaultMimeType is used when a key's extension is not in the MIME table.
const DefaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"html": "text/html",
	"txt":  "text/plain",
}

// MimeTypeForKey infers a MIME type from the key's file extension.
func MimeTypeForKey(key string) string {
	ext := KeyExtension(key)
	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return DefaultMimeType
}

// IsTextMimeType reports whether bodies of the given MIME type are returned
// as raw text rather than base64.
func IsTextMimeType(mime string) bool {
	return strings.HasPrefix(mime, "text/html") || strings.HasPrefix(mime, "text/plain")
}

// KeyExtension returns the lower-cased text after the last dot in key, or
// "" when the key has no extension.
func KeyExtension(key string) string {
	idx := strings.LastIndex(key, ".")
	if idx < 0 || idx == len(key)-1 {
		return ""
	}
	return strings.ToLower(key[idx+1:])
}
