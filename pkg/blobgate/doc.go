// Package blobgate implements a small object-storage gateway: CRUD-style
// operations (list, fetch, upload, delete) over a blob store, plus the
// dispatch layer that classifies loosely-typed client requests into actions
// and normalizes downstream replies into a uniform response envelope.
//
// The gateway talks to storage through the BlobStore interface; see the
// storage/s3 and storage/memory subpackages for implementations. Thumbnail
// generation for newly stored objects lives in the pipeline subpackage.
package blobgate
