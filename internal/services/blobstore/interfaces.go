package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound signals the requested key does not exist
var ErrBlobNotFound = errors.New("blob not found")

// Store persists media blobs (source files, derived audio, rendered clips)
// under caller-chosen keys. Writes are last-write-wins; re-running a stage
// overwrites the previous blob under the same key.
type Store interface {
	// Put stores the content under key and returns a retrievable URL
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)
	// Get opens the blob for reading; the caller closes it
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	// URL returns the retrievable URL for key without touching the backend
	URL(key string) string
}
