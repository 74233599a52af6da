// Package storage is the blob-store boundary for uploaded registration
// documents.
package storage

import (
	"context"
	"io"
)

// Uploader stores a blob under key and returns a retrievable URL.
type Uploader interface {
	Upload(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
}
