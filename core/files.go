package core

import (
	"context"
	"io"
)

// FileStore keeps uploaded files and tells where they can be downloaded.
type FileStore interface {
	// Put stores r under key and returns its download URL.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}
