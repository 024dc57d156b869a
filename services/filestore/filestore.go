// Package filestore implements core.FileStore over Backblaze B2 and a local directory.
package filestore

import (
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var ErrInvalidKey = errors.New("invalid file key")

// New returns the store selected by conf.Storage.Driver.
func New(ctx context.Context, conf *core.Config) (core.FileStore, error) {
	sc := conf.Storage
	switch sc.Driver {
	case "b2":
		return NewB2Store(ctx, sc.B2KeyID, sc.B2AppKey, sc.B2Bucket, sc.B2BaseURL)
	case "local", "":
		return NewLocalStore(sc.LocalDir, LocalURLPrefix)
	default:
		return nil, errors.Errorf("unknown storage driver %q", sc.Driver)
	}
}

// cleanKey rejects keys escaping the store root.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(key)), "/")
	if key == "" || key == "." {
		return "", ErrInvalidKey
	}
	return key, nil
}
