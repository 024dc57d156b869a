package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// LocalURLPrefix is the path the API serves the local upload directory under.
const LocalURLPrefix = "/uploads"

type localStore struct {
	dir       string
	urlPrefix string
}

var _ core.FileStore = (*localStore)(nil)

func NewLocalStore(dir, urlPrefix string) (core.FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	return &localStore{dir: dir, urlPrefix: urlPrefix}, nil
}

func (s *localStore) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	fp := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return "", errors.Wrapf(err, "creating dir of %s", key)
	}
	f, err := os.Create(fp)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", key)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "writing %s", key)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "closing %s", key)
	}
	return s.urlPrefix + "/" + key, nil
}

func (s *localStore) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(err, "deleting %s", key)
}
