package filestore

import (
	"context"
	"io"
	"strings"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type b2Store struct {
	client  *b2.Client
	bucket  *b2.Bucket
	baseURL string
}

var _ core.FileStore = (*b2Store)(nil)

// NewB2Store connects to the bucket. baseURL overrides the download host (eg. a CDN).
func NewB2Store(ctx context.Context, keyID, appKey, bucketName, baseURL string) (core.FileStore, error) {
	client, err := b2.NewClient(ctx, keyID, appKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating b2 client")
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, errors.Wrapf(err, "getting bucket %s", bucketName)
	}
	return &b2Store{client: client, bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *b2Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	obj := s.bucket.Object(key)
	w := obj.NewWriter(ctx, b2.WithAttrsOption(&b2.Attrs{ContentType: contentType}))
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrapf(err, "writing %s", key)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "closing %s", key)
	}

	if s.baseURL != "" {
		return s.baseURL + "/file/" + s.bucket.Name() + "/" + key, nil
	}
	return obj.URL(), nil
}

func (s *b2Store) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	return errors.Wrapf(s.bucket.Object(key).Delete(ctx), "deleting %s", key)
}
