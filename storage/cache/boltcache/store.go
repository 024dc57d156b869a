// Package boltcache is a cache.Store persisted in a single bbolt file.
package boltcache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cache"
)

var bucket = []byte("snapshots")

// lockTimeout bounds the wait for a file lock held by another process.
const lockTimeout = 2 * time.Second

// errClosed stops the API server: a closed cache answers nothing.
var errClosed = core.NewShutdownError("cache store is closed")

type Store struct {
	db *bbolt.DB
}

var _ cache.Store = (*Store)(nil) // interface compliance check

// Open opens (or creates) the cache file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, errors.Wrap(err, "opening cache file")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating cache bucket")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(key))
		if v == nil {
			return cache.ErrNotFound
		}
		// v is only valid for the life of the transaction
		out = append([]byte(nil), v...)
		return nil
	})
	return out, checkClosed(err)
}

func (s *Store) Save(key string, data []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
	return checkClosed(err)
}

func (s *Store) Update(key string, fn func(data []byte) ([]byte, error)) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		var current []byte
		if v := b.Get([]byte(key)); v != nil {
			current = append([]byte(nil), v...)
		}
		out, err := fn(current)
		if err != nil || out == nil {
			return err
		}
		return b.Put([]byte(key), out)
	})
	return checkClosed(err)
}

func (s *Store) Keys() ([]string, error) {
	keys := make([]string, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, checkClosed(err)
}

func checkClosed(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return errClosed
	}
	return err
}
