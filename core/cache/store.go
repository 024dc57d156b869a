// Package cache holds the local snapshot store every entity service mirrors into.
package cache

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Snapshot keys, one per entity collection.
const (
	KeyClassrooms   = "classrooms"
	KeyAssignments  = "assignments"
	KeyLiveClasses  = "classroom_live_classes"
	KeyUserProfiles = "user_profile"
)

// ErrNotFound is returned by Store.Load when the key holds nothing.
var ErrNotFound = errors.New("cache key not found")

// Store is a durable key/value store of raw snapshots.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	// Update runs fn with the current value (nil when absent) and stores its result
	// atomically. A nil result leaves the key untouched.
	Update(key string, fn func(data []byte) ([]byte, error)) error
	// Keys lists the keys holding a value, sorted.
	Keys() ([]string, error)
}

// Get decodes the snapshot stored at key, or returns def when there is none.
func Get[T any](s Store, key string, def T) (T, error) {
	data, err := s.Load(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return def, nil
		}
		return def, errors.Wrapf(err, "loading %q", key)
	}
	return decode(data, key, def)
}

// Set encodes v and stores it at key, replacing any previous snapshot.
func Set[T any](s Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	return errors.Wrapf(s.Save(key, data), "saving %q", key)
}

// Modify decodes the snapshot at key (def when absent), lets fn change it
// and stores it back in one atomic step. Nothing is written when fn reports no change.
func Modify[T any](s Store, key string, def T, fn func(v *T) (changed bool, err error)) error {
	err := s.Update(key, func(data []byte) ([]byte, error) {
		v := def
		if data != nil {
			var err error
			if v, err = decode(data, key, def); err != nil {
				return nil, err
			}
		}
		changed, err := fn(&v)
		if err != nil || !changed {
			return nil, err
		}
		out, err := json.Marshal(v)
		return out, errors.Wrapf(err, "encoding %q", key)
	})
	return errors.Wrapf(err, "updating %q", key)
}

func decode[T any](data []byte, key string, def T) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def, errors.Wrapf(err, "decoding %q", key)
	}
	return v, nil
}
