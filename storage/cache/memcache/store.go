// Package memcache is a process-local cache.Store, used in tests and when
// the cache driver is "memory".
package memcache

import (
	"sort"
	"sync"

	"github.com/trezcool/darasa/core/cache"
)

type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ cache.Store = (*Store)(nil) // interface compliance check

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Load(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return clone(data), nil
}

func (s *Store) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = clone(data)
	return nil
}

func (s *Store) Update(key string, fn func(data []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var current []byte
	if data, ok := s.data[key]; ok {
		current = clone(data)
	}
	out, err := fn(current)
	if err != nil || out == nil {
		return err
	}
	s.data[key] = clone(out)
	return nil
}

func (s *Store) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear drops every key.
func (s *Store) Clear() {
	s.mu.Lock()
	s.data = make(map[string][]byte)
	s.mu.Unlock()
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
