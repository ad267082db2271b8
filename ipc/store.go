package ipc

import "github.com/pkg/errors"

// ErrStoreFull is returned when a new key would exceed the store's bound.
var ErrStoreFull = errors.New("state store full")

// Store is the in-memory key/value state served to clients. It belongs to
// the listener goroutine and is not safe for concurrent use.
type Store struct {
	maxKeys int
	values  map[string]any
}

// NewStore returns a store holding at most maxKeys keys, or any number
// when maxKeys is not positive.
func NewStore(maxKeys int) *Store {
	s := new(Store)
	s.maxKeys = maxKeys
	s.values = make(map[string]any)
	return s
}

// Set stores value under key. Existing keys can always be overwritten.
func (s *Store) Set(key string, value any) error {
	if _, ok := s.values[key]; !ok && s.maxKeys > 0 && len(s.values) >= s.maxKeys {
		return errors.Wrapf(ErrStoreFull, "%d keys", len(s.values))
	}
	s.values[key] = value
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len is the number of stored keys.
func (s *Store) Len() int {
	return len(s.values)
}
