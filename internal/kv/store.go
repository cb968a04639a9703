// Package kv persists learner state as opaque values under string keys.
//
// Stores are best-effort: callers that cannot persist keep their in-memory
// state and log the failure.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Keys used by the application.
const (
	KeyProgress    = "progress-data"
	KeyPreferences = "user-preferences"
	KeySidebar     = "sidebar-state"
	KeyLastCourse  = "lastCourse"
)

// dbTimeout bounds every remote store round trip.
const dbTimeout = 5 * time.Second

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a string-keyed value store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// GetJSON decodes the value under key into v. v should already hold defaults:
// fields absent from the stored document keep them. It reports whether a
// stored value was applied; missing keys and parse failures return false.
func GetJSON(store Store, key string, v any) bool {
	data, err := store.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("reading stored value failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("stored value is not valid JSON, using defaults", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON encodes v and stores it under key.
func SetJSON(store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := store.Set(key, data); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// FailingStore rejects every write. Reads behave as an empty store.
// It stands in for a full or unavailable storage medium.
type FailingStore struct {
	Err error
}

func (s FailingStore) Get(string) ([]byte, error) { return nil, ErrNotFound }

func (s FailingStore) Set(string, []byte) error { return s.err() }

func (s FailingStore) Delete(string) error { return s.err() }

func (s FailingStore) err() error {
	if s.Err != nil {
		return s.Err
	}
	return errors.New("kv: storage unavailable")
}
