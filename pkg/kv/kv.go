// Package kv is the persistence adapter for saved state: a key-value store of
// JSON values on top of a byte-level Backend.
//
// Store never reports failures to its callers. Backend and serialization
// errors are logged and turned into benign results: Load reports the key as
// absent, Store and Remove drop the write.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// ErrNotFound is returned by Backend.Get for keys that were never written.
var ErrNotFound = errors.New("kv: key not found")

// Backend is raw storage for serialized values.
// Implementations may be in-memory, SQL, Redis, etc.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Store serializes values as JSON and writes them through a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger.With("component", "kv")}
}

// Store writes value under key, overwriting any previous value.
func (s *Store) Store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.ErrorContext(ctx, "serialize value", "key", key, "err", err)
		return
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		s.logger.ErrorContext(ctx, "store value", "key", key, "err", err)
	}
}

// Load decodes the value stored under key into dst and reports whether it
// was present. When the result is false dst must be treated as unset.
func (s *Store) Load(ctx context.Context, key string, dst any) bool {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.ErrorContext(ctx, "load value", "key", key, "err", err)
		}
		return false
	}
	// a stored JSON null reads as absent
	if len(data) == 0 || string(data) == "null" {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.ErrorContext(ctx, "decode value", "key", key, "err", err)
		return false
	}
	return true
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.ErrorContext(ctx, "remove value", "key", key, "err", err)
	}
}
