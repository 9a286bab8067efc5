package integrator

import (
	"context"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// SecretStore stores secret values outside the channel shared areas.
// Modern channels receive the returned reference instead of the value.
type SecretStore interface {
	// Put stores value and returns an opaque reference identifier.
	// Storing an unchanged value may return the existing reference, so
	// rebroadcasting an unchanged configuration stays idempotent.
	Put(ctx context.Context, value string) (string, error)
}

// MemorySecretStore is an in-memory SecretStore issuing ULID references.
// Unchanged values reuse their existing reference. The zero value is usable.
type MemorySecretStore struct {
	mu      sync.RWMutex
	entries map[string]string
	byValue map[string]string
}

// NewMemorySecretStore creates an empty MemorySecretStore.
func NewMemorySecretStore() *MemorySecretStore {
	return &MemorySecretStore{}
}

// Put stores value under a fresh reference, or returns the existing
// reference when the value is already stored.
func (s *MemorySecretStore) Put(_ context.Context, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byValue[value]; ok {
		return id, nil
	}

	id := "secret:" + strings.ToLower(ulid.Make().String())
	if s.entries == nil {
		s.entries = make(map[string]string)
		s.byValue = make(map[string]string)
	}
	s.entries[id] = value
	s.byValue[value] = id
	return id, nil
}

// Get resolves a reference to its stored value.
func (s *MemorySecretStore) Get(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[id]
	return v, ok
}

// Len reports the number of stored secrets.
func (s *MemorySecretStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ SecretStore = (*MemorySecretStore)(nil)
