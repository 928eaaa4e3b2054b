package snapshot

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory. State does not survive a
// restart, so every watch re-seeds from a cold start; suitable for tests and
// for deployments where replaying the first observation is acceptable.
type MemoryStore struct {
	mu        sync.RWMutex
	instances map[string]map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{instances: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, instance, field string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.instances[instance]
	if !ok {
		return "", false, nil
	}
	v, ok := fields[field]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, instance string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst, ok := s.instances[instance]
	if !ok {
		dst = make(map[string]string, len(fields))
		s.instances[instance] = dst
	}
	for k, v := range fields {
		dst[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, instance string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.instances, instance)
	return nil
}
