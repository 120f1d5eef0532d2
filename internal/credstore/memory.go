package credstore

import (
	"context"
	"sync"
)

// MemoryStore keeps grants in process memory.
// Records are stored encoded so callers never share a *Grant with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	sealer  *Sealer
}

// NewMemoryStore creates an empty in-memory store. sealer may be nil.
func NewMemoryStore(sealer *Sealer) *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		sealer:  sealer,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, user string, grant *Grant) error {
	if err := ValidateUser(user); err != nil {
		return err
	}
	data, err := encodeRecord(s.sealer, grant)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[user] = data
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, user string) (*Grant, bool, error) {
	if err := ValidateUser(user); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	data, ok := s.records[user]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	grant, err := decodeRecord(s.sealer, data)
	if err != nil {
		return nil, false, err
	}
	return grant, true, nil
}
