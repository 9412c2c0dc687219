package credentials

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a thread-safe in-memory implementation of [Store].
//
// It is intended for use in tests and prototyping.  Do not use it in
// production.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record // keyed by username
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Create stores a new record.  Returns [ErrExists] when the username is taken.
func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	if rec.Username == "" {
		return ErrEmptyUsername
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.Username]; exists {
		return ErrExists
	}
	s.records[rec.Username] = cloneRecord(rec)
	return nil
}

// Find retrieves a record by username.  Returns [ErrNotFound] when absent.
func (s *MemoryStore) Find(_ context.Context, username string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[username]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(r), nil
}

// Update replaces an existing record.
func (s *MemoryStore) Update(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.Username]; !ok {
		return ErrNotFound
	}
	s.records[rec.Username] = cloneRecord(rec)
	return nil
}

// Delete removes the record for username.  Returns [ErrNotFound] when absent.
func (s *MemoryStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[username]; !ok {
		return ErrNotFound
	}
	delete(s.records, username)
	return nil
}

// Usernames lists every stored username in ascending order.
func (s *MemoryStore) Usernames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.records))
	for name := range s.records {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
