package memory

import (
	"context"
	"sync"

	"ratecraft/internal/app/middleware"
)

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps replay records in a map. Records live for the
// process lifetime; the Mongo store handles expiry in real deployments.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{records: map[string]middleware.IdempotencyRecord{}}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	rec, ok := s.records[key]
	s.mu.RUnlock()
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	s.records[rec.Key] = rec
	s.mu.Unlock()
	return nil
}
