package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hoteleiro/concierge/internal/models"
)

// MemoryStore is an in-memory Store, used by tests and by deployments that
// opt out of persistence.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot []byte
	savedAt  time.Time
	queries  []*models.QueryLogEntry
	logLimit int
}

// NewMemoryStore returns an empty in-memory store with the given log cap.
func NewMemoryStore(logLimit int) *MemoryStore {
	return &MemoryStore{logLimit: logLimit}
}

// SaveSnapshot replaces the held knowledge base and timestamp.
func (s *MemoryStore) SaveSnapshot(_ context.Context, kb *models.KnowledgeBase, savedAt time.Time) error {
	data, err := json.Marshal(kb)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = data
	s.savedAt = savedAt
	return nil
}

// LoadSnapshot returns the held knowledge base, or ErrNoSnapshot.
func (s *MemoryStore) LoadSnapshot(context.Context) (*models.KnowledgeBase, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil, time.Time{}, ErrNoSnapshot
	}
	var kb models.KnowledgeBase
	if err := json.Unmarshal(s.snapshot, &kb); err != nil {
		return nil, time.Time{}, err
	}
	return &kb, s.savedAt, nil
}

// AppendQuery prepends the entry and drops the oldest beyond the cap.
func (s *MemoryStore) AppendQuery(_ context.Context, entry *models.QueryLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append([]*models.QueryLogEntry{entry}, s.queries...)
	if len(s.queries) > s.logLimit {
		s.queries = s.queries[:s.logLimit]
	}
	return nil
}

// RecentQueries returns up to limit entries, newest first.
func (s *MemoryStore) RecentQueries(_ context.Context, limit int) ([]*models.QueryLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.queries) {
		limit = len(s.queries)
	}
	out := make([]*models.QueryLogEntry, limit)
	copy(out, s.queries[:limit])
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
