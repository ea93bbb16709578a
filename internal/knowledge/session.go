package knowledge

import (
	"sync"
	"time"

	"github.com/hoteleiro/concierge/internal/models"
)

// Session holds the currently served knowledge base and assistant state.
// Safe for concurrent use by HTTP handlers and background reloads.
type Session struct {
	mu       sync.RWMutex
	kb       *models.KnowledgeBase
	degraded bool
	loadedAt time.Time
	lastMode string
}

// NewSession creates an empty, not-ready session.
func NewSession() *Session {
	return &Session{}
}

// Ready reports whether a knowledge base has been installed.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kb != nil
}

// KnowledgeBase returns the current knowledge base, nil before the first load.
func (s *Session) KnowledgeBase() *models.KnowledgeBase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kb
}

// Install atomically replaces the served knowledge base.
func (s *Session) Install(kb *models.KnowledgeBase, degraded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kb = kb
	s.degraded = degraded
	s.loadedAt = time.Now()
}

// Degraded reports whether the current knowledge base is a stale fallback.
func (s *Session) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// LoadedAt returns when the current knowledge base was installed.
func (s *Session) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// LastMode returns the response mode of the most recent answer, "" before any.
func (s *Session) LastMode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMode
}

// SetLastMode records the response mode of the answer just produced.
func (s *Session) SetLastMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastMode = mode
}
