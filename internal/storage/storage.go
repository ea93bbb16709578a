// Package storage defines persistence for the knowledge snapshot and the
// rolling query log.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hoteleiro/concierge/internal/models"
)

// ErrNoSnapshot is returned by LoadSnapshot when no knowledge snapshot has
// been persisted yet.
var ErrNoSnapshot = errors.New("no knowledge snapshot")

// Store persists session state across restarts.
type Store interface {
	// SaveSnapshot replaces the persisted knowledge base and its load timestamp.
	SaveSnapshot(ctx context.Context, kb *models.KnowledgeBase, savedAt time.Time) error
	// LoadSnapshot returns the persisted knowledge base and when it was saved.
	LoadSnapshot(ctx context.Context) (*models.KnowledgeBase, time.Time, error)

	// AppendQuery records a diagnostic entry, dropping the oldest entries
	// beyond the configured cap.
	AppendQuery(ctx context.Context, entry *models.QueryLogEntry) error
	// RecentQueries returns up to limit entries, newest first.
	RecentQueries(ctx context.Context, limit int) ([]*models.QueryLogEntry, error)

	Close() error
}
