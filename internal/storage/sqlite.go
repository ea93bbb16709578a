// Package storage provides the SQLite implementation of the Store interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hoteleiro/concierge/internal/models"
)

const snapshotKey = "ai_knowledge_cache"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	logLimit int
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist. logLimit
// caps the rolling query log.
func NewSQLiteStore(dbPath string, logLimit int) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, logLimit: logLimit}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS knowledge_cache (
		key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS query_log (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		response_chars INTEGER NOT NULL,
		mode TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_query_log_created_at ON query_log(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveSnapshot replaces the persisted knowledge base and its load timestamp.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, kb *models.KnowledgeBase, savedAt time.Time) error {
	data, err := json.Marshal(kb)
	if err != nil {
		return fmt.Errorf("failed to marshal knowledge base: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO knowledge_cache (key, data, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		snapshotKey, string(data), savedAt,
	)
	return err
}

// LoadSnapshot returns the persisted knowledge base and when it was saved.
// Returns ErrNoSnapshot when nothing has been persisted.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*models.KnowledgeBase, time.Time, error) {
	var data string
	var savedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT data, saved_at FROM knowledge_cache WHERE key = ?`, snapshotKey,
	).Scan(&data, &savedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var kb models.KnowledgeBase
	if err := json.Unmarshal([]byte(data), &kb); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to unmarshal knowledge base: %w", err)
	}
	return &kb, savedAt, nil
}

// AppendQuery inserts a log entry and trims the log to the newest entries.
func (s *SQLiteStore) AppendQuery(ctx context.Context, entry *models.QueryLogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO query_log (id, question, response_chars, mode, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Question, entry.ResponseChars, entry.Mode, entry.CreatedAt,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM query_log WHERE id NOT IN (
			SELECT id FROM query_log ORDER BY created_at DESC, id LIMIT ?
		 )`, s.logLimit,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// RecentQueries returns up to limit entries, newest first.
func (s *SQLiteStore) RecentQueries(ctx context.Context, limit int) ([]*models.QueryLogEntry, error) {
	if limit <= 0 || limit > s.logLimit {
		limit = s.logLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, response_chars, mode, created_at
		 FROM query_log ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.QueryLogEntry
	for rows.Next() {
		var e models.QueryLogEntry
		if err := rows.Scan(&e.ID, &e.Question, &e.ResponseChars, &e.Mode, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
