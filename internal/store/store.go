// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/verte-zerg/subflash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrNotFound is returned when a category, message or preset does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned when creating a category or preset that already exists.
	ErrExists = errors.New("already exists")
)

const currentCategoryKey = "current_category"

// DefaultCategory is seeded into a fresh database.
const DefaultCategory = "General"

var defaultMessages = []string{"I am calm", "I focus easily", "I feel confident"}

// Store wraps SQLite access for categories, presets and session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps multi-statement updates serialized.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	if err := store.seed(context.Background()); err != nil {
		if cerr := db.Close(); cerr != nil {
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			category_id INTEGER NOT NULL,
			body TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS weights (
			category TEXT PRIMARY KEY,
			weight REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS active_categories (
			category TEXT PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS presets (
			name TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			interval_ms INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			flashes INTEGER NOT NULL,
			reason TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_category_stats (
			session_id INTEGER NOT NULL,
			category TEXT NOT NULL,
			flashes INTEGER NOT NULL,
			PRIMARY KEY (session_id, category)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_category ON messages(category_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := s.AddCategory(ctx, DefaultCategory); err != nil {
		return err
	}
	return s.AddMessages(ctx, DefaultCategory, defaultMessages...)
}

// rollback is deferred by every transaction; it is a no-op after Commit.
func rollback(tx *sql.Tx) {
	if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
		// Best-effort rollback.
		_ = rerr
	}
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

// LoadLibrary returns a snapshot of every category, weight and the active set.
func (s *Store) LoadLibrary(ctx context.Context) (model.Library, error) {
	lib := model.Library{
		Categories: map[string][]string{},
		Weights:    map[string]float64{},
	}
	names, err := s.categoryNames(ctx)
	if err != nil {
		return model.Library{}, err
	}
	for _, name := range names {
		lib.Order = append(lib.Order, name)
		lib.Categories[name] = nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT c.name, m.body
		FROM messages m JOIN categories c ON c.id = m.category_id
		ORDER BY m.id ASC`)
	if err != nil {
		return model.Library{}, err
	}
	defer closeRows(rows)
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return model.Library{}, err
		}
		lib.Categories[name] = append(lib.Categories[name], body)
	}
	if err := rows.Err(); err != nil {
		return model.Library{}, err
	}

	weights, err := s.Weights(ctx)
	if err != nil {
		return model.Library{}, err
	}
	lib.Weights = weights
	active, err := s.ActiveCategories(ctx)
	if err != nil {
		return model.Library{}, err
	}
	lib.Active = active
	current, err := s.CurrentCategory(ctx)
	if err != nil {
		return model.Library{}, err
	}
	lib.Current = current
	return lib, nil
}
