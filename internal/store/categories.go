package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/subflash/internal/model"
)

func (s *Store) categoryNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) categoryID(ctx context.Context, q queryer, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ListCategories returns every category with its message count, weight and active flag.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.name,
			(SELECT COUNT(*) FROM messages m WHERE m.category_id = c.id),
			COALESCE(w.weight, 1.0),
			a.category IS NOT NULL
		FROM categories c
		LEFT JOIN weights w ON w.category = c.name
		LEFT JOIN active_categories a ON a.category = c.name
		ORDER BY c.id ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	var result []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.Name, &c.Messages, &c.Weight, &c.Active); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AddCategory creates an empty category with weight 1 and makes it current.
func (s *Store) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE name = ?`, name).Scan(&exists); err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("category %q: %w", name, ErrExists)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO weights (category, weight) VALUES (?, 1)`, name); err != nil {
		return err
	}
	if err := setState(ctx, tx, currentCategoryKey, name); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteCategory removes a category with its messages, weight and active entry.
// If it was current, the first remaining category becomes current.
func (s *Store) DeleteCategory(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	id, err := s.categoryID(ctx, tx, name)
	if err != nil {
		return err
	}
	stmts := []struct {
		query string
		arg   any
	}{
		{`DELETE FROM messages WHERE category_id = ?`, id},
		{`DELETE FROM categories WHERE id = ?`, id},
		{`DELETE FROM weights WHERE category = ?`, name},
		{`DELETE FROM active_categories WHERE category = ?`, name},
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.arg); err != nil {
			return err
		}
	}

	current, err := getState(ctx, tx, currentCategoryKey)
	if err != nil {
		return err
	}
	if current == name {
		var next string
		err := tx.QueryRowContext(ctx, `SELECT name FROM categories ORDER BY id ASC LIMIT 1`).Scan(&next)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err := setState(ctx, tx, currentCategoryKey, next); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CurrentCategory returns the selected category, or "" when none exists.
func (s *Store) CurrentCategory(ctx context.Context) (string, error) {
	return getState(ctx, s.db, currentCategoryKey)
}

// SetCurrentCategory selects an existing category.
func (s *Store) SetCurrentCategory(ctx context.Context, name string) error {
	if _, err := s.categoryID(ctx, s.db, name); err != nil {
		return err
	}
	return setState(ctx, s.db, currentCategoryKey, name)
}

// AddMessages appends trimmed, non-empty messages to a category.
func (s *Store) AddMessages(ctx context.Context, category string, msgs ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	id, err := s.categoryID(ctx, tx, category)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO messages (category_id, body) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, msg := range msgs {
		msg = strings.TrimSpace(msg)
		if msg == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, id, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListMessages returns a category's messages in insertion order.
func (s *Store) ListMessages(ctx context.Context, category string) ([]string, error) {
	id, err := s.categoryID(ctx, s.db, category)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM messages WHERE category_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	var msgs []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		msgs = append(msgs, body)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// DeleteMessage removes the message at a 1-based position in the category.
func (s *Store) DeleteMessage(ctx context.Context, category string, index int) error {
	if index < 1 {
		return fmt.Errorf("message %d: %w", index, ErrNotFound)
	}
	id, err := s.categoryID(ctx, s.db, category)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = (
		SELECT id FROM messages WHERE category_id = ? ORDER BY id ASC LIMIT 1 OFFSET ?)`, id, index-1)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("message %d: %w", index, ErrNotFound)
	}
	return nil
}

// Weights returns every stored weight.
func (s *Store) Weights(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, weight FROM weights`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	weights := map[string]float64{}
	for rows.Next() {
		var name string
		var w float64
		if err := rows.Scan(&name, &w); err != nil {
			return nil, err
		}
		weights[name] = w
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return weights, nil
}

// SetWeight stores a category weight, clamped to >= 0.
func (s *Store) SetWeight(ctx context.Context, category string, weight float64) error {
	if _, err := s.categoryID(ctx, s.db, category); err != nil {
		return err
	}
	return s.MergeWeights(ctx, map[string]float64{category: weight})
}

// MergeWeights upserts weights, clamped to >= 0. Unknown categories are kept
// so that a preset can restore weights for categories created later.
// NaN and infinite weights are rejected before anything is written.
func (s *Store) MergeWeights(ctx context.Context, weights map[string]float64) error {
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight for %q must be a finite number", name)
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)
	for name, w := range weights {
		if w < 0 {
			w = 0
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO weights (category, weight) VALUES (?, ?)`, name, w); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ActiveCategories returns the active set in category order.
func (s *Store) ActiveCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.name FROM active_categories a
		JOIN categories c ON c.name = a.category
		ORDER BY c.id ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// SetActiveCategories replaces the active set. Unknown names are dropped.
func (s *Store) SetActiveCategories(ctx context.Context, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)
	if _, err := tx.ExecContext(ctx, `DELETE FROM active_categories`); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO active_categories (category)
			SELECT name FROM categories WHERE name = ?`, name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ActivateAll marks every category active.
func (s *Store) ActivateAll(ctx context.Context) error {
	names, err := s.categoryNames(ctx)
	if err != nil {
		return err
	}
	return s.SetActiveCategories(ctx, names)
}

type execQueryer interface {
	queryer
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getState(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func setState(ctx context.Context, q execQueryer, key, value string) error {
	_, err := q.ExecContext(ctx, `INSERT OR REPLACE INTO app_state (key, value) VALUES (?, ?)`, key, value)
	return err
}
