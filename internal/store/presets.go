package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/subflash/internal/model"
)

// SavePreset stores a preset, replacing any preset with the same name.
func (s *Store) SavePreset(ctx context.Context, p model.Preset) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO presets (name, data) VALUES (?, ?)`, name, string(data))
	return err
}

// GetPreset loads a preset by name.
func (s *Store) GetPreset(ctx context.Context, name string) (model.Preset, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM presets WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preset{}, fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return model.Preset{}, err
	}
	return decodePreset(name, data)
}

// ListPresets returns every preset ordered by name.
func (s *Store) ListPresets(ctx context.Context) ([]model.Preset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, data FROM presets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	var presets []model.Preset
	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, err
		}
		p, err := decodePreset(name, data)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return presets, nil
}

// DeletePreset removes a preset.
func (s *Store) DeletePreset(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	return nil
}

// ApplyPreset restores the selection stored in a preset: the current category
// if it still exists, the active set filtered to existing categories, and the
// preset weights merged over the stored ones.
func (s *Store) ApplyPreset(ctx context.Context, p model.Preset) error {
	if p.Category != "" {
		err := s.SetCurrentCategory(ctx, p.Category)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if p.Active != nil {
		if err := s.SetActiveCategories(ctx, p.Active); err != nil {
			return err
		}
	}
	if len(p.Weights) > 0 {
		if err := s.MergeWeights(ctx, p.Weights); err != nil {
			return err
		}
	}
	return nil
}

func decodePreset(name, data string) (model.Preset, error) {
	var p model.Preset
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return model.Preset{}, fmt.Errorf("failed to decode preset %q: %w", name, err)
	}
	p.Name = name
	return p, nil
}
