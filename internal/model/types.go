// Package model defines shared data structures.
package model

import "time"

// Mode selects what each flash presents.
type Mode string

// Display modes.
const (
	ModeMessage Mode = "message"
	ModeWord    Mode = "word"
)

// Position is the vertical placement of flashed text.
type Position string

// Positions understood by the flashing view.
const (
	PositionTop    Position = "top"
	PositionCenter Position = "center"
	PositionBottom Position = "bottom"
	PositionRandom Position = "random"
)

// Positions lists every valid position in cycling order.
var Positions = []Position{PositionCenter, PositionTop, PositionBottom, PositionRandom}

// Settings is the snapshot the scheduler reads when a session starts.
type Settings struct {
	Interval        time.Duration
	Duration        time.Duration
	Mode            Mode
	NoRepeat        bool
	AutoStop        bool
	AutoStopMinutes float64
	AutoStopFlashes int
}

// Display defines how flashed text is rendered.
type Display struct {
	Color          string
	Position       Position
	Bold           bool
	Backdrop       bool
	RenderBullets  bool
	RenderMarkdown bool
}

// Category summarizes a stored category.
type Category struct {
	Name     string
	Messages int
	Weight   float64
	Active   bool
}

// Preset is a named snapshot of settings, display toggles and selection.
type Preset struct {
	Name            string             `json:"-"`
	IntervalMs      int64              `json:"interval"`
	DurationMs      int64              `json:"duration"`
	Mode            Mode               `json:"mode"`
	NoRepeat        bool               `json:"noRepeat"`
	AutoStop        bool               `json:"autoStop"`
	AutoStopMinutes float64            `json:"autoStopMin,omitempty"`
	AutoStopFlashes int                `json:"autoStopFlashes,omitempty"`
	Color           string             `json:"color,omitempty"`
	Position        Position           `json:"position,omitempty"`
	Bold            bool               `json:"outline"`
	Backdrop        bool               `json:"backdrop"`
	RenderBullets   bool               `json:"renderBullets"`
	RenderMarkdown  bool               `json:"renderMarkdown"`
	Category        string             `json:"category,omitempty"`
	Active          []string           `json:"activeCats,omitempty"`
	Weights         map[string]float64 `json:"weights,omitempty"`
}

// NewPreset captures settings, display and selection under a name.
func NewPreset(name string, s Settings, d Display, lib Library) Preset {
	weights := make(map[string]float64, len(lib.Weights))
	for k, v := range lib.Weights {
		weights[k] = v
	}
	return Preset{
		Name:            name,
		IntervalMs:      s.Interval.Milliseconds(),
		DurationMs:      s.Duration.Milliseconds(),
		Mode:            s.Mode,
		NoRepeat:        s.NoRepeat,
		AutoStop:        s.AutoStop,
		AutoStopMinutes: s.AutoStopMinutes,
		AutoStopFlashes: s.AutoStopFlashes,
		Color:           d.Color,
		Position:        d.Position,
		Bold:            d.Bold,
		Backdrop:        d.Backdrop,
		RenderBullets:   d.RenderBullets,
		RenderMarkdown:  d.RenderMarkdown,
		Category:        lib.Current,
		Active:          append([]string(nil), lib.Active...),
		Weights:         weights,
	}
}

// Settings returns the scheduler settings stored in the preset.
func (p Preset) Settings() Settings {
	return Settings{
		Interval:        time.Duration(p.IntervalMs) * time.Millisecond,
		Duration:        time.Duration(p.DurationMs) * time.Millisecond,
		Mode:            p.Mode,
		NoRepeat:        p.NoRepeat,
		AutoStop:        p.AutoStop,
		AutoStopMinutes: p.AutoStopMinutes,
		AutoStopFlashes: p.AutoStopFlashes,
	}
}

// Display returns the display settings stored in the preset.
func (p Preset) Display() Display {
	return Display{
		Color:          p.Color,
		Position:       p.Position,
		Bold:           p.Bold,
		Backdrop:       p.Backdrop,
		RenderBullets:  p.RenderBullets,
		RenderMarkdown: p.RenderMarkdown,
	}
}

// StopReason records why a session ended.
type StopReason string

// Stop reasons.
const (
	StopManual   StopReason = "manual"
	StopDeadline StopReason = "deadline"
	StopLimit    StopReason = "limit"
)

// SessionStats captures a completed flashing session.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Mode       Mode
	IntervalMs int64
	DurationMs int64
	Flashes    int
	Reason     StopReason
}

// CategoryStats stores per-category flash counts for a session.
type CategoryStats struct {
	Category string
	Flashes  int
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	Since *time.Time
	Last  int
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID int64
	EndedAt   time.Time
	Flashes   int
	ElapsedMs int64
	Reason    StopReason
}

// CategoryAggregate aggregates category flash counts across sessions.
type CategoryAggregate struct {
	Category string
	Flashes  int
	Sessions int
}
