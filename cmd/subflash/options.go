package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/subflash/internal/config"
	"github.com/verte-zerg/subflash/internal/model"
)

const (
	defaultIntervalMs = 500
	defaultDurationMs = 50
	defaultMode       = string(model.ModeMessage)
	defaultColor      = "#FFFFFF"
	defaultPosition   = string(model.PositionCenter)
)

// flashOptions holds flag values before they are resolved into settings.
type flashOptions struct {
	IntervalMs      int
	DurationMs      int
	Mode            string
	NoRepeat        bool
	AutoStop        bool
	AutoStopMinutes float64
	AutoStopFlashes int
	Color           string
	Position        string
	Bold            bool
	Backdrop        bool
	Bullets         bool
	Markdown        bool
}

func defaultFlashOptions() flashOptions {
	return flashOptions{
		IntervalMs: defaultIntervalMs,
		DurationMs: defaultDurationMs,
		Mode:       defaultMode,
		NoRepeat:   true,
		Color:      defaultColor,
		Position:   defaultPosition,
	}
}

func bindFlashFlags(cmd *cobra.Command, o *flashOptions) {
	flags := cmd.Flags()
	flags.IntVar(&o.IntervalMs, "interval", o.IntervalMs, "milliseconds between flashes")
	flags.IntVar(&o.DurationMs, "duration", o.DurationMs, "milliseconds each flash stays visible")
	flags.StringVar(&o.Mode, "mode", o.Mode, "flash mode (message, word)")
	flags.BoolVar(&o.NoRepeat, "no-repeat", o.NoRepeat, "avoid repeating the previous message")
	flags.BoolVar(&o.AutoStop, "auto-stop", o.AutoStop, "stop automatically after the limits below")
	flags.Float64Var(&o.AutoStopMinutes, "auto-stop-min", o.AutoStopMinutes, "auto-stop after N minutes (0 disables)")
	flags.IntVar(&o.AutoStopFlashes, "auto-stop-flashes", o.AutoStopFlashes, "auto-stop after N flashes (0 disables)")
	flags.StringVar(&o.Color, "color", o.Color, "text color (hex)")
	flags.StringVar(&o.Position, "position", o.Position, "text position (center, top, bottom, random)")
	flags.BoolVar(&o.Bold, "bold", o.Bold, "bold text")
	flags.BoolVar(&o.Backdrop, "backdrop", o.Backdrop, "draw a box behind the text")
	flags.BoolVar(&o.Bullets, "bullets", o.Bullets, "render messages as bullet lists")
	flags.BoolVar(&o.Markdown, "markdown", o.Markdown, "render lists, **bold** and *italic*")
}

// withConfig returns a copy with config values applied to flags the user did not set.
func (o flashOptions) withConfig(cmd *cobra.Command, fc config.FileConfig) flashOptions {
	applyIntConfig(cmd, "interval", &o.IntervalMs, fc.Flash.IntervalMs)
	applyIntConfig(cmd, "duration", &o.DurationMs, fc.Flash.DurationMs)
	applyStringConfig(cmd, "mode", &o.Mode, fc.Flash.Mode)
	applyBoolConfig(cmd, "no-repeat", &o.NoRepeat, fc.Flash.NoRepeat)
	applyBoolConfig(cmd, "auto-stop", &o.AutoStop, fc.Flash.AutoStop)
	applyFloatConfig(cmd, "auto-stop-min", &o.AutoStopMinutes, fc.Flash.AutoStopMinutes)
	applyIntConfig(cmd, "auto-stop-flashes", &o.AutoStopFlashes, fc.Flash.AutoStopFlashes)
	applyStringConfig(cmd, "color", &o.Color, fc.Display.Color)
	applyStringConfig(cmd, "position", &o.Position, fc.Display.Position)
	applyBoolConfig(cmd, "bold", &o.Bold, fc.Display.Bold)
	applyBoolConfig(cmd, "backdrop", &o.Backdrop, fc.Display.Backdrop)
	applyBoolConfig(cmd, "bullets", &o.Bullets, fc.Display.Bullets)
	applyBoolConfig(cmd, "markdown", &o.Markdown, fc.Display.Markdown)
	return o
}

// withPreset returns a copy with preset values applied to flags the user did not set.
// A nil preset leaves the options unchanged.
func (o flashOptions) withPreset(cmd *cobra.Command, p *model.Preset) flashOptions {
	if p == nil {
		return o
	}
	interval := int(p.IntervalMs)
	duration := int(p.DurationMs)
	mode := string(p.Mode)
	position := string(p.Position)
	applyIntConfig(cmd, "interval", &o.IntervalMs, &interval)
	applyIntConfig(cmd, "duration", &o.DurationMs, &duration)
	if mode != "" {
		applyStringConfig(cmd, "mode", &o.Mode, &mode)
	}
	applyBoolConfig(cmd, "no-repeat", &o.NoRepeat, &p.NoRepeat)
	applyBoolConfig(cmd, "auto-stop", &o.AutoStop, &p.AutoStop)
	applyFloatConfig(cmd, "auto-stop-min", &o.AutoStopMinutes, &p.AutoStopMinutes)
	applyIntConfig(cmd, "auto-stop-flashes", &o.AutoStopFlashes, &p.AutoStopFlashes)
	if p.Color != "" {
		applyStringConfig(cmd, "color", &o.Color, &p.Color)
	}
	if position != "" {
		applyStringConfig(cmd, "position", &o.Position, &position)
	}
	applyBoolConfig(cmd, "bold", &o.Bold, &p.Bold)
	applyBoolConfig(cmd, "backdrop", &o.Backdrop, &p.Backdrop)
	applyBoolConfig(cmd, "bullets", &o.Bullets, &p.RenderBullets)
	applyBoolConfig(cmd, "markdown", &o.Markdown, &p.RenderMarkdown)
	return o
}

func (o flashOptions) validate() error {
	if o.IntervalMs < 0 {
		return fmt.Errorf("--interval must be >= 0")
	}
	if o.DurationMs < 0 {
		return fmt.Errorf("--duration must be >= 0")
	}
	switch model.Mode(o.Mode) {
	case model.ModeMessage, model.ModeWord:
	default:
		return fmt.Errorf("--mode must be %q or %q", model.ModeMessage, model.ModeWord)
	}
	if !validPosition(model.Position(o.Position)) {
		return fmt.Errorf("--position must be one of center, top, bottom, random")
	}
	if o.AutoStopMinutes < 0 {
		return fmt.Errorf("--auto-stop-min must be >= 0")
	}
	if o.AutoStopFlashes < 0 {
		return fmt.Errorf("--auto-stop-flashes must be >= 0")
	}
	if o.Color == "" {
		return fmt.Errorf("--color must not be empty")
	}
	return nil
}

func (o flashOptions) resolve() (model.Settings, model.Display) {
	settings := model.Settings{
		Interval:        time.Duration(o.IntervalMs) * time.Millisecond,
		Duration:        time.Duration(o.DurationMs) * time.Millisecond,
		Mode:            model.Mode(o.Mode),
		NoRepeat:        o.NoRepeat,
		AutoStop:        o.AutoStop,
		AutoStopMinutes: o.AutoStopMinutes,
		AutoStopFlashes: o.AutoStopFlashes,
	}
	display := model.Display{
		Color:          o.Color,
		Position:       model.Position(o.Position),
		Bold:           o.Bold,
		Backdrop:       o.Backdrop,
		RenderBullets:  o.Bullets,
		RenderMarkdown: o.Markdown,
	}
	return settings, display
}

func validPosition(p model.Position) bool {
	for _, candidate := range model.Positions {
		if candidate == p {
			return true
		}
	}
	return false
}
