// Package tui provides the Bubble Tea flashing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/subflash/internal/flash"
	"github.com/verte-zerg/subflash/internal/model"
)

const (
	intervalStep = 50 * time.Millisecond
	contentRatio = 0.70
)

// Store is the persistence the flashing view needs.
type Store interface {
	LoadLibrary(ctx context.Context) (model.Library, error)
	InsertSession(ctx context.Context, stats model.SessionStats, cats []model.CategoryStats) (int64, error)
}

// Options configures the flashing view.
type Options struct {
	Settings model.Settings
	Display  model.Display
	Logger   *zerolog.Logger
	Clock    flash.Clock
	Rand     *rand.Rand
	// Outputs receive the same show/hide signals as the view.
	Outputs []flash.Sink
}

// SettingsMsg replaces the settings used by the next session and the display.
type SettingsMsg struct {
	Settings model.Settings
	Display  model.Display
}

// Model implements the Bubble Tea flashing UI.
type Model struct {
	store Store
	sched *flash.Scheduler
	sink  *Sink
	log   zerolog.Logger
	rnd   *rand.Rand

	settings model.Settings
	display  model.Display

	keys keyMap
	help help.Model

	width  int
	height int

	text      string
	visible   bool
	placement model.Position
	status    flash.Status
	notice    string
}

var (
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a flashing TUI model.
func NewModel(st Store, opts Options) *Model {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "tui").Logger()
	}
	m := &Model{
		store:     st,
		sink:      NewSink(),
		log:       log,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		settings:  opts.Settings,
		display:   opts.Display,
		keys:      defaultKeyMap(),
		help:      help.New(),
		placement: model.PositionCenter,
	}
	outputs := flash.NewBroadcast(m.sink)
	for _, out := range opts.Outputs {
		outputs.Attach(out)
	}
	m.sched = flash.New(outputs, flash.Options{
		Clock:  opts.Clock,
		Rand:   opts.Rand,
		Logger: opts.Logger,
		Hooks:  flash.Hooks{OnStop: m.onStop},
	})
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.sink.Listen()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case showMsg:
		if m.sched.Running() {
			m.text = msg.text
			m.visible = true
			m.placement = m.resolvePosition()
			m.status = m.sched.Status()
		}
		return m, m.sink.Listen()
	case hideMsg:
		m.visible = false
		return m, m.sink.Listen()
	case stoppedMsg:
		m.visible = false
		m.status = m.sched.Status()
		m.notice = stopNotice(msg.summary)
		return m, m.sink.Listen()
	case SettingsMsg:
		m.settings = msg.Settings
		m.display = msg.Display
		m.notice = "config reloaded"
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		// Stop records the running session before the program exits.
		m.sched.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Reset):
		m.sched.Reset()
		m.status = m.sched.Status()
	case key.Matches(msg, m.keys.Faster):
		m.settings.Interval = max(flash.MinDelay, m.settings.Interval-intervalStep)
	case key.Matches(msg, m.keys.Slower):
		m.settings.Interval += intervalStep
	case key.Matches(msg, m.keys.Position):
		m.display.Position = nextPosition(m.display.Position)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		if m.visible {
			return m.renderFlash(0)
		}
		return ""
	}
	content := ""
	if m.visible {
		content = m.renderFlash(m.contentWidth())
	}
	footer := m.renderFooter()
	footerHeight := lipgloss.Height(footer)
	if m.height <= footerHeight+1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, verticalPosition(m.placement), content)
	}
	body := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, verticalPosition(m.placement), content)
	footerBlock := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
	return body + "\n" + footerBlock
}

func (m *Model) contentWidth() int {
	width := int(float64(m.width) * contentRatio)
	if m.display.Backdrop {
		width -= 6 // 2 border + 4 padding
	}
	return max(1, width)
}

func (m *Model) renderFlash(width int) string {
	text := layoutText(m.text, m.display)
	text = wrapText(text, width)
	text = decorateText(text, m.display)
	style := flashStyle(m.display)
	if !m.display.RenderBullets && !m.display.RenderMarkdown {
		style = style.Align(lipgloss.Center)
	}
	return style.Render(text)
}

func (m *Model) renderFooter() string {
	state := footerStyle.Render("stopped")
	if m.sched.Running() {
		state = activeStyle.Render("flashing")
	}
	details := []string{
		fmt.Sprintf("%d flashes", m.status.Flashes),
		formatSeconds(m.status),
		fmt.Sprintf("%dms / %dms", m.settings.Interval.Milliseconds(), m.settings.Duration.Milliseconds()),
		string(m.settings.Mode),
		string(positionOrDefault(m.display.Position)),
	}
	lines := []string{state + "  " + footerStyle.Render(strings.Join(details, "  "))}
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m *Model) toggle() {
	if m.sched.Running() {
		m.sched.Stop()
		return
	}
	lib, err := m.store.LoadLibrary(context.Background())
	if err != nil {
		m.log.Error().Err(err).Msg("failed to load messages")
		m.notice = fmt.Sprintf("failed to load messages: %v", err)
		return
	}
	if err := m.sched.Start(m.settings, lib); err != nil {
		var noContent *flash.NoContentError
		if !errors.As(err, &noContent) {
			m.log.Error().Err(err).Msg("failed to start session")
		}
		m.notice = err.Error()
		return
	}
	m.notice = ""
	m.status = m.sched.Status()
}

// onStop runs outside the scheduler lock, on the goroutine that stopped the session.
func (m *Model) onStop(summary flash.Summary) {
	m.recordSession(summary)
	m.sink.Stopped(summary)
}

func (m *Model) recordSession(summary flash.Summary) {
	if summary.Flashes == 0 {
		return
	}
	stats := model.SessionStats{
		StartedAt:  summary.StartedAt,
		EndedAt:    summary.EndedAt,
		Mode:       summary.Settings.Mode,
		IntervalMs: summary.Settings.Interval.Milliseconds(),
		DurationMs: summary.Settings.Duration.Milliseconds(),
		Flashes:    summary.Flashes,
		Reason:     summary.Reason,
	}
	cats := make([]model.CategoryStats, 0, len(summary.Categories))
	for name, n := range summary.Categories {
		cats = append(cats, model.CategoryStats{Category: name, Flashes: n})
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Category < cats[j].Category })
	if _, err := m.store.InsertSession(context.Background(), stats, cats); err != nil {
		m.log.Error().Err(err).Msg("failed to save session")
	}
}

func (m *Model) resolvePosition() model.Position {
	pos := positionOrDefault(m.display.Position)
	if pos != model.PositionRandom {
		return pos
	}
	fixed := []model.Position{model.PositionTop, model.PositionCenter, model.PositionBottom}
	return fixed[m.rnd.Intn(len(fixed))]
}

func stopNotice(summary flash.Summary) string {
	switch summary.Reason {
	case model.StopDeadline:
		return fmt.Sprintf("time limit reached after %d flashes", summary.Flashes)
	case model.StopLimit:
		return fmt.Sprintf("flash limit reached (%d)", summary.Flashes)
	default:
		return ""
	}
}

func formatSeconds(st flash.Status) string {
	if st.Countdown {
		return fmt.Sprintf("-%ds", st.Seconds)
	}
	return fmt.Sprintf("%ds", st.Seconds)
}

func positionOrDefault(p model.Position) model.Position {
	if p == "" {
		return model.PositionCenter
	}
	return p
}

func nextPosition(p model.Position) model.Position {
	p = positionOrDefault(p)
	for i, candidate := range model.Positions {
		if candidate == p {
			return model.Positions[(i+1)%len(model.Positions)]
		}
	}
	return model.PositionCenter
}

func verticalPosition(p model.Position) lipgloss.Position {
	switch p {
	case model.PositionTop:
		return lipgloss.Top
	case model.PositionBottom:
		return lipgloss.Bottom
	default:
		return lipgloss.Center
	}
}
