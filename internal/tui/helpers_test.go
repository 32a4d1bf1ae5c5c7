package tui

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/verte-zerg/subflash/internal/flash"
	"github.com/verte-zerg/subflash/internal/model"
)

type manualTimer struct {
	mu      *sync.Mutex
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

type pendingCall struct {
	timer *manualTimer
	fn    func()
}

// manualClock never fires on its own; fireAll runs whatever is pending.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []pendingCall
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) flash.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{mu: &c.mu}
	c.pending = append(c.pending, pendingCall{timer: t, fn: f})
	return t
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *manualClock) fireAll() {
	c.mu.Lock()
	calls := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, call := range calls {
		c.mu.Lock()
		stopped := call.timer.stopped
		c.mu.Unlock()
		if !stopped {
			call.fn()
		}
	}
}

type fakeStore struct {
	mu       sync.Mutex
	lib      model.Library
	err      error
	sessions []model.SessionStats
	cats     [][]model.CategoryStats
}

func (f *fakeStore) LoadLibrary(context.Context) (model.Library, error) {
	return f.lib, f.err
}

func (f *fakeStore) InsertSession(_ context.Context, stats model.SessionStats, cats []model.CategoryStats) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, stats)
	f.cats = append(f.cats, cats)
	return int64(len(f.sessions)), nil
}

func libraryWith(msgs ...string) model.Library {
	return model.Library{
		Order:      []string{"calm"},
		Categories: map[string][]string{"calm": msgs},
		Current:    "calm",
	}
}

func defaultSettings() model.Settings {
	return model.Settings{
		Interval: 500 * time.Millisecond,
		Duration: 40 * time.Millisecond,
		Mode:     model.ModeMessage,
	}
}

func newTestModel(st *fakeStore, clock *manualClock, settings model.Settings) *Model {
	return NewModel(st, Options{
		Settings: settings,
		Display:  model.Display{Position: model.PositionCenter},
		Clock:    clock,
		Rand:     rand.New(rand.NewSource(1)),
	})
}

// drain feeds every queued sink signal into the model.
func drain(m *Model) {
	for {
		select {
		case msg := <-m.sink.ch:
			m.Update(msg)
		default:
			return
		}
	}
}
