package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/subflash/internal/model"
)

type fakeSource struct {
	sessions []model.SessionAggregate
	cats     []model.CategoryAggregate
	err      error
	lastCfg  model.StatsConfig
}

func (f *fakeSource) ListSessions(_ context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	f.lastCfg = cfg
	return f.sessions, f.err
}

func (f *fakeSource) ListCategoryAggregatesForSessions(_ context.Context, _ []int64) ([]model.CategoryAggregate, error) {
	return f.cats, nil
}

func sizedModel(src *fakeSource) *Model {
	m := NewModel(src, model.StatsConfig{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestViewShowsOverviewCards(t *testing.T) {
	src := &fakeSource{
		sessions: []model.SessionAggregate{
			{SessionID: 1, EndedAt: time.Now(), Flashes: 12, ElapsedMs: 60000, Reason: model.StopManual},
		},
		cats: []model.CategoryAggregate{{Category: "calm", Flashes: 12, Sessions: 1}},
	}
	out := sizedModel(src).View()
	for _, want := range []string{"Overview", "Sessions", "Flashes", "12.0/min"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view", want)
		}
	}
}

func TestTabsWrapAround(t *testing.T) {
	m := sizedModel(&fakeSource{})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabSessions {
		t.Fatalf("expected wrap to sessions tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected overview tab, got %d", m.activeTab)
	}
}

func TestEmptyCategoriesTab(t *testing.T) {
	m := sizedModel(&fakeSource{})
	m.moveTab(1)
	if !strings.Contains(m.View(), "No category stats found.") {
		t.Fatalf("expected empty category message")
	}
}

func TestLoadErrorShownInFooter(t *testing.T) {
	m := sizedModel(&fakeSource{err: errors.New("db locked")})
	if !strings.Contains(m.View(), "db locked") {
		t.Fatalf("expected error in footer")
	}
}

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter("2024-03-01", "5")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cfg.Since == nil || cfg.Since.Format("2006-01-02") != "2024-03-01" || cfg.Last != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := parseFilter("03/01/2024", ""); err == nil {
		t.Fatalf("expected invalid date error")
	}
	if _, err := parseFilter("", "-1"); err == nil {
		t.Fatalf("expected invalid last error")
	}
}

func TestFilterEnterReloads(t *testing.T) {
	src := &fakeSource{}
	m := sizedModel(src)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[1].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close")
	}
	if src.lastCfg.Last != 3 {
		t.Fatalf("expected reload with last=3, got %+v", src.lastCfg)
	}
}
