package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/subflash/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "subflash.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestOpenSeedsDefaultCategory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	lib, err := st.LoadLibrary(ctx)
	if err != nil {
		t.Fatalf("load library: %v", err)
	}
	if lib.Current != DefaultCategory {
		t.Fatalf("expected current %q, got %q", DefaultCategory, lib.Current)
	}
	if got := lib.Messages(DefaultCategory); len(got) != 3 || got[0] != "I am calm" {
		t.Fatalf("unexpected seeded messages: %v", got)
	}
	if lib.Weight(DefaultCategory) != 1 {
		t.Fatalf("expected default weight 1")
	}
}

func TestOpenDoesNotReseed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subflash.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()
	if err := st.DeleteCategory(ctx, DefaultCategory); err != nil {
		t.Fatalf("delete default: %v", err)
	}
	if err := st.AddCategory(ctx, "Kept"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = st.Close() }()
	cats, err := st.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Kept" {
		t.Fatalf("expected only Kept, got %+v", cats)
	}
}

func TestAddCategoryBecomesCurrent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.AddCategory(ctx, "  Focus "); err != nil {
		t.Fatalf("add category: %v", err)
	}
	current, err := st.CurrentCategory(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current != "Focus" {
		t.Fatalf("expected Focus current, got %q", current)
	}
	if err := st.AddCategory(ctx, "Focus"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if err := st.AddCategory(ctx, " "); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
}

func TestDeleteCategoryRemovesWeightAndActive(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.AddCategory(ctx, "Focus"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := st.AddMessages(ctx, "Focus", "one", "two"); err != nil {
		t.Fatalf("add messages: %v", err)
	}
	if err := st.SetWeight(ctx, "Focus", 4); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if err := st.ActivateAll(ctx); err != nil {
		t.Fatalf("activate all: %v", err)
	}
	if err := st.DeleteCategory(ctx, "Focus"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	lib, err := st.LoadLibrary(ctx)
	if err != nil {
		t.Fatalf("load library: %v", err)
	}
	if lib.Has("Focus") {
		t.Fatalf("expected category removed")
	}
	if _, ok := lib.Weights["Focus"]; ok {
		t.Fatalf("expected weight entry removed")
	}
	if len(lib.Active) != 1 || lib.Active[0] != DefaultCategory {
		t.Fatalf("unexpected active set: %v", lib.Active)
	}
	if lib.Current != DefaultCategory {
		t.Fatalf("expected current to fall back to %q, got %q", DefaultCategory, lib.Current)
	}
	if err := st.DeleteCategory(ctx, "Focus"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteLastCategoryClearsCurrent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.DeleteCategory(ctx, DefaultCategory); err != nil {
		t.Fatalf("delete: %v", err)
	}
	current, err := st.CurrentCategory(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current != "" {
		t.Fatalf("expected no current category, got %q", current)
	}
}

func TestMessagesKeepOrderAndDeleteByIndex(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.AddMessages(ctx, DefaultCategory, "fourth", "", "  fifth  "); err != nil {
		t.Fatalf("add messages: %v", err)
	}
	msgs, err := st.ListMessages(ctx, DefaultCategory)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 5 || msgs[3] != "fourth" || msgs[4] != "fifth" {
		t.Fatalf("unexpected messages: %v", msgs)
	}
	if err := st.DeleteMessage(ctx, DefaultCategory, 2); err != nil {
		t.Fatalf("delete message: %v", err)
	}
	msgs, err = st.ListMessages(ctx, DefaultCategory)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 4 || msgs[1] != "I feel confident" {
		t.Fatalf("unexpected messages after delete: %v", msgs)
	}
	if err := st.DeleteMessage(ctx, DefaultCategory, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.AddMessages(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown category, got %v", err)
	}
}

func TestWeightsClampAndList(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.SetWeight(ctx, DefaultCategory, -3); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	cats, err := st.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Weight != 0 || cats[0].Messages != 3 || cats[0].Active {
		t.Fatalf("unexpected categories: %+v", cats)
	}
	if err := st.SetWeight(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWeightsRejectNonFinite(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, w := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := st.SetWeight(ctx, DefaultCategory, w); err == nil {
			t.Fatalf("expected error for weight %v", w)
		}
	}
	err := st.MergeWeights(ctx, map[string]float64{DefaultCategory: 2, "Later": math.NaN()})
	if err == nil {
		t.Fatalf("expected merge with NaN to fail")
	}
	weights, err := st.Weights(ctx)
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	if _, ok := weights["Later"]; ok {
		t.Fatalf("expected no weight stored for rejected merge: %v", weights)
	}
	if w, ok := weights[DefaultCategory]; ok && w != 1 {
		t.Fatalf("expected default weight untouched, got %v", w)
	}
}

func TestActiveCategoriesFilterUnknown(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.AddCategory(ctx, "B"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := st.SetActiveCategories(ctx, []string{"B", "ghost", DefaultCategory}); err != nil {
		t.Fatalf("set active: %v", err)
	}
	active, err := st.ActiveCategories(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 2 || active[0] != DefaultCategory || active[1] != "B" {
		t.Fatalf("unexpected active set: %v", active)
	}
	if err := st.SetActiveCategories(ctx, nil); err != nil {
		t.Fatalf("clear active: %v", err)
	}
	active, err = st.ActiveCategories(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected empty active set, got %v", active)
	}
}

func TestPresetsRoundTripAndApply(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.AddCategory(ctx, "Focus"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	p := model.Preset{
		Name:       "evening",
		IntervalMs: 800,
		DurationMs: 30,
		Mode:       model.ModeWord,
		Category:   DefaultCategory,
		Active:     []string{"Focus", "ghost"},
		Weights:    map[string]float64{"Focus": 2.5, "Later": 3},
	}
	if err := st.SavePreset(ctx, p); err != nil {
		t.Fatalf("save preset: %v", err)
	}
	got, err := st.GetPreset(ctx, "evening")
	if err != nil {
		t.Fatalf("get preset: %v", err)
	}
	if got.Name != "evening" || got.IntervalMs != 800 || got.Mode != model.ModeWord {
		t.Fatalf("unexpected preset: %+v", got)
	}

	if err := st.ApplyPreset(ctx, got); err != nil {
		t.Fatalf("apply preset: %v", err)
	}
	lib, err := st.LoadLibrary(ctx)
	if err != nil {
		t.Fatalf("load library: %v", err)
	}
	if lib.Current != DefaultCategory {
		t.Fatalf("expected current restored, got %q", lib.Current)
	}
	if len(lib.Active) != 1 || lib.Active[0] != "Focus" {
		t.Fatalf("expected active filtered to existing categories, got %v", lib.Active)
	}
	if lib.Weight("Focus") != 2.5 || lib.Weights["Later"] != 3 || lib.Weight(DefaultCategory) != 1 {
		t.Fatalf("expected weights merged, got %v", lib.Weights)
	}

	presets, err := st.ListPresets(ctx)
	if err != nil {
		t.Fatalf("list presets: %v", err)
	}
	if len(presets) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(presets))
	}
	if err := st.DeletePreset(ctx, "evening"); err != nil {
		t.Fatalf("delete preset: %v", err)
	}
	if _, err := st.GetPreset(ctx, "evening"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.DeletePreset(ctx, "evening"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestApplyPresetIgnoresMissingCategory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.ApplyPreset(ctx, model.Preset{Name: "x", Category: "gone"}); err != nil {
		t.Fatalf("apply preset: %v", err)
	}
	current, err := st.CurrentCategory(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current != DefaultCategory {
		t.Fatalf("expected current unchanged, got %q", current)
	}
}

func TestSessionsAndCategoryAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		stats := model.SessionStats{
			StartedAt:  start,
			EndedAt:    start.Add(90 * time.Second),
			Mode:       model.ModeMessage,
			IntervalMs: 500,
			DurationMs: 50,
			Flashes:    10,
			Reason:     model.StopManual,
		}
		cats := []model.CategoryStats{
			{Category: "A", Flashes: 7},
			{Category: "B", Flashes: 3},
		}
		id, err := st.InsertSession(ctx, stats, cats)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	since := base.Add(30 * time.Minute)
	sessions, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions ended after since, got %d", len(sessions))
	}
	if sessions[0].SessionID != ids[1] {
		t.Fatalf("expected oldest matching session first, got %d", sessions[0].SessionID)
	}
	if sessions[0].ElapsedMs != 90000 || sessions[0].Reason != model.StopManual {
		t.Fatalf("unexpected session aggregate: %+v", sessions[0])
	}

	aggs, err := st.ListCategoryAggregatesForSessions(ctx, ids[1:])
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if len(aggs) != 2 || aggs[0].Category != "A" || aggs[0].Flashes != 14 || aggs[0].Sessions != 2 {
		t.Fatalf("unexpected aggregates: %+v", aggs)
	}
	empty, err := st.ListCategoryAggregatesForSessions(ctx, nil)
	if err != nil || empty != nil {
		t.Fatalf("expected nil aggregates for no sessions, got %v, %v", empty, err)
	}
}
