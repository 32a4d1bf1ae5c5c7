package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/subflash/internal/model"
)

func TestFlashRate(t *testing.T) {
	if got := FlashRate(30, 60000); got != 30 {
		t.Fatalf("expected 30/min, got %v", got)
	}
	if got := FlashRate(30, 0); got != 0 {
		t.Fatalf("expected 0 for empty session, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	sessions := []model.SessionAggregate{
		{Flashes: 60, ElapsedMs: 60000, Reason: model.StopLimit},
		{Flashes: 30, ElapsedMs: 30000, Reason: model.StopManual},
		{Flashes: 10, ElapsedMs: 60000, Reason: model.StopLimit},
	}
	got := Summarize(sessions)
	if got.Sessions != 3 || got.Flashes != 100 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.Elapsed != 150*time.Second {
		t.Fatalf("expected 150s elapsed, got %s", got.Elapsed)
	}
	if got.BestRate != 60 {
		t.Fatalf("expected best rate 60, got %v", got.BestRate)
	}
	if got.Reasons[model.StopLimit] != 2 || got.Reasons[model.StopManual] != 1 {
		t.Fatalf("unexpected reasons: %v", got.Reasons)
	}
}

func TestSparklineFlatAndRange(t *testing.T) {
	if got := Sparkline([]float64{2, 2, 2}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 10})
	if got != " @" {
		t.Fatalf("expected min and max glyphs, got %q", got)
	}
}

func TestDownsampleAveragesBuckets(t *testing.T) {
	got := Downsample([]float64{1, 3, 5, 7}, 2)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected downsample: %v", got)
	}
	if got := Downsample([]float64{1, 2}, 10); len(got) != 2 {
		t.Fatalf("expected short series unchanged, got %v", got)
	}
}

func TestRenderSummaryAndHistory(t *testing.T) {
	sessions := []model.SessionAggregate{
		{SessionID: 1, Flashes: 20, ElapsedMs: 60000, Reason: model.StopManual},
		{SessionID: 2, Flashes: 40, ElapsedMs: 60000, Reason: model.StopDeadline},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderHistory(&buf, sessions, 1, 40); err != nil {
		t.Fatalf("render history: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Flashes: 60", "Avg rate: 30.0/min", "manual=1 deadline=1", "History", "Rate/min"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No sessions found." {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderCategoryTableShares(t *testing.T) {
	var buf bytes.Buffer
	err := RenderCategoryTable(&buf, []model.CategoryAggregate{
		{Category: "calm", Flashes: 3, Sessions: 1},
		{Category: "focus", Flashes: 1, Sessions: 1},
	})
	if err != nil {
		t.Fatalf("render table: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "75.0%") || !strings.Contains(out, "25.0%") {
		t.Fatalf("expected shares in output:\n%s", out)
	}
}
