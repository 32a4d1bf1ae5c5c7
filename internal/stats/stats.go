// Package stats contains session history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/subflash/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	sparkLabelWidth     = 10
)

// FlashRate returns flashes per minute for a session.
func FlashRate(flashes int, elapsedMs int64) float64 {
	if elapsedMs <= 0 {
		return 0
	}
	return float64(flashes) / (float64(elapsedMs) / 60000.0)
}

// Totals aggregates a set of sessions.
type Totals struct {
	Sessions int
	Flashes  int
	Elapsed  time.Duration
	AvgRate  float64
	BestRate float64
	Reasons  map[model.StopReason]int
}

// Summarize computes totals over sessions.
func Summarize(sessions []model.SessionAggregate) Totals {
	t := Totals{Reasons: map[model.StopReason]int{}}
	var rateSum float64
	for _, s := range sessions {
		t.Sessions++
		t.Flashes += s.Flashes
		t.Elapsed += time.Duration(s.ElapsedMs) * time.Millisecond
		t.Reasons[s.Reason]++
		rate := FlashRate(s.Flashes, s.ElapsedMs)
		rateSum += rate
		if rate > t.BestRate {
			t.BestRate = rate
		}
	}
	if t.Sessions > 0 {
		t.AvgRate = rateSum / float64(t.Sessions)
	}
	return t
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Downsample averages values into at most width buckets.
func Downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return append([]float64(nil), values...)
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// RenderSummary prints session totals.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	t := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", t.Sessions),
		fmt.Sprintf("Flashes: %d", t.Flashes),
		fmt.Sprintf("Time: %s", t.Elapsed.Round(time.Second)),
		fmt.Sprintf("Avg rate: %.1f/min", t.AvgRate),
		fmt.Sprintf("Best rate: %.1f/min", t.BestRate),
		fmt.Sprintf("Stopped: %s", formatReasons(t.Reasons)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints sparklines of flashes and flash rate per session,
// fitted to width. A width of 0 uses the terminal width.
func RenderHistory(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth()
	}
	plotWidth := max(1, width-sparkLabelWidth)
	flashes := make([]float64, len(sessions))
	rates := make([]float64, len(sessions))
	for i, s := range sessions {
		flashes[i] = float64(s.Flashes)
		rates[i] = FlashRate(s.Flashes, s.ElapsedMs)
	}
	rows := []struct {
		label  string
		values []float64
	}{
		{"Flashes", MovingAverage(flashes, window)},
		{"Rate/min", MovingAverage(rates, window)},
	}
	if _, err := fmt.Fprintln(w, "History"); err != nil {
		return err
	}
	for _, row := range rows {
		line := fmt.Sprintf("%-*s%s", sparkLabelWidth, row.label, Sparkline(Downsample(row.values, plotWidth)))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCategoryTable prints per-category aggregates, most flashed first.
func RenderCategoryTable(w io.Writer, aggs []model.CategoryAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No category stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Category"); err != nil {
		return err
	}
	for _, line := range categoryTable(CategoryRows(aggs)) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// CategoryRows returns one row per aggregate in CategoryColumns order,
// sorted by flashes then name.
func CategoryRows(aggs []model.CategoryAggregate) [][]string {
	total := 0
	for _, agg := range aggs {
		total += agg.Flashes
	}
	sorted := append([]model.CategoryAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Flashes == sorted[j].Flashes {
			return sorted[i].Category < sorted[j].Category
		}
		return sorted[i].Flashes > sorted[j].Flashes
	})
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		share := 0.0
		if total > 0 {
			share = float64(agg.Flashes) / float64(total) * 100
		}
		rows = append(rows, []string{
			agg.Category,
			fmt.Sprintf("%d", agg.Flashes),
			fmt.Sprintf("%.1f%%", share),
			fmt.Sprintf("%d", agg.Sessions),
		})
	}
	return rows
}

func formatReasons(reasons map[model.StopReason]int) string {
	order := []model.StopReason{model.StopManual, model.StopDeadline, model.StopLimit}
	parts := make([]string, 0, len(order))
	for _, r := range order {
		if n := reasons[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", r, n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
