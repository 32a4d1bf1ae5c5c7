package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/subflash/internal/model"
	"github.com/verte-zerg/subflash/internal/stats"
	"github.com/verte-zerg/subflash/internal/statsui"
)

const (
	defaultCurveWindow = 5
	topCategoryCount   = 3
)

var (
	statsSince       string
	statsLast        int
	statsPlain       bool
	statsCurveWindow int
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain text report instead of the TUI")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window for plain output")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(statsSince, statsLast)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		return renderPlainStats(cmd.OutOrStdout(), report, statsCurveWindow)
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfig(since string, last int) (model.StatsConfig, error) {
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	cfg := model.StatsConfig{Last: last}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func renderPlainStats(w io.Writer, report stats.Report, window int) error {
	if len(report.Sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if top := stats.TopCategories(report.Categories, topCategoryCount); len(top) > 0 {
		if _, err := fmt.Fprintf(w, "Top categories: %s\n", strings.Join(top, ", ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderHistory(w, report.Sessions, window, 0); err != nil {
		return err
	}
	if len(report.Categories) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return stats.RenderCategoryTable(w, report.Categories)
}
