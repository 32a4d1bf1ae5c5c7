package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/subflash/internal/config"
	"github.com/verte-zerg/subflash/internal/model"
)

var presetOpts = defaultFlashOptions()

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved presets",
	}
	saveCmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save settings and the current selection as a preset",
		Long: "Save settings and the current selection as a preset.\n" +
			"Settings come from flags, then the config file, then defaults.",
		Args: cobra.ExactArgs(1),
		RunE: runPresetSaveCmd,
	}
	presetOpts = defaultFlashOptions()
	bindFlashFlags(saveCmd, &presetOpts)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List presets",
		Args:  cobra.NoArgs,
		RunE:  runPresetListCmd,
	})
	cmd.AddCommand(saveCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runPresetRmCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Show a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runPresetShowCmd,
	})
	return cmd
}

func runPresetListCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	presets, err := st.ListPresets(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list presets: %w", err)
	}
	if len(presets) == 0 {
		return writeLine(cmd, "No presets. Run: subflash preset save NAME")
	}
	for _, p := range presets {
		if err := writeLine(cmd, "%s  %dms/%dms  %s", p.Name, p.IntervalMs, p.DurationMs, p.Mode); err != nil {
			return err
		}
	}
	return nil
}

func runPresetSaveCmd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts := presetOpts.withConfig(cmd, fileCfg)
	if err := opts.validate(); err != nil {
		return err
	}
	settings, display := opts.resolve()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	lib, err := st.LoadLibrary(ctx)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
	if err := st.SavePreset(ctx, model.NewPreset(name, settings, display, lib)); err != nil {
		return fmt.Errorf("failed to save preset: %w", err)
	}
	return writeLine(cmd, "Saved preset %q", name)
}

func runPresetRmCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.DeletePreset(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return writeLine(cmd, "Deleted preset %q", args[0])
}

func runPresetShowCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	p, err := st.GetPreset(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load preset: %w", err)
	}
	for _, line := range presetLines(p) {
		if err := writeLine(cmd, "%s", line); err != nil {
			return err
		}
	}
	return nil
}

func presetLines(p model.Preset) []string {
	autoStop := "off"
	if p.AutoStop {
		var limits []string
		if p.AutoStopMinutes != 0 {
			limits = append(limits, fmt.Sprintf("%gmin", p.AutoStopMinutes))
		}
		if p.AutoStopFlashes != 0 {
			limits = append(limits, fmt.Sprintf("%d flashes", p.AutoStopFlashes))
		}
		autoStop = "on"
		if len(limits) > 0 {
			autoStop += " (" + strings.Join(limits, ", ") + ")"
		}
	}
	active := "none"
	if len(p.Active) > 0 {
		active = strings.Join(p.Active, ", ")
	}
	lines := []string{
		fmt.Sprintf("Preset: %s", p.Name),
		fmt.Sprintf("Interval: %dms", p.IntervalMs),
		fmt.Sprintf("Duration: %dms", p.DurationMs),
		fmt.Sprintf("Mode: %s", p.Mode),
		fmt.Sprintf("No repeat: %t", p.NoRepeat),
		fmt.Sprintf("Auto stop: %s", autoStop),
		fmt.Sprintf("Display: color=%s position=%s bold=%t backdrop=%t bullets=%t markdown=%t",
			p.Color, p.Position, p.Bold, p.Backdrop, p.RenderBullets, p.RenderMarkdown),
		fmt.Sprintf("Category: %s", p.Category),
		fmt.Sprintf("Active: %s", active),
	}
	if len(p.Weights) > 0 {
		names := make([]string, 0, len(p.Weights))
		for name := range p.Weights {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+"="+formatWeight(p.Weights[name]))
		}
		lines = append(lines, "Weights: "+strings.Join(parts, " "))
	}
	return lines
}
