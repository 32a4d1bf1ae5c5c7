// Package main provides the CLI entrypoint for subflash.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/subflash/internal/config"
	"github.com/verte-zerg/subflash/internal/flash"
	"github.com/verte-zerg/subflash/internal/logging"
	"github.com/verte-zerg/subflash/internal/mirror"
	"github.com/verte-zerg/subflash/internal/model"
	"github.com/verte-zerg/subflash/internal/store"
	"github.com/verte-zerg/subflash/internal/tui"
)

var (
	flashOpts   = defaultFlashOptions()
	flashPreset string
	flashMirror string
	logLevel    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "subflash",
		Short:         "Flash weighted affirmations in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runFlashCmd,
	}

	flashOpts = defaultFlashOptions()
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	bindFlashFlags(rootCmd, &flashOpts)
	rootCmd.Flags().StringVar(&flashPreset, "preset", "", "load a saved preset before flashing")
	rootCmd.Flags().StringVar(&flashMirror, "mirror", "", "keep the flashed text in this file for status bars")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCategoryCmd())
	rootCmd.AddCommand(newMessageCmd())
	rootCmd.AddCommand(newActiveCmd())
	rootCmd.AddCommand(newPresetCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runFlashCmd(cmd *cobra.Command, _ []string) error {
	cfgPath := config.DefaultConfigPath()
	fileCfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	logPath := config.DefaultLogPath()
	if fileCfg.Log.File != nil && *fileCfg.Log.File != "" {
		logPath = *fileCfg.Log.File
	}
	log, logCloser, err := logging.OpenFile(logPath, logLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logCloser.Close(); cerr != nil {
			// Best-effort close of the session log.
			_ = cerr
		}
	}()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	var preset *model.Preset
	if flashPreset != "" {
		p, err := st.GetPreset(ctx, flashPreset)
		if err != nil {
			return fmt.Errorf("failed to load preset: %w", err)
		}
		if err := st.ApplyPreset(ctx, p); err != nil {
			return fmt.Errorf("failed to apply preset: %w", err)
		}
		preset = &p
	}

	opts := flashOpts.withConfig(cmd, fileCfg).withPreset(cmd, preset)
	if err := opts.validate(); err != nil {
		return err
	}
	settings, display := opts.resolve()
	log.Info().Str("preset", flashPreset).Msg("starting flash view")

	var outputs []flash.Sink
	if flashMirror != "" {
		mf, err := mirror.New(flashMirror, log)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := mf.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("failed to close mirror")
			}
		}()
		outputs = append(outputs, mf)
	}

	m := tui.NewModel(st, tui.Options{
		Settings: settings,
		Display:  display,
		Logger:   &log,
		Outputs:  outputs,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go watchConfig(watchCtx, cmd, cfgPath, preset, program, log)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// watchConfig pushes reloaded settings into the running program.
func watchConfig(ctx context.Context, cmd *cobra.Command, path string, preset *model.Preset, program *tea.Program, log zerolog.Logger) {
	err := config.Watch(ctx, path, log, func(fileCfg config.FileConfig) {
		opts := flashOpts.withConfig(cmd, fileCfg).withPreset(cmd, preset)
		if err := opts.validate(); err != nil {
			log.Warn().Err(err).Msg("ignoring invalid config")
			return
		}
		settings, display := opts.resolve()
		program.Send(tui.SettingsMsg{Settings: settings, Display: display})
	})
	if err != nil {
		log.Warn().Err(err).Msg("config hot reload disabled")
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	d := defaultFlashOptions()
	return fmt.Sprintf(`# subflash configuration
# Uncomment a value to enable it. CLI flags override config values.
# A running subflash applies saved changes when the next session starts.

[flash]
# interval = %d            # Milliseconds between flashes (min 5)
# duration = %d             # Milliseconds each flash stays visible (min 5)
# mode = %q          # "message" or "word"
# no-repeat = %t         # Avoid showing the same message twice in a row
# auto-stop = %t         # Enable the limits below
# auto-stop-min = 0        # Stop after this many minutes (0 = no time limit)
# auto-stop-flashes = 0    # Stop after this many flashes (0 = no count limit)

[display]
# color = %q       # Text color (hex)
# position = %q     # "top", "center", "bottom" or "random"
# bold = %t              # Bold text
# backdrop = %t          # Draw a box behind the text
# bullets = false          # Render messages as bullet lists
# markdown = false         # Render lists, **bold** and *italic*

[log]
# level = "info"           # debug, info, warn, error
# file = ""                # Defaults to $XDG_STATE_HOME/subflash/subflash.log
`,
		d.IntervalMs,
		d.DurationMs,
		d.Mode,
		d.NoRepeat,
		d.AutoStop,
		d.Color,
		d.Position,
		d.Bold,
		d.Backdrop,
	)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		log := consoleLogger()
		log.Warn().Err(cerr).Msg("failed to close db")
	}
}

// consoleLogger returns the stderr logger used by non-interactive commands.
func consoleLogger() zerolog.Logger {
	return logging.Console(logLevel)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func writeLine(cmd *cobra.Command, format string, args ...any) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
