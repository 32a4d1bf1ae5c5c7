package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[flash]\ninterval = 100\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan FileConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zerolog.Nop(), func(cfg FileConfig) { changes <- cfg })
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-changes:
			if cfg.Flash.IntervalMs == nil || *cfg.Flash.IntervalMs != 900 {
				t.Fatalf("unexpected reloaded interval: %v", cfg.Flash.IntervalMs)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("watch returned error: %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte("[flash]\ninterval = 900\n"), 0o644); err != nil {
				t.Fatalf("rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for config reload")
		}
	}
}
