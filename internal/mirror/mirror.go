// Package mirror writes the currently flashed text to a file so that
// status bars and other programs can follow a running session.
package mirror

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// File is a flash output that keeps path holding the visible text.
// Writes happen on a background goroutine; only the latest text is written.
type File struct {
	path string
	log  zerolog.Logger

	mu      sync.Mutex
	pending *string

	signal  chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// New creates the parent directory, truncates path and starts the writer.
func New(path string, log zerolog.Logger) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("mirror path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return nil, fmt.Errorf("failed to create mirror file: %w", err)
	}
	f := &File{
		path:    path,
		log:     log.With().Str("component", "mirror").Logger(),
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go f.run()
	return f, nil
}

// Show implements flash.Sink.
func (f *File) Show(text string) {
	f.set(text)
}

// Hide implements flash.Sink.
func (f *File) Hide() {
	f.set("")
}

// Close flushes the last text and stops the writer.
func (f *File) Close() error {
	f.once.Do(func() {
		close(f.done)
	})
	<-f.stopped
	return nil
}

func (f *File) set(text string) {
	f.mu.Lock()
	f.pending = &text
	f.mu.Unlock()
	select {
	case f.signal <- struct{}{}:
	default:
	}
}

func (f *File) take() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return "", false
	}
	text := *f.pending
	f.pending = nil
	return text, true
}

func (f *File) run() {
	defer close(f.stopped)
	for {
		select {
		case <-f.signal:
			f.flush()
		case <-f.done:
			f.flush()
			return
		}
	}
}

func (f *File) flush() {
	text, ok := f.take()
	if !ok {
		return
	}
	if err := writeAtomic(f.path, text); err != nil {
		f.log.Warn().Err(err).Msg("failed to write mirror")
	}
}

func writeAtomic(path, text string) error {
	data := []byte(text)
	if text != "" {
		data = append(data, '\n')
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
