package flash

import "sync"

// Sink receives presentation signals.
// Implementations must return promptly and must not call back into the Scheduler.
type Sink interface {
	Show(text string)
	Hide()
}

// Broadcast fans show and hide out to every attached sink.
type Broadcast struct {
	mu    sync.Mutex
	sinks []Sink
}

// NewBroadcast returns a Broadcast with the given sinks attached.
func NewBroadcast(sinks ...Sink) *Broadcast {
	return &Broadcast{sinks: append([]Sink(nil), sinks...)}
}

// Attach adds a sink.
func (b *Broadcast) Attach(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Detach removes a previously attached sink.
func (b *Broadcast) Detach(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.sinks {
		if existing == s {
			b.sinks = append(b.sinks[:i:i], b.sinks[i+1:]...)
			return
		}
	}
}

// Show implements Sink.
func (b *Broadcast) Show(text string) {
	for _, s := range b.snapshot() {
		s.Show(text)
	}
}

// Hide implements Sink.
func (b *Broadcast) Hide() {
	for _, s := range b.snapshot() {
		s.Hide()
	}
}

func (b *Broadcast) snapshot() []Sink {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Sink(nil), b.sinks...)
}
