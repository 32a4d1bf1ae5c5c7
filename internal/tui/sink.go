package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/subflash/internal/flash"
)

const sinkBuffer = 1024

type showMsg struct {
	text string
}

type hideMsg struct{}

type stoppedMsg struct {
	summary flash.Summary
}

// Sink forwards scheduler signals into the Bubble Tea event loop.
// Sends never block; when the program falls behind by a full buffer,
// signals are dropped.
type Sink struct {
	ch chan tea.Msg
}

// NewSink returns a Sink with a buffered queue.
func NewSink() *Sink {
	return &Sink{ch: make(chan tea.Msg, sinkBuffer)}
}

// Show implements flash.Sink.
func (s *Sink) Show(text string) {
	s.send(showMsg{text: text})
}

// Hide implements flash.Sink.
func (s *Sink) Hide() {
	s.send(hideMsg{})
}

// Stopped forwards a finished session summary.
func (s *Sink) Stopped(summary flash.Summary) {
	s.send(stoppedMsg{summary: summary})
}

// Listen waits for the next queued signal. Re-issue it after every message.
func (s *Sink) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-s.ch
	}
}

func (s *Sink) send(msg tea.Msg) {
	select {
	case s.ch <- msg:
	default:
	}
}
