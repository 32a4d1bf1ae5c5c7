package tui

import "testing"

func TestWrapTextBreaksOnSpaces(t *testing.T) {
	got := wrapText("one two three", 7)
	if got != "one two\nthree" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextKeepsLines(t *testing.T) {
	got := wrapText("• a\n\n• b", 10)
	if got != "• a\n\n• b" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextBreaksLongWords(t *testing.T) {
	got := wrapText("abcdefgh", 3)
	if got != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	got := wrapText("集中 集中", 4)
	if got != "集中\n集中" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextZeroWidth(t *testing.T) {
	if got := wrapText("a b", 0); got != "a b" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
