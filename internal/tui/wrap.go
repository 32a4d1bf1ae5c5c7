package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText word-wraps each line of text to width display cells.
// Words wider than the line are broken at cell boundaries.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}
	var out []string
	var cur strings.Builder
	curWidth := 0
	for _, word := range words {
		for runewidth.StringWidth(word) > width {
			if curWidth > 0 {
				out = append(out, cur.String())
				cur.Reset()
				curWidth = 0
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				head = string([]rune(word)[:1])
			}
			out = append(out, head)
			word = word[len(head):]
		}
		if word == "" {
			continue
		}
		w := runewidth.StringWidth(word)
		if curWidth > 0 && curWidth+1+w > width {
			out = append(out, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if curWidth > 0 {
			cur.WriteByte(' ')
			curWidth++
		}
		cur.WriteString(word)
		curWidth += w
	}
	if curWidth > 0 {
		out = append(out, cur.String())
	}
	return out
}
