package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/subflash/internal/model"
)

const bulletGlyph = "• "

var (
	bulletSplitRe  = regexp.MustCompile(`\n|•\s*`)
	listMarkerRe   = regexp.MustCompile(`^(\*|-|•)\s+`)
	strongRe       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	emphasisRe     = regexp.MustCompile(`\*(.+?)\*`)
	strongStyle    = lipgloss.NewStyle().Bold(true)
	emphasisStyle  = lipgloss.NewStyle().Italic(true)
	paragraphBreak = "\n\n"
)

// layoutText turns a message into display lines before wrapping.
// Markdown takes precedence over bullets.
func layoutText(text string, d model.Display) string {
	switch {
	case d.RenderMarkdown:
		return markdownBlocks(text)
	case d.RenderBullets:
		return bulletLines(text)
	default:
		return text
	}
}

// decorateText applies inline markdown emphasis to wrapped text.
func decorateText(text string, d model.Display) string {
	if !d.RenderMarkdown {
		return text
	}
	text = replaceGroup(strongRe, text, strongStyle)
	return replaceGroup(emphasisRe, text, emphasisStyle)
}

func bulletLines(text string) string {
	parts := bulletSplitRe.Split(text, -1)
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lines = append(lines, bulletGlyph+part)
	}
	return strings.Join(lines, "\n")
}

// markdownBlocks renders list lines as bullets and other lines as paragraphs.
func markdownBlocks(text string) string {
	var blocks []string
	var list []string
	flush := func() {
		if len(list) > 0 {
			blocks = append(blocks, strings.Join(list, "\n"))
			list = nil
		}
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if listMarkerRe.MatchString(line) {
			list = append(list, bulletGlyph+listMarkerRe.ReplaceAllString(line, ""))
			continue
		}
		flush()
		if line != "" {
			blocks = append(blocks, line)
		}
	}
	flush()
	return strings.Join(blocks, paragraphBreak)
}

func replaceGroup(re *regexp.Regexp, text string, style lipgloss.Style) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		sub := re.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		return style.Render(sub[1])
	})
}

// flashStyle builds the text style for the display settings.
func flashStyle(d model.Display) lipgloss.Style {
	style := lipgloss.NewStyle()
	if d.Color != "" {
		style = style.Foreground(lipgloss.Color(d.Color))
	}
	if d.Bold {
		style = style.Bold(true)
	}
	if d.Backdrop {
		style = style.
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	}
	return style
}
