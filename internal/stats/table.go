package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Column describes one column of the per-category table.
type Column struct {
	Title string
	// Width is the widest cell the column shows; longer cells are truncated.
	Width int
	Right bool
}

// CategoryColumns lists the per-category columns in the order CategoryRows fills them.
var CategoryColumns = []Column{
	{Title: "Category", Width: 24},
	{Title: "Flashes", Width: 8, Right: true},
	{Title: "Share", Width: 7, Right: true},
	{Title: "Sessions", Width: 8, Right: true},
}

const (
	columnGap     = "  "
	truncatedTail = "..."
)

// categoryTable lays out rows under CategoryColumns, sized to the widest cell.
func categoryTable(rows [][]string) []string {
	widths := make([]int, len(CategoryColumns))
	titles := make([]string, len(CategoryColumns))
	for i, col := range CategoryColumns {
		titles[i] = col.Title
		widths[i] = runewidth.StringWidth(col.Title)
		for _, row := range rows {
			if w := runewidth.StringWidth(cellAt(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
		if widths[i] > col.Width {
			widths[i] = col.Width
		}
	}

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, layoutRow(titles, widths), strings.Join(rule, columnGap))
	for _, row := range rows {
		lines = append(lines, layoutRow(row, widths))
	}
	return lines
}

func layoutRow(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, w := range widths {
		cell := runewidth.Truncate(cellAt(row, i), w, truncatedTail)
		if CategoryColumns[i].Right {
			cells[i] = runewidth.FillLeft(cell, w)
		} else {
			cells[i] = runewidth.FillRight(cell, w)
		}
	}
	return strings.Join(cells, columnGap)
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
