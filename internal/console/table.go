package console

import (
	"strings"
)

const columnGap = "  "

// Table is a plain-text table with dynamic column widths.
type Table struct {
	headers   []string
	rows      [][]string
	maxWidths map[int]int
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, maxWidths: map[int]int{}}
}

// WrapColumn wraps cells of column col at word boundaries to at most width characters.
func (t *Table) WrapColumn(col, width int) {
	t.maxWidths[col] = width
}

// AddRow appends a row, padding or truncating it to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render formats the table with a header separator line.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	// Each cell becomes one or more lines.
	cells := make([][][]string, len(t.rows))
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for r, row := range t.rows {
		cells[r] = make([][]string, len(row))
		for c, cell := range row {
			lines := wrapText(cell, t.maxWidths[c])
			cells[r][c] = lines
			for _, line := range lines {
				widths[c] = max(widths[c], len(line))
			}
		}
	}

	var b strings.Builder
	writeLine := func(parts []string) {
		for i, part := range parts {
			if i > 0 {
				b.WriteString(columnGap)
			}
			if i == len(parts)-1 {
				b.WriteString(part)
				continue
			}
			b.WriteString(part)
			b.WriteString(strings.Repeat(" ", widths[i]-len(part)))
		}
		b.WriteString("\n")
	}

	writeLine(t.headers)
	separators := make([]string, len(widths))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	writeLine(separators)

	for _, row := range cells {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for l := 0; l < height; l++ {
			parts := make([]string, len(row))
			for c, lines := range row {
				if l < len(lines) {
					parts[c] = lines[l]
				}
			}
			writeLine(parts)
		}
	}

	return b.String()
}

// wrapText splits text into lines no longer than width. Words longer than width are cut.
func wrapText(text string, width int) []string {
	if width <= 0 || len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		for len(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
