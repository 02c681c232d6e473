package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. A zero Width sizes the column to its
// widest cell.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	// Marked is the index of a row rendered highlighted, -1 for none.
	Marked int
}

// NewTable creates a new table.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols, Marked: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, Row(cells))
}

func (t *Table) widths() []int {
	out := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		if col.Width > 0 {
			out[i] = col.Width
			continue
		}
		w := utf8.RuneCountInString(col.Title)
		for _, row := range t.Rows {
			if i < len(row) {
				if n := utf8.RuneCountInString(row[i]); n > w {
					w = n
				}
			}
		}
		out[i] = w
	}
	return out
}

// Render returns the full table as a string. Cells are padded by rune count
// before styling so ANSI codes never affect alignment.
func (t *Table) Render() string {
	var sb strings.Builder
	widths := t.widths()

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	cells := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cells[i] = headerStyle.Render(Pad(col.Title, widths[i]))
	}
	sb.WriteString(strings.Join(cells, "  ") + "\n")

	for i, w := range widths {
		cells[i] = StyleDim.Render(strings.Repeat("─", w))
	}
	sb.WriteString(strings.Join(cells, "  ") + "\n")

	for r, row := range t.Rows {
		style := cellStyle
		if r == t.Marked {
			style = StyleSelected
		}
		for i, w := range widths {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cells[i] = style.Render(Pad(val, w))
		}
		sb.WriteString(strings.Join(cells, "  ") + "\n")
	}
	return sb.String()
}

// KeyValueBlock renders key-value pairs in a bordered box, keys aligned to
// the longest one.
func KeyValueBlock(title string, pairs [][2]string) string {
	keyWidth := 0
	for _, p := range pairs {
		if n := utf8.RuneCountInString(p[0]) + 1; n > keyWidth {
			keyWidth = n
		}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title) + "\n")
	}
	for _, p := range pairs {
		sb.WriteString("  " + StyleMeta.Render(Pad(p[0]+":", keyWidth)) + "  " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(strings.TrimRight(sb.String(), "\n"))
}
