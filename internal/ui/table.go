package ui

import "strings"

// Table renders aligned columns with simple spacing, no borders. An
// optional header row is rendered bold with a muted underline.
type Table struct {
	header    []string
	rows      [][]string
	colWidths []int
	padding   int
}

// NewTable creates a table with the given number of columns.
func NewTable(cols int) *Table {
	return &Table{
		colWidths: make([]int, cols),
		padding:   2,
	}
}

// SetHeader sets the header row.
func (t *Table) SetHeader(cells ...string) {
	t.header = t.fit(cells)
}

// AddRow adds a data row. Extra cells beyond the column count are dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, t.fit(cells))
}

func (t *Table) fit(cells []string) []string {
	row := make([]string, len(t.colWidths))
	for i := 0; i < len(t.colWidths) && i < len(cells); i++ {
		row[i] = cells[i]
		if len(cells[i]) > t.colWidths[i] {
			t.colWidths[i] = len(cells[i])
		}
	}
	return row
}

// String renders the table.
func (t *Table) String() string {
	if len(t.rows) == 0 && t.header == nil {
		return ""
	}

	var sb strings.Builder
	if t.header != nil {
		t.writeRow(&sb, t.header, func(s string) string { return Bold.Render(s) })
	}
	for _, row := range t.rows {
		t.writeRow(&sb, row, nil)
	}
	return sb.String()
}

func (t *Table) writeRow(sb *strings.Builder, row []string, style func(string) string) {
	pad := strings.Repeat(" ", t.padding)
	for i, cell := range row {
		if i > 0 {
			sb.WriteString(pad)
		}
		rendered := cell
		if style != nil {
			rendered = style(cell)
		}
		sb.WriteString(rendered)
		// The last column stays ragged.
		if i < len(row)-1 {
			sb.WriteString(strings.Repeat(" ", t.colWidths[i]-len(cell)))
		}
	}
	sb.WriteString("\n")
}
