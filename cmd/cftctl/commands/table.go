package commands

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const ellipsis = "…"

var tableStyle = baseStyle.Copy().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(SECONDARY_COLOR)).
	MarginLeft(MARGIN)

// Table is a static listing rendered with --output table.
type Table struct {
	columns []string
	// weights sets the share of the width each column gets.
	weights []float64
	rows    [][]string
	caption string
}

// NewTable returns a table with equally weighted columns.
func NewTable(columns ...string) *Table {
	weights := make([]float64, len(columns))
	for i := range weights {
		weights[i] = 1
	}
	return &Table{columns: columns, weights: weights}
}

// WithWeights overrides the column weights.
func (t *Table) WithWeights(weights ...float64) *Table {
	if len(weights) == len(t.columns) {
		t.weights = weights
	}
	return t
}

// WithCaption sets a line printed under the table.
func (t *Table) WithCaption(caption string) *Table {
	t.caption = caption
	return t
}

// AddRow appends a row. Missing cells are left blank.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Render draws the table, truncating overflowing cells.
func (t *Table) Render() string {
	var total float64
	for _, w := range t.weights {
		total += w
	}
	avail := MAX_WIDTH - 2*MARGIN - 2*len(t.columns)
	cols := make([]table.Column, len(t.columns))
	for i, title := range t.columns {
		cols[i] = table.Column{Title: title, Width: int(float64(avail) * t.weights[i] / total)}
	}
	rows := make([]table.Row, 0, len(t.rows))
	for _, r := range t.rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			if runewidth.StringWidth(cell) > cols[i].Width {
				cell = runewidth.Truncate(cell, cols[i].Width, ellipsis)
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(SECONDARY_COLOR)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.UnsetBackground().UnsetForeground().Bold(false)

	height := len(rows)
	if height == 0 {
		height = 1
	}
	m := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(height),
		table.WithFocused(false),
		table.WithStyles(s),
	)
	out := tableStyle.Render(m.View())
	if t.caption != "" {
		out += "\n" + HelpStyle(t.caption)
	}
	return out
}

// cell renders a loosely typed value for a table cell.
func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64, bool, int:
		return fmt.Sprint(v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]any) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
