// Package table holds the normalized tabular record shared by every section
// and the normalizer that produces it from raw spreadsheet sheets.
package table

import "slices"

// Record is an ordered set of uniquely named columns and rows of display text.
type Record struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Placeholder columns used when a section has no source data yet.
var placeholderColumns = []string{"Параметр", "Значение", "Комментарий"}

// Placeholder returns the one-row record shown for sections without data.
func Placeholder() Record {
	return Record{
		Columns: slices.Clone(placeholderColumns),
		Rows: [][]string{
			{"Название параметра", "Значение параметра", "Комментарий или описание"},
		},
	}
}

// IsEmpty reports whether the record carries no rows.
func (r Record) IsEmpty() bool {
	return len(r.Rows) == 0
}

// ColumnIndex returns the position of the named column or -1.
func (r Record) ColumnIndex(name string) int {
	return slices.Index(r.Columns, name)
}

// Cell returns the text at row/column; ok is false when either is out of range.
func (r Record) Cell(row int, column string) (string, bool) {
	col := r.ColumnIndex(column)
	if col < 0 || row < 0 || row >= len(r.Rows) {
		return "", false
	}
	cells := r.Rows[row]
	if col >= len(cells) {
		return "", true
	}
	return cells[col], true
}

// Column returns every value of a column in row order.
func (r Record) Column(name string) ([]string, bool) {
	col := r.ColumnIndex(name)
	if col < 0 {
		return nil, false
	}
	out := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		if col < len(row) {
			out = append(out, row[col])
		} else {
			out = append(out, "")
		}
	}
	return out, true
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := Record{
		Columns: slices.Clone(r.Columns),
		Rows:    make([][]string, len(r.Rows)),
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	for i, row := range r.Rows {
		out.Rows[i] = slices.Clone(row)
	}
	return out
}

// Equal compares columns and cells; missing trailing cells count as empty text.
func (r Record) Equal(other Record) bool {
	if !slices.Equal(r.Columns, other.Columns) || len(r.Rows) != len(other.Rows) {
		return false
	}
	for i := range r.Rows {
		for c := range r.Columns {
			if cellAt(r.Rows[i], c) != cellAt(other.Rows[i], c) {
				return false
			}
		}
	}
	return true
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}
