package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sha367/smartPM/internal/repository"
)

// DefaultPrefix names synthetic columns when no section hint is given.
const DefaultPrefix = "Column"

// placeholderLabelPrefix marks the auto-labels spreadsheet readers give to
// headerless columns ("Unnamed: 3").
const placeholderLabelPrefix = "Unnamed:"

var missingSentinels = map[string]struct{}{
	"nan":  {},
	"NaN":  {},
	"None": {},
	"NaT":  {},
	"<NA>": {},
}

// RawSheet is one sheet as read from a workbook: the first row split off as
// the header, cells of any type, nil for absent cells.
type RawSheet struct {
	Name   string
	Header []any
	Rows   [][]any
}

// Options tunes normalization.
type Options struct {
	// Prefix is used for synthetic column names: <Prefix>_<position>.
	Prefix string
}

// FromRecord converts a record back into a raw sheet.
func FromRecord(name string, r Record) RawSheet {
	sheet := RawSheet{Name: name, Header: make([]any, len(r.Columns))}
	for i, c := range r.Columns {
		sheet.Header[i] = c
	}
	for _, row := range r.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		sheet.Rows = append(sheet.Rows, cells)
	}
	return sheet
}

// NormalizeSafe normalizes a sheet and converts a failure while coercing
// cells into an empty record plus an error wrapping repository.ErrParse.
func NormalizeSafe(sheet RawSheet, opts Options) (rec Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = Record{Columns: []string{}, Rows: [][]string{}}
			err = fmt.Errorf("normalize sheet %q: %w: %v", sheet.Name, repository.ErrParse, r)
		}
	}()
	return Normalize(sheet, opts), nil
}

// Normalize cleans a raw sheet into a Record: empty rows and unlabeled empty
// columns are dropped, unusable labels get synthetic names, missing values
// become empty text and every cell is rendered as display text.
func Normalize(sheet RawSheet, opts Options) Record {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	width := len(sheet.Header)
	for _, row := range sheet.Rows {
		width = max(width, len(row))
	}

	labels := make([]string, width)
	for i := range labels {
		if i < len(sheet.Header) {
			labels[i] = strings.TrimSpace(CellText(sheet.Header[i]))
		}
	}

	text := make([][]string, len(sheet.Rows))
	for r, row := range sheet.Rows {
		cells := make([]string, width)
		for c := range cells {
			if c < len(row) {
				cells[c] = CellText(row[c])
			}
		}
		text[r] = cells
	}

	var keep []int
	for c := 0; c < width; c++ {
		if !needsSyntheticName(labels[c]) || !columnEmpty(text, c) {
			keep = append(keep, c)
		}
	}

	rec := Record{
		Columns: make([]string, 0, len(keep)),
		Rows:    [][]string{},
	}

	used := make(map[string]struct{}, len(keep))
	for pos, c := range keep {
		name := labels[c]
		if needsSyntheticName(name) {
			name = fmt.Sprintf("%s_%d", prefix, pos+1)
		}
		for {
			if _, dup := used[name]; !dup {
				break
			}
			name = fmt.Sprintf("%s_%d", name, pos+1)
		}
		used[name] = struct{}{}
		rec.Columns = append(rec.Columns, name)
	}

	for _, cells := range text {
		row := make([]string, len(keep))
		blank := true
		for i, c := range keep {
			row[i] = cells[c]
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			rec.Rows = append(rec.Rows, row)
		}
	}

	return rec
}

func columnEmpty(rows [][]string, col int) bool {
	for _, row := range rows {
		if row[col] != "" {
			return false
		}
	}
	return true
}

// needsSyntheticName reports whether a column label is blank, a reader
// placeholder, or purely numeric. Four-digit years are kept since financial
// rollups address them by name.
func needsSyntheticName(label string) bool {
	if label == "" || strings.HasPrefix(label, placeholderLabelPrefix) {
		return true
	}
	if !isDigits(label) {
		return false
	}
	return !IsYearLabel(label)
}

// IsYearLabel reports whether label is a four-digit year between 1900 and 2100.
func IsYearLabel(label string) bool {
	if len(label) != 4 || !isDigits(label) {
		return false
	}
	year, _ := strconv.Atoi(label)
	return year >= 1900 && year <= 2100
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// CellText renders one raw cell as display text; missing-value sentinels and
// whitespace-only strings become empty text.
func CellText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return cleanString(v)
	case []byte:
		return cleanString(string(v))
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return formatTime(v)
	case *time.Time:
		if v == nil {
			return ""
		}
		return formatTime(*v)
	case error:
		return cleanString(v.Error())
	case fmt.Stringer:
		return cleanString(v.String())
	default:
		return cleanString(fmt.Sprint(v))
	}
}

func cleanString(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if _, missing := missingSentinels[trimmed]; missing {
		return ""
	}
	return s
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format(DateTimeLayout)
}
