package section

import (
	"strings"

	"github.com/sha367/smartPM/internal/table"
	"github.com/sha367/smartPM/internal/workbook"
)

// Origin tells where a section's current content came from.
type Origin string

const (
	// OriginProject is data read from the project's own workbook or edited
	// in place.
	OriginProject Origin = "project"
	// OriginShared is data copied from the shared single-workbook layout.
	OriginShared Origin = "shared"
	// OriginPlaceholder is the template shown when no data exists.
	OriginPlaceholder Origin = "placeholder"
)

// Lookup is the result of Get.
type Lookup struct {
	Key    workbook.Key
	Record table.Record
	Origin Origin
	// Notice explains a placeholder or a degraded load; empty otherwise.
	Notice string
}

// Column names with special meaning in presentation helpers.
const (
	ColumnTask        = "Задача"
	ColumnStart       = "Начало"
	ColumnEnd         = "Конец"
	ColumnFutureState = "Будущее состояние"
)

// RollupYears are the financial-effect columns summed across projects.
var RollupYears = []string{"2025", "2026", "2027"}

// PrefixFor picks the synthetic column prefix for a sheet.
func PrefixFor(sheet string) string {
	switch {
	case strings.HasPrefix(sheet, "a."):
		return "Field"
	case strings.HasPrefix(sheet, "b."):
		return "Finance"
	default:
		return table.DefaultPrefix
	}
}
