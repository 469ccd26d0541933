package table

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	// DateLayout is the display layout for calendar dates.
	DateLayout = "2006-01-02"
	// DateTimeLayout is the display layout for timestamps.
	DateTimeLayout = "2006-01-02 15:04:05"
)

var dateLayouts = []string{
	DateLayout,
	DateTimeLayout,
	time.RFC3339,
	"02.01.2006",
	"2006/01/02",
	"01-02-06",
	"1/2/06",
	"1/2/2006",
}

// Serial day numbers accepted as Excel dates (1954-10-01 .. 2119-01-11).
const (
	minExcelSerial = 20000
	maxExcelSerial = 80000
)

// ParseNumber interprets display text as a number. Spaces and non-breaking
// spaces are treated as thousands separators, a lone comma as the decimal
// separator and a trailing percent sign divides by 100.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)

	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")

	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if percent {
		f /= 100
	}
	return f, true
}

// NumberOrZero is ParseNumber with 0 as the fallback.
func NumberOrZero(s string) float64 {
	f, _ := ParseNumber(s)
	return f
}

// ParseDate interprets display text as a date; ok is false for invalid input.
// Excel serial day numbers are accepted as well.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
