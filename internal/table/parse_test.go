package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"35", 35, true},
		{"12,5", 12.5, true},
		{"1 000", 1000, true},
		{"1 250.5", 1250.5, true},
		{"60%", 0.6, true},
		{"-3", -3, true},
		{"", 0, false},
		{"млн", 0, false},
		{"1,000.5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.input)
		require.Equal(t, tt.ok, ok, "input %q", tt.input)
		require.InDelta(t, tt.want, got, 1e-9, "input %q", tt.input)
	}
	require.Zero(t, NumberOrZero("n/a"))
}

func TestParseDate(t *testing.T) {
	day := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"2025-05-12", "12.05.2025", "2025/05/12", "45789"} {
		got, ok := ParseDate(input)
		require.True(t, ok, "input %q", input)
		require.Equal(t, day, got.UTC().Truncate(24*time.Hour), "input %q", input)
	}

	_, ok := ParseDate("скоро")
	require.False(t, ok)
	_, ok = ParseDate("")
	require.False(t, ok)
	_, ok = ParseDate("12")
	require.False(t, ok)
}
