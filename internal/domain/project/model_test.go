package project

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"L2":             StatusPlanning,
		"l3":             StatusExecution,
		" L5 - Realized": StatusRealized,
		"L0 - Идея":      StatusIdea,
	}
	for raw, want := range tests {
		got, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got)
	}

	_, err := ParseStatus("L6")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = ParseStatus("")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatusLabel(t *testing.T) {
	require.Equal(t, "L2 - Planning", StatusPlanning.Label())
	require.Equal(t, "X1", Status("X1").Label())
	require.Len(t, Statuses(), 6)
}

func TestProject_UnmarshalLegacyDates(t *testing.T) {
	raw := `{"id":"business_case_1","name":"n","status":"L3","owner":"o",
		"created_date":"2024-01-01","last_updated":"2025-05-12"}`

	var p Project
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Equal(t, 2024, p.CreatedAt.Year())
	require.Equal(t, 12, p.UpdatedAt.Day())
	require.NotNil(t, p.Sections)
}

func TestProject_SectionNamesOrder(t *testing.T) {
	p := &Project{Sections: DefaultSections()}
	p.Sections["z. Extra"] = ""
	p.Sections["g. Команда"] = ""

	names := p.SectionNames()
	require.Equal(t, CanonicalSections, names[:len(CanonicalSections)])
	require.Equal(t, []string{"g. Команда", "z. Extra"}, names[len(CanonicalSections):])
}
