package changelog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAction_UnmarshalLegacyLabels(t *testing.T) {
	tests := map[string]Action{
		"Создание проекта":       ActionCreateProject,
		"Редактирование проекта": ActionEditProject,
		"Изменение данных":       ActionEditData,
		"Добавление данных":      ActionAddData,
		"Удаление данных":        ActionDeleteData,
		"edit-data":              ActionEditData,
	}
	for label, want := range tests {
		var got Action
		require.NoError(t, got.UnmarshalText([]byte(label)))
		require.Equal(t, want, got, label)
		require.True(t, got.Valid())
	}

	var unknown Action
	require.NoError(t, unknown.UnmarshalText([]byte("archived")))
	require.False(t, unknown.Valid())
}

func TestEntry_UnmarshalLegacyTimestamp(t *testing.T) {
	raw := `{"id":"x","project_id":"business_case_1","timestamp":"2025-05-12T10:30:45.123456",
		"user":"Текущий пользователь","action":"Изменение данных","details":"Раздел: b. Финансовое влияние"}`

	var e Entry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	require.Equal(t, ActionEditData, e.Action)
	require.Equal(t, "business_case_1", e.ProjectID)
	want := time.Date(2025, 5, 12, 10, 30, 45, 123456000, time.Local)
	require.True(t, want.Equal(e.Timestamp), "got %s", e.Timestamp)
}

func TestEntry_RoundTrip(t *testing.T) {
	in := Entry{
		ID:        "x",
		ProjectID: "p",
		Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		User:      "u",
		Action:    ActionAddData,
		Details:   "d",
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Entry
	require.NoError(t, json.Unmarshal(data, &out))
	require.True(t, in.Timestamp.Equal(out.Timestamp))
	out.Timestamp = in.Timestamp
	require.Equal(t, in, out)
}

func TestEntry_RejectsGarbageTimestamp(t *testing.T) {
	var e Entry
	require.Error(t, json.Unmarshal([]byte(`{"timestamp":"yesterday"}`), &e))
}
