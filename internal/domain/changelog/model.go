package changelog

import (
	"encoding/json"
	"time"
)

// Action is the kind of mutation an entry records.
type Action string

const (
	ActionCreateProject Action = "create-project"
	ActionEditProject   Action = "edit-project"
	ActionEditData      Action = "edit-data"
	ActionAddData       Action = "add-data"
	ActionDeleteData    Action = "delete-data"
)

// Labels written by earlier versions of the dashboard.
var legacyActions = map[string]Action{
	"Создание проекта":       ActionCreateProject,
	"Редактирование проекта": ActionEditProject,
	"Изменение данных":       ActionEditData,
	"Добавление данных":      ActionAddData,
	"Удаление данных":        ActionDeleteData,
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreateProject, ActionEditProject, ActionEditData, ActionAddData, ActionDeleteData:
		return true
	}
	return false
}

// UnmarshalText accepts current identifiers and legacy labels.
func (a *Action) UnmarshalText(text []byte) error {
	if mapped, ok := legacyActions[string(text)]; ok {
		*a = mapped
		return nil
	}
	*a = Action(text)
	return nil
}

// Entry is one immutable change-log record.
type Entry struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    Action    `json:"action"`
	Details   string    `json:"details"`
}

// Timestamps written without a zone offset by earlier versions.
var legacyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON also accepts zone-less timestamps, read as local time.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type alias Entry
	var raw struct {
		alias
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry(raw.alias)
	if raw.Timestamp == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw.Timestamp); err == nil {
		e.Timestamp = t
		return nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw.Timestamp, time.Local); err == nil {
			e.Timestamp = t
			return nil
		}
	}
	return &time.ParseError{Layout: time.RFC3339Nano, Value: raw.Timestamp, Message: ": unsupported timestamp"}
}
