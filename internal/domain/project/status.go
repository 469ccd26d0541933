package project

import (
	"fmt"
	"strings"
)

// Status is a project lifecycle stage, L0 through L5.
type Status string

const (
	StatusIdea       Status = "L0"
	StatusIdentified Status = "L1"
	StatusPlanning   Status = "L2"
	StatusExecution  Status = "L3"
	StatusCompleted  Status = "L4"
	StatusRealized   Status = "L5"
)

// DefaultStatus is assigned when a project is created without one.
const DefaultStatus = StatusIdea

// StatusInfo describes one lifecycle stage.
type StatusInfo struct {
	Code        Status `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var statuses = []StatusInfo{
	{StatusIdea, "Idea", "Every idea is collected regardless of feasibility or scale"},
	{StatusIdentified, "Identified", "Initiative judged promising; initial assessment under way"},
	{StatusPlanning, "Planning", "Detailed business case in preparation and approval"},
	{StatusExecution, "Execution", "Initiative implemented according to the approved plan"},
	{StatusCompleted, "Completed", "Implementation finished; target metrics under review"},
	{StatusRealized, "Realized", "Value confirmed in business results"},
}

// Statuses returns every lifecycle stage in order.
func Statuses() []StatusInfo {
	out := make([]StatusInfo, len(statuses))
	copy(out, statuses)
	return out
}

// Valid reports whether s is a known stage.
func (s Status) Valid() bool {
	_, ok := s.info()
	return ok
}

// Label renders "L2 - Planning". Unknown codes are returned unchanged.
func (s Status) Label() string {
	info, ok := s.info()
	if !ok {
		return string(s)
	}
	return string(info.Code) + " - " + info.Name
}

func (s Status) info() (StatusInfo, bool) {
	for _, info := range statuses {
		if info.Code == s {
			return info, true
		}
	}
	return StatusInfo{}, false
}

// ParseStatus accepts a code ("L2", "l2") or a label ("L2 - Planning").
func ParseStatus(raw string) (Status, error) {
	code, _, _ := strings.Cut(strings.TrimSpace(raw), " ")
	s := Status(strings.ToUpper(code))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
	return s, nil
}
