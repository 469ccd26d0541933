package project

import (
	"encoding/json"
	"maps"
	"slices"
	"sort"
	"time"
)

// DateLayout is the format of StartDate and EndDate.
const DateLayout = "2006-01-02"

// Canonical section names. They double as sheet names in project workbooks.
const (
	SectionDetails    = "a. Детали инициативы"
	SectionFinance    = "b. Финансовое влияние"
	SectionSupport    = "c. Поддерживающие расчеты"
	SectionSchedule   = "d. Диаграмма Ганта"
	SectionMonitoring = "e. Мониторинг эффекта"
	SectionStatus     = "f. Статус инициатив"
)

// CanonicalSections lists the default sections in display order.
var CanonicalSections = []string{
	SectionDetails,
	SectionFinance,
	SectionSupport,
	SectionSchedule,
	SectionMonitoring,
	SectionStatus,
}

var defaultSectionDescriptions = map[string]string{
	SectionDetails:    "Основная информация и описание проекта",
	SectionFinance:    "Финансовые показатели и прогнозы",
	SectionSupport:    "Расчеты и обоснования",
	SectionSchedule:   "Планирование и временные рамки",
	SectionMonitoring: "Отслеживание результатов",
	SectionStatus:     "Текущий статус и прогресс",
}

// DefaultSections returns the canonical section descriptions.
func DefaultSections() map[string]string {
	return maps.Clone(defaultSectionDescriptions)
}

// Project is one tracked business case.
type Project struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Status        Status            `json:"status"`
	Owner         string            `json:"owner"`
	Department    string            `json:"department,omitempty"`
	StartDate     string            `json:"start_date,omitempty"`
	EndDate       string            `json:"end_date,omitempty"`
	File          string            `json:"file,omitempty"`
	TargetRevenue string            `json:"target_revenue,omitempty"`
	KeyMetrics    string            `json:"key_metrics,omitempty"`
	Sections      map[string]string `json:"sections"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Sections = maps.Clone(p.Sections)
	return &out
}

// SectionNames returns canonical sections first, then custom ones sorted.
func (p *Project) SectionNames() []string {
	names := make([]string, 0, len(p.Sections))
	for _, name := range CanonicalSections {
		if _, ok := p.Sections[name]; ok {
			names = append(names, name)
		}
	}
	var custom []string
	for name := range p.Sections {
		if !slices.Contains(CanonicalSections, name) {
			custom = append(custom, name)
		}
	}
	sort.Strings(custom)
	return append(names, custom...)
}

// UnmarshalJSON also reads the created_date/last_updated fields of older
// registry files.
func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	var raw struct {
		alias
		CreatedDate string `json:"created_date"`
		LastUpdated string `json:"last_updated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Project(raw.alias)
	if p.CreatedAt.IsZero() && raw.CreatedDate != "" {
		p.CreatedAt, _ = time.ParseInLocation(DateLayout, raw.CreatedDate, time.Local)
	}
	if p.UpdatedAt.IsZero() && raw.LastUpdated != "" {
		p.UpdatedAt, _ = time.ParseInLocation(DateLayout, raw.LastUpdated, time.Local)
	}
	if p.Sections == nil {
		p.Sections = map[string]string{}
	}
	return nil
}

// ListOptions filters List results. Empty fields match everything.
type ListOptions struct {
	Status     Status
	Owner      string
	Department string
}

func (o ListOptions) match(p *Project) bool {
	if o.Status != "" && p.Status != o.Status {
		return false
	}
	if o.Owner != "" && p.Owner != o.Owner {
		return false
	}
	if o.Department != "" && p.Department != o.Department {
		return false
	}
	return true
}
