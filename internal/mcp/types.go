package mcp

import (
	"time"

	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/domain/section"
)

type ListProjectsParams struct {
	Status     string `json:"status,omitempty" jsonschema:"Only projects in this status (L0-L5)"`
	Owner      string `json:"owner,omitempty" jsonschema:"Only projects with this owner"`
	Department string `json:"department,omitempty" jsonschema:"Only projects of this department"`
}

type ProjectIDParams struct {
	ID string `json:"id" jsonschema:"Project ID"`
}

type CreateProjectParams struct {
	Name          string   `json:"name" jsonschema:"Project display name"`
	Description   string   `json:"description" jsonschema:"What the business case is about"`
	Owner         string   `json:"owner" jsonschema:"Responsible person"`
	Department    string   `json:"department,omitempty" jsonschema:"Owning department"`
	Status        string   `json:"status,omitempty" jsonschema:"Lifecycle status L0-L5, defaults to L0"`
	StartDate     string   `json:"start_date,omitempty" jsonschema:"Start date, YYYY-MM-DD"`
	EndDate       string   `json:"end_date,omitempty" jsonschema:"End date, YYYY-MM-DD"`
	File          string   `json:"file,omitempty" jsonschema:"Workbook path, relative to the data directory"`
	TargetRevenue string   `json:"target_revenue,omitempty" jsonschema:"Target revenue, free text"`
	KeyMetrics    string   `json:"key_metrics,omitempty" jsonschema:"Key metrics, free text"`
	ExtraSections []string `json:"extra_sections,omitempty" jsonschema:"Custom section names added after the canonical ones"`
}

type UpdateProjectParams struct {
	ID            string  `json:"id" jsonschema:"Project ID"`
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Owner         *string `json:"owner,omitempty"`
	Department    *string `json:"department,omitempty"`
	Status        *string `json:"status,omitempty" jsonschema:"Lifecycle status L0-L5"`
	StartDate     *string `json:"start_date,omitempty" jsonschema:"YYYY-MM-DD"`
	EndDate       *string `json:"end_date,omitempty" jsonschema:"YYYY-MM-DD"`
	File          *string `json:"file,omitempty"`
	TargetRevenue *string `json:"target_revenue,omitempty"`
	KeyMetrics    *string `json:"key_metrics,omitempty"`
}

type SectionParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	Section   string `json:"section" jsonschema:"Section name, e.g. b. Финансовое влияние"`
}

type EditCellParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	Section   string `json:"section" jsonschema:"Section name"`
	Row       int    `json:"row" jsonschema:"Zero-based row index"`
	Column    string `json:"column" jsonschema:"Column name"`
	Value     string `json:"value" jsonschema:"New cell text"`
}

type DeleteRowParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	Section   string `json:"section" jsonschema:"Section name"`
	Row       int    `json:"row" jsonschema:"Zero-based row index"`
}

type ProjectScopeParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
}

type RefreshWorkbooksParams struct {
	Discard bool `json:"discard,omitempty" jsonschema:"Also drop unflushed section edits"`
}

type ListChangesParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Only entries of this project"`
	Action    string `json:"action,omitempty" jsonschema:"Only entries with this action (create-project, edit-project, edit-data, add-data, delete-data)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of entries"`
}

type NoParams struct{}

type ProjectResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Status        string            `json:"status"`
	StatusLabel   string            `json:"status_label"`
	Owner         string            `json:"owner"`
	Department    string            `json:"department,omitempty"`
	StartDate     string            `json:"start_date,omitempty"`
	EndDate       string            `json:"end_date,omitempty"`
	File          string            `json:"file,omitempty"`
	TargetRevenue string            `json:"target_revenue,omitempty"`
	KeyMetrics    string            `json:"key_metrics,omitempty"`
	Sections      []string          `json:"sections"`
	Descriptions  map[string]string `json:"section_descriptions"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type DeleteProjectResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type SectionResponse struct {
	ProjectID string     `json:"project_id"`
	Section   string     `json:"section"`
	Key       string     `json:"key"`
	Origin    string     `json:"origin"`
	Notice    string     `json:"notice,omitempty"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
}

type RowResponse struct {
	ProjectID string `json:"project_id"`
	Section   string `json:"section"`
	Row       int    `json:"row"`
}

type FlushResponse struct {
	ProjectID string `json:"project_id"`
	Path      string `json:"path"`
}

type RefreshResponse struct {
	Discarded bool `json:"discarded"`
}

type ChangeResponse struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

type ChangeListResponse struct {
	Changes []ChangeResponse `json:"changes"`
}

type ProjectEffectResponse struct {
	ProjectID string             `json:"project_id"`
	Effects   map[string]float64 `json:"effects"`
}

type TaskResponse struct {
	Name  string `json:"name"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Valid bool   `json:"valid"`
}

type PortfolioSummaryResponse struct {
	ProjectCount        int                     `json:"project_count"`
	EffectByYear        map[string]float64      `json:"effect_by_year"`
	Projects            []ProjectEffectResponse `json:"projects"`
	AvgTargetConversion float64                 `json:"avg_target_conversion"`
	ConversionSamples   int                     `json:"conversion_samples"`
}

type ScheduleResponse struct {
	ProjectID string         `json:"project_id"`
	Tasks     []TaskResponse `json:"tasks"`
}

type StatusResponse struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type StatusListResponse struct {
	Statuses []StatusResponse `json:"statuses"`
}

func toProjectResponse(p *project.Project) ProjectResponse {
	descriptions := make(map[string]string, len(p.Sections))
	for name, desc := range p.Sections {
		descriptions[name] = desc
	}
	return ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Status:        string(p.Status),
		StatusLabel:   p.Status.Label(),
		Owner:         p.Owner,
		Department:    p.Department,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		File:          p.File,
		TargetRevenue: p.TargetRevenue,
		KeyMetrics:    p.KeyMetrics,
		Sections:      p.SectionNames(),
		Descriptions:  descriptions,
		CreatedAt:     formatTime(p.CreatedAt),
		UpdatedAt:     formatTime(p.UpdatedAt),
	}
}

func toSectionResponse(projectID, name string, lookup section.Lookup) SectionResponse {
	rows := make([][]string, 0, len(lookup.Record.Rows))
	rows = append(rows, lookup.Record.Rows...)
	columns := append([]string{}, lookup.Record.Columns...)
	return SectionResponse{
		ProjectID: projectID,
		Section:   name,
		Key:       lookup.Key.String(),
		Origin:    string(lookup.Origin),
		Notice:    lookup.Notice,
		Columns:   columns,
		Rows:      rows,
	}
}

func toChangeResponse(e changelog.Entry) ChangeResponse {
	return ChangeResponse{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		Timestamp: formatTime(e.Timestamp),
		User:      e.User,
		Action:    string(e.Action),
		Details:   e.Details,
	}
}

func toSummaryResponse(s section.Summary) PortfolioSummaryResponse {
	out := PortfolioSummaryResponse{
		ProjectCount:        s.ProjectCount,
		EffectByYear:        make(map[string]float64, len(s.EffectByYear)),
		Projects:            make([]ProjectEffectResponse, 0, len(s.Projects)),
		AvgTargetConversion: s.AvgTargetConversion,
		ConversionSamples:   s.ConversionSamples,
	}
	for year, v := range s.EffectByYear {
		out.EffectByYear[year] = v
	}
	for _, p := range s.Projects {
		effects := make(map[string]float64, len(p.Effects))
		for year, v := range p.Effects {
			effects[year] = v
		}
		out.Projects = append(out.Projects, ProjectEffectResponse{ProjectID: p.ProjectID, Effects: effects})
	}
	return out
}

func toTaskResponse(t section.Task) TaskResponse {
	out := TaskResponse{Name: t.Name, Valid: t.Valid}
	if !t.Start.IsZero() {
		out.Start = t.Start.Format(project.DateLayout)
	}
	if !t.End.IsZero() {
		out.End = t.End.Format(project.DateLayout)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
