package mcp

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/repository"
)

// handler adapts domain services to MCP tools.
type handler struct {
	services Services
	logger   *slog.Logger
}

func registerTools(server *sdkmcp.Server, h *handler) {
	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List business cases, optionally filtered by status, owner or department",
	}, h.listProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get one business case with its sections",
	}, h.getProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a business case with the canonical sections",
	}, h.createProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project",
		Description: "Change project fields; omitted fields stay as they are",
	}, h.updateProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete a business case and, unless shared, its workbook",
	}, h.deleteProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_statuses",
		Description: "List lifecycle statuses L0-L5",
	}, h.listStatuses)

	// Sections
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_section",
		Description: "Get one section table of a project",
	}, h.getSection)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_cell",
		Description: "Set the text of one cell in a section",
	}, h.editCell)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "append_row",
		Description: "Append an empty row to a section",
	}, h.appendRow)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_row",
		Description: "Delete one row of a section",
	}, h.deleteRow)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "flush_project",
		Description: "Write every open section of a project to its backup workbook",
	}, h.flushProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "refresh_workbooks",
		Description: "Re-read workbooks from disk on next access",
	}, h.refreshWorkbooks)

	// Insights
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_changes",
		Description: "List change log entries, newest first",
	}, h.listChanges)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "portfolio_summary",
		Description: "Financial effect per year and average target conversion across projects",
	}, h.portfolioSummary)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_schedule",
		Description: "List schedule tasks of a project with date validity",
	}, h.getSchedule)
}

func (h *handler) listProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListProjectsParams) (*sdkmcp.CallToolResult, ProjectListResponse, error) {
	opts := project.ListOptions{Owner: in.Owner, Department: in.Department}
	if in.Status != "" {
		status, err := project.ParseStatus(in.Status)
		if err != nil {
			return nil, ProjectListResponse{}, toolError(err)
		}
		opts.Status = status
	}
	projects := h.services.Projects.List(ctx, opts)
	resp := ProjectListResponse{Projects: make([]ProjectResponse, 0, len(projects))}
	for i := range projects {
		resp.Projects = append(resp.Projects, toProjectResponse(&projects[i]))
	}
	return nil, resp, nil
}

func (h *handler) getProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
	proj, err := h.services.Projects.Get(ctx, in.ID)
	if err != nil {
		return nil, ProjectResponse{}, toolError(err)
	}
	return nil, toProjectResponse(proj), nil
}

func (h *handler) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
	req := project.CreateRequest{
		Name:          in.Name,
		Description:   in.Description,
		Owner:         in.Owner,
		Department:    in.Department,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		File:          in.File,
		TargetRevenue: in.TargetRevenue,
		KeyMetrics:    in.KeyMetrics,
		ExtraSections: in.ExtraSections,
	}
	if in.Status != "" {
		status, err := project.ParseStatus(in.Status)
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		req.Status = status
	}

	proj, err := h.services.Projects.Create(ctx, req)
	if err != nil {
		// Created but not persisted: still reported as a failure.
		return nil, ProjectResponse{}, toolError(err)
	}
	return nil, toProjectResponse(proj), nil
}

func (h *handler) updateProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateProjectParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
	req := project.UpdateRequest{
		Name:          in.Name,
		Description:   in.Description,
		Owner:         in.Owner,
		Department:    in.Department,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		File:          in.File,
		TargetRevenue: in.TargetRevenue,
		KeyMetrics:    in.KeyMetrics,
	}
	if in.Status != nil {
		status, err := project.ParseStatus(*in.Status)
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		req.Status = &status
	}

	proj, err := h.services.Workspace.UpdateProject(ctx, in.ID, req)
	if err != nil {
		return nil, ProjectResponse{}, toolError(err)
	}
	return nil, toProjectResponse(proj), nil
}

func (h *handler) deleteProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, DeleteProjectResponse, error) {
	_, err := h.services.Projects.Get(ctx, in.ID)
	existed := err == nil
	if err := h.services.Workspace.DeleteProject(ctx, in.ID); err != nil {
		return nil, DeleteProjectResponse{}, toolError(err)
	}
	return nil, DeleteProjectResponse{ID: in.ID, Deleted: existed}, nil
}

func (h *handler) listStatuses(_ context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, StatusListResponse, error) {
	infos := project.Statuses()
	resp := StatusListResponse{Statuses: make([]StatusResponse, 0, len(infos))}
	for _, info := range infos {
		resp.Statuses = append(resp.Statuses, StatusResponse{
			Code:        string(info.Code),
			Label:       info.Code.Label(),
			Name:        info.Name,
			Description: info.Description,
		})
	}
	return nil, resp, nil
}

func (h *handler) getSection(ctx context.Context, _ *sdkmcp.CallToolRequest, in SectionParams) (*sdkmcp.CallToolResult, SectionResponse, error) {
	if err := h.requireProject(ctx, in.ProjectID); err != nil {
		return nil, SectionResponse{}, err
	}
	lookup, err := h.services.Sections.Get(ctx, in.ProjectID, in.Section)
	if err != nil {
		return nil, SectionResponse{}, toolError(err)
	}
	return nil, toSectionResponse(in.ProjectID, in.Section, lookup), nil
}

func (h *handler) editCell(ctx context.Context, _ *sdkmcp.CallToolRequest, in EditCellParams) (*sdkmcp.CallToolResult, SectionResponse, error) {
	if err := h.requireProject(ctx, in.ProjectID); err != nil {
		return nil, SectionResponse{}, err
	}
	if err := h.services.Sections.EditCell(ctx, in.ProjectID, in.Section, in.Row, in.Column, in.Value); err != nil {
		return nil, SectionResponse{}, toolError(err)
	}
	return h.getSection(ctx, nil, SectionParams{ProjectID: in.ProjectID, Section: in.Section})
}

func (h *handler) appendRow(ctx context.Context, _ *sdkmcp.CallToolRequest, in SectionParams) (*sdkmcp.CallToolResult, RowResponse, error) {
	if err := h.requireProject(ctx, in.ProjectID); err != nil {
		return nil, RowResponse{}, err
	}
	row, err := h.services.Sections.AppendRow(ctx, in.ProjectID, in.Section)
	if err != nil {
		return nil, RowResponse{}, toolError(err)
	}
	return nil, RowResponse{ProjectID: in.ProjectID, Section: in.Section, Row: row}, nil
}

func (h *handler) deleteRow(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeleteRowParams) (*sdkmcp.CallToolResult, RowResponse, error) {
	if err := h.requireProject(ctx, in.ProjectID); err != nil {
		return nil, RowResponse{}, err
	}
	if err := h.services.Sections.DeleteRow(ctx, in.ProjectID, in.Section, in.Row); err != nil {
		return nil, RowResponse{}, toolError(err)
	}
	return nil, RowResponse{ProjectID: in.ProjectID, Section: in.Section, Row: in.Row}, nil
}

func (h *handler) flushProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectScopeParams) (*sdkmcp.CallToolResult, FlushResponse, error) {
	if err := h.requireProject(ctx, in.ProjectID); err != nil {
		return nil, FlushResponse{}, err
	}
	path, err := h.services.Sections.Flush(ctx, in.ProjectID)
	if err != nil {
		return nil, FlushResponse{}, toolError(err)
	}
	return nil, FlushResponse{ProjectID: in.ProjectID, Path: path}, nil
}

func (h *handler) refreshWorkbooks(_ context.Context, _ *sdkmcp.CallToolRequest, in RefreshWorkbooksParams) (*sdkmcp.CallToolResult, RefreshResponse, error) {
	h.services.Workspace.RefreshWorkbooks(in.Discard)
	return nil, RefreshResponse{Discarded: in.Discard}, nil
}

func (h *handler) listChanges(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListChangesParams) (*sdkmcp.CallToolResult, ChangeListResponse, error) {
	opts := changelog.ListOptions{ProjectID: in.ProjectID, Limit: in.Limit}
	if in.Action != "" {
		var action changelog.Action
		_ = action.UnmarshalText([]byte(in.Action))
		if !action.Valid() {
			return nil, ChangeListResponse{}, toolError(fmt.Errorf("%w: unknown action %q", repository.ErrInvalidInput, in.Action))
		}
		opts.Action = &action
	}
	entries, err := h.services.Changes.Query(ctx, opts)
	if err != nil {
		return nil, ChangeListResponse{}, toolError(err)
	}
	resp := ChangeListResponse{Changes: make([]ChangeResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Changes = append(resp.Changes, toChangeResponse(e))
	}
	return nil, resp, nil
}

func (h *handler) portfolioSummary(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, PortfolioSummaryResponse, error) {
	return nil, toSummaryResponse(h.services.Workspace.Summary(ctx)), nil
}

func (h *handler) getSchedule(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectScopeParams) (*sdkmcp.CallToolResult, ScheduleResponse, error) {
	if err := h.requireProject(ctx, in.ProjectID); err != nil {
		return nil, ScheduleResponse{}, err
	}
	tasks, err := h.services.Sections.ScheduleTasks(ctx, in.ProjectID)
	if err != nil {
		return nil, ScheduleResponse{}, toolError(err)
	}
	resp := ScheduleResponse{ProjectID: in.ProjectID, Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(t))
	}
	return nil, resp, nil
}

// requireProject rejects section operations on unregistered projects.
func (h *handler) requireProject(ctx context.Context, id string) error {
	if _, err := h.services.Projects.Get(ctx, id); err != nil {
		h.logger.Debug("section request for unknown project", "project_id", id)
		return toolError(err)
	}
	return nil
}
