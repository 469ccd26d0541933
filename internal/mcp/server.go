package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha367/smartPM/internal/app"
	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/domain/section"
	"github.com/sha367/smartPM/internal/logging"
)

// ProjectService defines registry operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, opts project.ListOptions) []project.Project
}

// SectionService defines section operations needed by MCP.
type SectionService interface {
	Get(ctx context.Context, projectID, name string) (section.Lookup, error)
	Sections(ctx context.Context, projectID string) []string
	EditCell(ctx context.Context, projectID, name string, row int, column, value string) error
	AppendRow(ctx context.Context, projectID, name string) (int, error)
	DeleteRow(ctx context.Context, projectID, name string, row int) error
	Flush(ctx context.Context, projectID string) (string, error)
	ScheduleTasks(ctx context.Context, projectID string) ([]section.Task, error)
}

// ChangeService defines change log reads needed by MCP.
type ChangeService interface {
	Query(ctx context.Context, opts changelog.ListOptions) ([]changelog.Entry, error)
}

// Workspace covers operations spanning several components.
type Workspace interface {
	UpdateProject(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error)
	DeleteProject(ctx context.Context, id string) error
	RefreshWorkbooks(discard bool)
	Summary(ctx context.Context) section.Summary
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects  ProjectService
	Sections  SectionService
	Changes   ChangeService
	Workspace Workspace
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "smartpm",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio serves one local operator; over HTTP each client names itself.
	if cfg.TransportMode == "stdio" {
		server.AddReceivingMiddleware(userMiddleware(false))
	} else {
		server.AddReceivingMiddleware(userMiddleware(true))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, &handler{services: cfg.Services, logger: cfg.Logger})

	return server
}

// ServicesFrom exposes the application state to the tool surface.
func ServicesFrom(s *app.State) Services {
	return Services{
		Projects:  s.Projects,
		Sections:  s.Sections,
		Changes:   s.Changes,
		Workspace: s,
	}
}
