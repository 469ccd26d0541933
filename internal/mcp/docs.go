package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `smartpm tracks business cases: Projects → Sections → Change log.

Core concepts:
- Project: one business case with a lifecycle status L0 (Idea) to L5 (Realized) and an optional xlsx workbook.
- Section: one table of a project (a. details, b. financial effect, c. supporting calculations, d. schedule, e. effect monitoring, f. initiative status, or a custom one).
- Change log: every create, edit and delete is recorded newest first.

Default workflow:
1) Orient: list_projects, then get_project for the sections a project carries.
2) Read: get_section returns columns and rows. origin=placeholder means no data exists yet.
3) Edit: edit_cell / append_row / delete_row change the in-memory section only.
4) Persist: flush_project writes every open section of a project to its backup workbook.
5) Audit: list_changes shows who changed what.

Pass the acting user via the X-SmartPM-User header (HTTP) or _meta.user (stdio).

Docs:
- smartpm://docs/sections (section layout and column conventions)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "smartpm://docs/sections",
		Name:        "docs_sections",
		Title:       "Business case sections",
		Description: "Canonical workbook sheets, synthetic column names and the columns used by rollups.",
		Content: `# Business case sections

Each project workbook carries up to six canonical sheets, in this order:

| Sheet | Contents |
|---|---|
| a. Детали инициативы | Initiative details |
| b. Финансовое влияние | Financial effect per year |
| c. Поддерживающие расчеты | Supporting calculations |
| d. Диаграмма Ганта | Schedule |
| e. Мониторинг эффекта | Effect monitoring |
| f. Статус инициатив | Initiative status |

Custom sections may be added when a project is created.

## Column names

Blank, numeric or "Unnamed" headers are replaced with a synthetic name
<Prefix>_<position>, 1-based. The prefix is Field for a., Finance for b. and
Column elsewhere. Four-digit year headers such as 2025 are kept as they are.

## Lookup order

A section is read from the project's own workbook first, then from the shared
workbook, and otherwise shown as a one-row template (origin=placeholder).
Edits always land on the project's own copy.

## Rollups

- Financial effect: first row of b., columns 2025, 2026 and 2027, summed across projects.
- Target conversion: first row of c., column "Будущее состояние"; a trailing % is allowed.
- Schedule: d. columns Задача, Начало and Конец; dates are YYYY-MM-DD.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
