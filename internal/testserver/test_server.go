// Package testserver runs the MCP server over HTTP against a throwaway data
// directory.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha367/smartPM/internal/app"
	"github.com/sha367/smartPM/internal/config"
	"github.com/sha367/smartPM/internal/mcp"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server *httptest.Server
	State  *app.State
	Config config.Config
}

// New starts a server whose stores and workbooks live under t.TempDir().
// configure may adjust the configuration before the state is built.
func New(t *testing.T, configure func(*config.Config)) *TestServer {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Transport.Mode = config.TransportHTTP
	cfg.Store.ProjectsPath = filepath.Join(dir, "projects.json")
	cfg.Store.ChangeLogPath = filepath.Join(dir, "changelog.json")
	cfg.Store.DBPath = filepath.Join(dir, "smartpm.db")
	cfg.Workbook.DataDir = dir
	cfg.Workbook.BackupDir = filepath.Join(dir, "backups")
	if configure != nil {
		configure(&cfg)
	}

	state, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	server := mcp.NewServer(mcp.Config{
		Services:      mcp.ServicesFrom(state),
		TransportMode: cfg.Transport.Mode,
	})
	httpServer := httptest.NewServer(mcp.NewHTTPHandler(server))

	t.Cleanup(func() {
		httpServer.Close()
		_ = state.Close()
	})

	return &TestServer{Server: httpServer, State: state, Config: cfg}
}

// Connect opens a client session. A non-empty user is sent with every
// request as the acting user.
func (ts *TestServer) Connect(t *testing.T, user string) *sdkmcp.ClientSession {
	t.Helper()

	httpClient := ts.Server.Client()
	if user != "" {
		httpClient = &http.Client{Transport: &userTransport{user: user, next: httpClient.Transport}}
	}
	transport := &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: httpClient,
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(context.Background(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

type userTransport struct {
	user string
	next http.RoundTripper
}

func (u *userTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(mcp.UserHeader, u.user)
	next := u.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}
