package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha367/smartPM/internal/domain/changelog"
)

// UserHeader names the acting user over HTTP.
const UserHeader = "X-SmartPM-User"

// userMeta names the acting user in request metadata.
const userMeta = "user"

// userMiddleware labels the request context with the acting user so change
// log entries carry it. Requests without a label fall back to the configured
// default user.
func userMiddleware(fromHeader bool) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if user := requestUser(req, fromHeader); user != "" {
				ctx = changelog.WithUser(ctx, user)
			}
			return next(ctx, method, req)
		}
	}
}

func requestUser(req sdkmcp.Request, fromHeader bool) string {
	if req == nil {
		return ""
	}
	var user string
	if fromHeader {
		if extra := req.GetExtra(); extra != nil && extra.Header != nil {
			user = extra.Header.Get(UserHeader)
		}
	}

	// Some notifications (like "initialized") carry nil params; GetMeta on
	// a nil underlying value panics.
	if user == "" {
		if params := req.GetParams(); params != nil {
			func() {
				defer func() { recover() }()
				if meta := params.GetMeta(); meta != nil {
					if v, ok := meta[userMeta].(string); ok {
						user = v
					}
				}
			}()
		}
	}
	return strings.TrimSpace(user)
}
