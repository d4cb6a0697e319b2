// Package mcp exposes paged code search over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	cgdebug "github.com/standardbeagle/classgrep/internal/debug"
	"github.com/standardbeagle/classgrep/internal/version"
	"github.com/standardbeagle/classgrep/internal/workspace"
)

// Tool names
const (
	ToolSearchCode   = "search_code"
	ToolSearchMore   = "search_more"
	ToolSearchCancel = "search_cancel"
	ToolListClasses  = "list_classes"
)

// Server serves search tools for one workspace
type Server struct {
	ws       *workspace.Workspace
	server   *mcp.Server
	sessions *sessionStore
	pageSize int
	maxTotal int
}

// NewServer creates an MCP server over ws and registers its tools
func NewServer(ws *workspace.Workspace) *Server {
	cfg := ws.Config()
	s := &Server{
		ws: ws,
		sessions: newSessionStore(
			time.Duration(cfg.MCP.SessionTTLMinutes)*time.Minute,
			cfg.MCP.MaxSessions,
		),
		pageSize: cfg.Search.PageSize,
		maxTotal: cfg.Search.MaxResults,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "classgrep",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        ToolSearchCode,
		Description: "Search the source text of every class in the project. Returns the first page of matches with their enclosing method or field, and a session_id for search_more.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pattern": {
					Type:        "string",
					Description: "Text to find (a regular expression when regex is true)",
				},
				"case_insensitive": {
					Type:        "boolean",
					Description: "Ignore case",
				},
				"regex": {
					Type:        "boolean",
					Description: "Treat pattern as a regular expression",
				},
				"whole_word": {
					Type:        "boolean",
					Description: "Only match whole words",
				},
				"classes": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Only search these classes: exact names, simple names or globs such as \"com.acme.**\"",
				},
				"limit": {
					Type:        "integer",
					Description: "Matches per page",
				},
			},
			Required: []string{"pattern"},
		},
	}, s.handleSearchCode)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolSearchMore,
		Description: "Fetch the next page of a search_code session. The search resumes exactly where the previous page stopped.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"session_id": {
					Type:        "string",
					Description: "Session id returned by search_code",
				},
				"limit": {
					Type:        "integer",
					Description: "Matches per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleSearchMore)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolSearchCancel,
		Description: "Discard a search session that is no longer needed.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"session_id": {
					Type:        "string",
					Description: "Session id returned by search_code",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleSearchCancel)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolListClasses,
		Description: "List the classes (searchable units) of the project.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"filter": {
					Type:        "string",
					Description: "Exact name, simple name or glob such as \"com.acme.*\"",
				},
				"include_inner": {
					Type:        "boolean",
					Description: "Include nested classes",
				},
				"max": {
					Type:        "integer",
					Description: "Maximum names to return",
				},
			},
		},
	}, s.handleListClasses)
}

// recoverFromPanic turns a panicking handler into a tool error
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			cgdebug.LogMCP("PANIC RECOVERED in %s: %v\n%s\n", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r), nil)
		}
	}()
	return handler()
}

// Start serves over stdio until ctx is done or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	cgdebug.LogMCP("starting MCP server for %s (%d units)\n", s.ws.Root(), len(s.ws.Corpus()))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves one session over t; used with in-memory transports
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

// Sessions returns the number of live search sessions
func (s *Server) Sessions() int {
	return s.sessions.len()
}
