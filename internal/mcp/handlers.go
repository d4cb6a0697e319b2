package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/classgrep/internal/debug"
	"github.com/standardbeagle/classgrep/internal/search"
	"github.com/standardbeagle/classgrep/internal/workspace"
)

// defaultClassListMax caps list_classes when the client gives no max
const defaultClassListMax = 500

// SearchCodeParams are the arguments of search_code. Unset mode flags fall
// back to the configured search defaults.
type SearchCodeParams struct {
	Pattern         string   `json:"pattern"`
	CaseInsensitive *bool    `json:"case_insensitive,omitempty"`
	Regex           *bool    `json:"regex,omitempty"`
	WholeWord       *bool    `json:"whole_word,omitempty"`
	Classes         []string `json:"classes,omitempty"`
	Limit           int      `json:"limit,omitempty"`
}

type SearchMoreParams struct {
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit,omitempty"`
}

type SearchCancelParams struct {
	SessionID string `json:"session_id"`
}

type ListClassesParams struct {
	Filter       string `json:"filter,omitempty"`
	IncludeInner bool   `json:"include_inner,omitempty"`
	Max          int    `json:"max,omitempty"`
}

func parseArgs(req *mcp.CallToolRequest, v interface{}) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func (s *Server) handleSearchCode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolSearchCode, func() (*mcp.CallToolResult, error) {
		var p SearchCodeParams
		if err := parseArgs(req, &p); err != nil {
			return createErrorResponse(ToolSearchCode, err, nil)
		}
		if strings.TrimSpace(p.Pattern) == "" {
			return createErrorResponse(ToolSearchCode, errors.New("pattern is required"), nil)
		}

		defaults := s.ws.Config().Search
		session, err := s.ws.Search(workspace.Request{
			Pattern: p.Pattern,
			Options: search.Options{
				CaseInsensitive: boolOr(p.CaseInsensitive, defaults.CaseInsensitive),
				Regex:           boolOr(p.Regex, defaults.Regex),
				WholeWord:       boolOr(p.WholeWord, defaults.WholeWord),
			},
			Classes: p.Classes,
			Limit:   s.maxTotal,
		})
		if err != nil {
			var filterErr *workspace.FilterError
			if errors.As(err, &filterErr) {
				return createErrorResponse(ToolSearchCode, err, map[string]interface{}{
					"suggestions": filterErr.Suggestions,
				})
			}
			return createErrorResponse(ToolSearchCode, err, nil)
		}

		entry := s.sessions.add(p.Pattern, session)
		debug.LogMCP("search_code %q -> session %s\n", p.Pattern, entry.id)
		return s.page(ctx, entry, p.Limit)
	})
}

func (s *Server) handleSearchMore(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolSearchMore, func() (*mcp.CallToolResult, error) {
		var p SearchMoreParams
		if err := parseArgs(req, &p); err != nil {
			return createErrorResponse(ToolSearchMore, err, nil)
		}

		entry, err := s.sessions.get(p.SessionID)
		if err != nil {
			return createErrorResponse(ToolSearchMore, fmt.Errorf("%w: %s", err, p.SessionID), nil)
		}
		return s.page(ctx, entry, p.Limit)
	})
}

func (s *Server) handleSearchCancel(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolSearchCancel, func() (*mcp.CallToolResult, error) {
		var p SearchCancelParams
		if err := parseArgs(req, &p); err != nil {
			return createErrorResponse(ToolSearchCancel, err, nil)
		}
		return createJSONResponse(map[string]interface{}{
			"session_id": p.SessionID,
			"cancelled":  s.sessions.remove(p.SessionID),
		})
	})
}

func (s *Server) handleListClasses(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolListClasses, func() (*mcp.CallToolResult, error) {
		var p ListClassesParams
		if err := parseArgs(req, &p); err != nil {
			return createErrorResponse(ToolListClasses, err, nil)
		}
		limit := p.Max
		if limit <= 0 {
			limit = defaultClassListMax
		}

		units := s.ws.Classes(p.Filter, p.IncludeInner)
		resp := ClassesResponse{Classes: make([]string, 0, min(len(units), limit)), Count: len(units)}
		for _, u := range units {
			if len(resp.Classes) == limit {
				resp.Truncated = true
				break
			}
			resp.Classes = append(resp.Classes, u.RawName)
		}
		return createJSONResponse(resp)
	})
}

// page collects the next page of entry. Finished sessions are released.
func (s *Server) page(ctx context.Context, entry *sessionEntry, limit int) (*mcp.CallToolResult, error) {
	if limit <= 0 {
		limit = s.pageSize
	}

	entry.mu.Lock()
	matches, done := entry.session.Collect(ctx, limit)
	progress, total := entry.session.Progress()
	found := entry.session.Found()
	entry.mu.Unlock()

	if done {
		s.sessions.remove(entry.id)
	}
	if err := ctx.Err(); err != nil && !done {
		debug.LogMCP("session %s interrupted at %d/%d: %v\n", entry.id, progress, total, err)
	}

	resp := SearchResponse{
		SessionID: entry.id,
		Pattern:   entry.pattern,
		Matches:   toMatchResults(matches),
		Found:     found,
		Done:      done,
		Progress:  progress,
		Total:     total,
	}
	if done {
		resp.SessionID = ""
	}
	return createJSONResponse(resp)
}
