package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/classgrep/internal/types"
)

// MatchResult is one match as returned to MCP clients
type MatchResult struct {
	Class         string `json:"class"`
	File          string `json:"file"`
	Line          string `json:"line"`
	LineNumber    int    `json:"line_number"`
	Offset        int    `json:"offset"`
	EnclosingKind string `json:"enclosing_kind"`
	Enclosing     string `json:"enclosing"`
}

// SearchResponse is returned by search_code and search_more
type SearchResponse struct {
	SessionID string        `json:"session_id"`
	Pattern   string        `json:"pattern"`
	Matches   []MatchResult `json:"matches"`
	Found     int           `json:"found"`
	Done      bool          `json:"done"`
	Progress  int           `json:"progress"`
	Total     int           `json:"total"`
}

// ClassesResponse is returned by list_classes
type ClassesResponse struct {
	Classes   []string `json:"classes"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated,omitempty"`
}

func toMatchResults(matches []types.Match) []MatchResult {
	out := make([]MatchResult, len(matches))
	for i, m := range matches {
		out[i] = MatchResult{
			Class:         m.Unit.RawName,
			File:          m.Unit.Path,
			Line:          m.Line,
			LineNumber:    m.LineNumber,
			Offset:        m.Offset,
			EnclosingKind: m.Enclosing.Kind.String(),
			Enclosing:     m.Enclosing.FullName,
		}
	}
	return out
}

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse creates a standardized error response for MCP tools.
// Tool errors are reported inside the result with IsError set so the client can see them.
func createErrorResponse(operation string, err error, extra map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	for k, v := range extra {
		errorData[k] = v
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}
