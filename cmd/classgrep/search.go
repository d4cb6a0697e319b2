package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/standardbeagle/classgrep/internal/search"
	"github.com/standardbeagle/classgrep/internal/types"
	"github.com/standardbeagle/classgrep/internal/workspace"

	"github.com/urfave/cli/v2"
)

// jsonMatch is the --json output record
type jsonMatch struct {
	Class         string `json:"class"`
	File          string `json:"file"`
	LineNumber    int    `json:"line_number"`
	Offset        int    `json:"offset"`
	EnclosingKind string `json:"enclosing_kind"`
	Enclosing     string `json:"enclosing"`
	Line          string `json:"line"`
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: classgrep search <pattern>")
	}
	pattern := c.Args().First()

	ws, err := openWorkspace(c.Context, c)
	if err != nil {
		return err
	}
	defer ws.Close()

	cfg := ws.Config()
	limit := c.Int("max-results")
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}

	opts := search.Options{
		CaseInsensitive: cfg.Search.CaseInsensitive || c.Bool("case-insensitive"),
		Regex:           cfg.Search.Regex || c.Bool("regex"),
		WholeWord:       cfg.Search.WholeWord || c.Bool("word-regexp"),
	}

	req := workspace.Request{
		Pattern: pattern,
		Options: opts,
		Classes: c.StringSlice("class"),
		Limit:   limit,
	}
	if c.Bool("verbose") {
		req.OnProgress = newProgressPrinter(c.App.ErrWriter)
	}

	session, err := ws.Search(req)
	if err != nil {
		var filterErr *workspace.FilterError
		if errors.As(err, &filterErr) && len(filterErr.Suggestions) > 0 {
			fmt.Fprintf(c.App.ErrWriter, "No class matches %s. Did you mean:\n", strings.Join(filterErr.Patterns, ", "))
			for _, s := range filterErr.Suggestions {
				fmt.Fprintf(c.App.ErrWriter, "  %s\n", s)
			}
		}
		return err
	}

	asJSON := c.Bool("json")
	enc := json.NewEncoder(c.App.Writer)
	pageSize := max(cfg.Search.PageSize, 1)
	for {
		matches, done := session.Collect(c.Context, pageSize)
		for _, m := range matches {
			if asJSON {
				if err := enc.Encode(toJSONMatch(m)); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintln(c.App.Writer, formatMatch(m))
		}
		if done {
			break
		}
		if err := c.Context.Err(); err != nil {
			progress, total := session.Progress()
			return fmt.Errorf("search interrupted after %d of %d units: %w", progress, total, err)
		}
	}

	if c.Bool("verbose") {
		progress, total := session.Progress()
		fmt.Fprintf(c.App.ErrWriter, "\n%d matches in %d/%d units (%v)\n",
			session.Found(), progress, total, session.Elapsed().Round(time.Millisecond))
	}
	return nil
}

// formatMatch renders "Unit [kind name] line: text"; the bracket is omitted
// when the match has no construct finer than its unit
func formatMatch(m types.Match) string {
	var sb strings.Builder
	sb.WriteString(m.Unit.RawName)
	if m.HasConstruct() {
		fmt.Fprintf(&sb, " [%s %s]", m.Enclosing.Kind, m.Enclosing.FullName)
	}
	fmt.Fprintf(&sb, " %d: %s", m.LineNumber, m.Line)
	return sb.String()
}

func toJSONMatch(m types.Match) jsonMatch {
	return jsonMatch{
		Class:         m.Unit.RawName,
		File:          m.Unit.Path,
		LineNumber:    m.LineNumber,
		Offset:        m.Offset,
		EnclosingKind: m.Enclosing.Kind.String(),
		Enclosing:     m.Enclosing.FullName,
		Line:          m.Line,
	}
}

// newProgressPrinter reports the unit index on w each time it advances
func newProgressPrinter(w io.Writer) func(progress, total int) {
	last := -1
	return func(progress, total int) {
		if progress == last {
			return
		}
		last = progress
		fmt.Fprintf(w, "\r[%d/%d]", progress, total)
	}
}

func classesCommand(c *cli.Context) error {
	ws, err := openWorkspace(c.Context, c)
	if err != nil {
		return err
	}
	defer ws.Close()

	for _, u := range ws.Classes(c.Args().First(), c.Bool("inner")) {
		fmt.Fprintln(c.App.Writer, u.RawName)
	}
	return nil
}
