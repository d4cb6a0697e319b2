// Package codemeta builds and serves the position index: for each unit, the
// byte spans of its named constructs.
package codemeta

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/classgrep/internal/debug"
	"github.com/standardbeagle/classgrep/internal/types"
)

// Metadata is the construct layout of one unit's text
type Metadata struct {
	Unit    string
	Package string       // Java package, empty elsewhere
	Nodes   []types.Node // Ordered by Start, enclosing nodes before nested ones
	Types   []TypeDecl   // Declared types in source order
}

// TypeDecl is a declared type and its nesting chain
type TypeDecl struct {
	Name     string // Simple name
	Chain    string // Names from the outermost type joined by '$' (e.g. "Server$Handler")
	TopLevel bool
	Kind     types.NodeKind
}

// Extractor parses unit text with tree-sitter and collects construct spans.
// Parsers are created lazily per language. Extract is safe for concurrent use;
// calls are serialized because tree-sitter parsers are not goroutine safe.
type Extractor struct {
	mu          sync.Mutex
	parsers     map[types.Language]*tree_sitter.Parser
	queries     map[types.Language]*tree_sitter.Query
	initialized map[types.Language]bool
}

// NewExtractor creates an extractor with no parsers loaded
func NewExtractor() *Extractor {
	return &Extractor{
		parsers:     make(map[types.Language]*tree_sitter.Parser),
		queries:     make(map[types.Language]*tree_sitter.Query),
		initialized: make(map[types.Language]bool),
	}
}

// Supports reports whether lang has a construct grammar
func (e *Extractor) Supports(lang types.Language) bool {
	_, ok := languageSpecs[lang]
	return ok
}

// ensureLanguage initializes the parser and query for lang on first use.
// Caller holds e.mu.
func (e *Extractor) ensureLanguage(lang types.Language) bool {
	if e.initialized[lang] {
		return e.queries[lang] != nil
	}
	e.initialized[lang] = true

	spec, ok := languageSpecs[lang]
	if !ok {
		return false
	}

	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(spec.grammar())
	if err := parser.SetLanguage(language); err != nil {
		debug.LogCorpus("failed to load %s grammar: %v\n", lang, err)
		parser.Close()
		return false
	}

	query, _ := tree_sitter.NewQuery(language, spec.query)
	// Check the query itself; the binding can return a typed nil error
	if query == nil {
		debug.LogCorpus("failed to compile %s construct query\n", lang)
		parser.Close()
		return false
	}

	e.parsers[lang] = parser
	e.queries[lang] = query
	return true
}

// Extract parses content and returns its constructs. Unsupported languages
// yield empty metadata.
func (e *Extractor) Extract(unit string, lang types.Language, content []byte) (md *Metadata, err error) {
	md = &Metadata{Unit: unit}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ensureLanguage(lang) {
		return md, nil
	}
	parser := e.parsers[lang]
	query := e.queries[lang]

	defer func() {
		if r := recover(); r != nil {
			debug.LogCorpus("TREE-SITTER PANIC in unit %s: %v\n", unit, r)
			md = &Metadata{Unit: unit}
			err = fmt.Errorf("parse of %s panicked: %v", unit, r)
		}
	}()

	// Tree-sitter may touch the input buffer through CGO; parse a private copy
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := parser.Parse(buf, nil)
	if tree == nil {
		return md, fmt.Errorf("parse of %s returned no tree", unit)
	}
	defer tree.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(query, tree.RootNode(), buf)
	captureNames := query.CaptureNames()

	type span struct {
		start, end int
		kind       types.NodeKind
	}
	seen := make(map[span]bool)
	var nodes []types.Node

	for match := matches.Next(); match != nil; match = matches.Next() {
		var name string
		for _, c := range match.Captures {
			if strings.HasSuffix(captureNames[c.Index], ".name") {
				name = string(buf[c.Node.StartByte():c.Node.EndByte()])
			}
		}

		for _, c := range match.Captures {
			captureName := captureNames[c.Index]
			if captureName == "package" {
				md.Package = packageName(string(buf[c.Node.StartByte():c.Node.EndByte()]))
				continue
			}
			kind, ok := types.ParseNodeKind(captureName)
			if !ok || name == "" {
				continue
			}
			s := span{int(c.Node.StartByte()), int(c.Node.EndByte()), kind}
			if seen[s] {
				continue
			}
			seen[s] = true
			nodes = append(nodes, types.Node{
				Kind:  kind,
				Name:  name,
				Unit:  unit,
				Start: s.start,
				End:   s.end,
			})
		}
	}

	md.Nodes, md.Types = nest(nodes, md.Package)
	return md, nil
}

// nest orders nodes outermost first, fills FullName from the enclosing
// constructs and turns functions declared inside types into methods.
func nest(nodes []types.Node, pkg string) ([]types.Node, []TypeDecl) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Start != nodes[j].Start {
			return nodes[i].Start < nodes[j].Start
		}
		return nodes[i].End > nodes[j].End
	})

	var decls []TypeDecl
	var stack []int // indexes of open enclosing nodes
	chains := make(map[int]string)

	for i := range nodes {
		for len(stack) > 0 && nodes[stack[len(stack)-1]].End <= nodes[i].Start {
			stack = stack[:len(stack)-1]
		}

		parent := -1
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
		}

		n := &nodes[i]
		switch {
		case parent >= 0:
			n.FullName = nodes[parent].FullName + "." + n.Name
			if n.Kind == types.NodeKindFunction && nodes[parent].Kind.IsType() {
				n.Kind = types.NodeKindMethod
			}
		case pkg != "":
			n.FullName = pkg + "." + n.Name
		default:
			n.FullName = n.Name
		}

		if n.Kind.IsType() {
			chain := n.Name
			if outer := enclosingType(nodes, stack); outer >= 0 {
				chain = chains[outer] + "$" + n.Name
			}
			chains[i] = chain
			decls = append(decls, TypeDecl{
				Name:     n.Name,
				Chain:    chain,
				TopLevel: enclosingType(nodes, stack) < 0,
				Kind:     n.Kind,
			})
		}

		stack = append(stack, i)
	}
	return nodes, decls
}

func enclosingType(nodes []types.Node, stack []int) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if nodes[stack[i]].Kind.IsType() {
			return stack[i]
		}
	}
	return -1
}

// packageName extracts "a.b.c" from a "package a.b.c;" clause
func packageName(clause string) string {
	clause = strings.TrimSpace(clause)
	clause = strings.TrimPrefix(clause, "package")
	clause = strings.TrimSuffix(strings.TrimSpace(clause), ";")
	return strings.Join(strings.Fields(clause), "")
}

// Close releases all parsers and queries
func (e *Extractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for lang, p := range e.parsers {
		p.Close()
		delete(e.parsers, lang)
	}
	for lang, q := range e.queries {
		q.Close()
		delete(e.queries, lang)
	}
	e.initialized = make(map[types.Language]bool)
}
