package types

import (
	"fmt"
	"strings"
)

// Common system-wide constants
const (
	// File size limits
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB per file
	// Rationale: generated sources larger than this are rarely worth
	// searching and keep a single materialized unit bounded in memory.

	// Binary detection sample size
	BinaryPreCheckBytes = 512 // Number of bytes inspected for binary content

	// Default result limits
	DefaultMaxResults = 500
	DefaultPageSize   = 50
)

// Language identifies the source language of a unit
type Language string

const (
	LanguageJava       Language = "java"
	LanguageGo         Language = "go"
	LanguageCSharp     Language = "csharp"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageRust       Language = "rust"
	LanguageCpp        Language = "cpp"
	LanguagePHP        Language = "php"
	LanguageZig        Language = "zig"
	LanguageUnknown    Language = ""
)

// Unit is one searchable compilation item of a corpus (a class, or a source
// file for languages without nested units).
type Unit struct {
	RawName  string   // Stable identity and cache key (e.g. "com.acme.Server" or "com.acme.Server$Handler")
	Name     string   // Short display name
	Path     string   // Backing source file
	Language Language // Source language
	Outer    string   // RawName of the outer unit when Inner is set
	Inner    bool     // Nested unit: its text lives in the outer unit
	NoCode   bool     // Nothing to materialize (empty or binary source)
	Position int      // Ordering position within its corpus
}

// String returns the unit's raw name
func (u Unit) String() string {
	return u.RawName
}

// TopLevel returns the raw name of the unit that owns this unit's text
func (u Unit) TopLevel() string {
	if u.Inner && u.Outer != "" {
		return u.Outer
	}
	return u.RawName
}

// Package returns the dotted package prefix of a Java style raw name
func (u Unit) Package() string {
	name := u.TopLevel()
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 && !strings.Contains(name, "/") {
		return name[:idx]
	}
	return ""
}

// Corpus is an ordered, immutable-for-a-session sequence of units
type Corpus []Unit

// Len returns the number of units
func (c Corpus) Len() int {
	return len(c)
}

// Names returns the raw names of all units in corpus order
func (c Corpus) Names() []string {
	names := make([]string, len(c))
	for i, u := range c {
		names[i] = u.RawName
	}
	return names
}

// Lookup finds a unit by raw name
func (c Corpus) Lookup(rawName string) (Unit, bool) {
	for _, u := range c {
		if u.RawName == rawName {
			return u, true
		}
	}
	return Unit{}, false
}

// UnitsForPath returns every unit backed by the given source file
func (c Corpus) UnitsForPath(path string) []Unit {
	var units []Unit
	for _, u := range c {
		if u.Path == path {
			units = append(units, u)
		}
	}
	return units
}

// NodeKind is the kind of a named construct
type NodeKind uint8

const (
	NodeKindUnit NodeKind = iota // The unit itself, used as fallback enclosing node
	NodeKindClass
	NodeKindInterface
	NodeKindEnum
	NodeKindRecord
	NodeKindAnnotation
	NodeKindMethod
	NodeKindConstructor
	NodeKindField
	NodeKindFunction
	NodeKindStruct
	NodeKindTrait
	NodeKindModule
	NodeKindNamespace
	NodeKindType
	NodeKindProperty
)

var nodeKindNames = [...]string{
	NodeKindUnit:        "unit",
	NodeKindClass:       "class",
	NodeKindInterface:   "interface",
	NodeKindEnum:        "enum",
	NodeKindRecord:      "record",
	NodeKindAnnotation:  "annotation",
	NodeKindMethod:      "method",
	NodeKindConstructor: "constructor",
	NodeKindField:       "field",
	NodeKindFunction:    "function",
	NodeKindStruct:      "struct",
	NodeKindTrait:       "trait",
	NodeKindModule:      "module",
	NodeKindNamespace:   "namespace",
	NodeKindType:        "type",
	NodeKindProperty:    "property",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

// IsType reports whether the kind declares a type that can contain members
func (k NodeKind) IsType() bool {
	switch k {
	case NodeKindClass, NodeKindInterface, NodeKindEnum, NodeKindRecord,
		NodeKindAnnotation, NodeKindStruct, NodeKindTrait:
		return true
	}
	return false
}

// ParseNodeKind converts a capture or display name back into a NodeKind
func ParseNodeKind(s string) (NodeKind, bool) {
	for i, name := range nodeKindNames {
		if name == s {
			return NodeKind(i), true
		}
	}
	return NodeKindUnit, false
}

// Node is a named construct of a unit's text, identified by its byte span
type Node struct {
	Kind     NodeKind
	Name     string // Simple name
	FullName string // Dotted name including enclosing types
	Unit     string // RawName of the owning unit
	Start    int    // Byte offset of the first byte (inclusive)
	End      int    // Byte offset past the last byte (exclusive)
}

// Covers reports whether the node's span contains offset
func (n Node) Covers(offset int) bool {
	return offset >= n.Start && offset < n.End
}

// Span returns the length of the node in bytes
func (n Node) Span() int {
	return n.End - n.Start
}

func (n Node) String() string {
	if n.FullName != "" {
		return n.Kind.String() + " " + n.FullName
	}
	return n.Kind.String() + " " + n.Name
}

// UnitNode returns the node representing the unit as a whole
func UnitNode(u Unit) Node {
	return Node{
		Kind:     NodeKindUnit,
		Name:     u.Name,
		FullName: u.RawName,
		Unit:     u.RawName,
	}
}

// NodeRef references a node inside a unit's position metadata
type NodeRef struct {
	Unit  string
	Index int
}
