package testhelpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestProject writes an isolated source tree into a temporary directory
type TestProject struct {
	t     testing.TB
	root  string
	files map[string]string
}

// NewTestProject creates an empty project rooted in t.TempDir()
func NewTestProject(t testing.TB) *TestProject {
	t.Helper()
	return &TestProject{t: t, root: t.TempDir(), files: make(map[string]string)}
}

// Root returns the project directory
func (p *TestProject) Root() string {
	return p.root
}

// AddFile writes content to rel, creating parent directories
func (p *TestProject) AddFile(rel, content string) *TestProject {
	p.t.Helper()
	path := filepath.Join(p.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		p.t.Fatalf("failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		p.t.Fatalf("failed to write %s: %v", rel, err)
	}
	p.files[rel] = content
	return p
}

// AddJavaClass writes a class named after its file under src/<package path>
func (p *TestProject) AddJavaClass(pkg, name, body string) *TestProject {
	p.t.Helper()
	var sb strings.Builder
	if pkg != "" {
		fmt.Fprintf(&sb, "package %s;\n\n", pkg)
	}
	fmt.Fprintf(&sb, "public class %s {\n%s}\n", name, body)

	rel := "src/" + strings.ReplaceAll(pkg, ".", "/") + "/" + name + ".java"
	if pkg == "" {
		rel = "src/" + name + ".java"
	}
	return p.AddFile(rel, sb.String())
}

// Content returns what was written to rel
func (p *TestProject) Content(rel string) string {
	return p.files[rel]
}

// Remove deletes rel from disk
func (p *TestProject) Remove(rel string) {
	p.t.Helper()
	if err := os.Remove(filepath.Join(p.root, filepath.FromSlash(rel))); err != nil {
		p.t.Fatalf("failed to remove %s: %v", rel, err)
	}
	delete(p.files, rel)
}
