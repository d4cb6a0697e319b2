package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/classgrep/internal/config"
	"github.com/standardbeagle/classgrep/internal/search"
	"github.com/standardbeagle/classgrep/internal/types"
	"github.com/standardbeagle/classgrep/testhelpers"
)

const serverSource = `package com.acme;

public class Server {
    private int port;

    void start() {
        System.out.println("starting " + port);
    }

    static class Handler {
        void handle() {
            System.out.println("handled");
        }
    }
}

class Helper {
}
`

func newProject(t *testing.T) *testhelpers.TestProject {
	p := testhelpers.NewTestProject(t)
	p.AddFile("src/com/acme/Server.java", serverSource)
	p.AddJavaClass("com.acme", "Util", "    static void log() { System.out.println(\"util\"); }\n")
	p.AddFile("scripts/run.py", "def main():\n    print('run')\n")
	return p
}

func openWorkspace(t *testing.T, cfg *config.Config) *Workspace {
	t.Helper()
	w, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func collectAll(t *testing.T, w *Workspace, req Request) []types.Match {
	t.Helper()
	s, err := w.Search(req)
	require.NoError(t, err)
	matches, done := s.Collect(context.Background(), 0)
	require.True(t, done)
	return matches
}

func TestOpen_ScansCorpus(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	assert.Equal(t, []string{
		"com.acme.Helper",
		"com.acme.Server",
		"com.acme.Server$Handler",
		"com.acme.Util",
		"scripts/run.py",
	}, w.Corpus().Names())
	assert.Equal(t, p.Root(), w.Root())
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := testhelpers.NewTestConfigBuilder(t.TempDir()).Build()
	cfg.Cache.Backend = "redis"
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testhelpers.NewTestConfigBuilder(t.TempDir() + "/missing").Build()
	_, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSearch_ResolvesEnclosingConstructs(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	matches := collectAll(t, w, Request{Pattern: "System.out"})
	require.Len(t, matches, 3)

	assert.Equal(t, "com.acme.Server", matches[0].Unit.RawName)
	assert.Equal(t, `System.out.println("starting " + port);`, matches[0].Line)
	assert.Equal(t, 7, matches[0].LineNumber)
	assert.Equal(t, types.NodeKindMethod, matches[0].Enclosing.Kind)
	assert.Equal(t, "com.acme.Server.start", matches[0].Enclosing.FullName)

	assert.Equal(t, "com.acme.Server", matches[1].Unit.RawName, "nested types are searched through their outer unit")
	assert.Equal(t, "com.acme.Server.Handler.handle", matches[1].Enclosing.FullName)

	assert.Equal(t, "com.acme.Util", matches[2].Unit.RawName)
	assert.Equal(t, "com.acme.Util.log", matches[2].Enclosing.FullName)
}

func TestSearch_ClassFilter(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	matches := collectAll(t, w, Request{Pattern: "System.out", Classes: []string{"Util"}})
	require.Len(t, matches, 1)
	assert.Equal(t, "com.acme.Util", matches[0].Unit.RawName)

	// Every unit outside the filter is still materialized once
	assert.EqualValues(t, 5, w.Materializations())
	assert.True(t, w.Cache().Stats().Entries >= 3)
}

func TestSearch_NestedClassFilterScansOuterText(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	matches := collectAll(t, w, Request{Pattern: "System.out", Classes: []string{"Handler"}})
	require.Len(t, matches, 2, "the filter selects the outer unit, so all of its text is searched")
	assert.Equal(t, "com.acme.Server", matches[0].Unit.RawName)
	assert.Equal(t, "com.acme.Server.Handler.handle", matches[1].Enclosing.FullName)
}

func TestSearch_FilterWithoutMatches(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	_, err := w.Search(Request{Pattern: "x", Classes: []string{"Servr"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMatchingClasses))

	var filterErr *FilterError
	require.True(t, errors.As(err, &filterErr))
	require.NotEmpty(t, filterErr.Suggestions)
	assert.Equal(t, "com.acme.Server", filterErr.Suggestions[0])
	assert.Contains(t, err.Error(), "did you mean")
}

func TestSearch_InvalidPattern(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	_, err := w.Search(Request{Pattern: ""})
	assert.Error(t, err)
	_, err = w.Search(Request{Pattern: "(", Options: search.Options{Regex: true}})
	assert.Error(t, err)
}

func TestSearch_Limit(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	s, err := w.Search(Request{Pattern: "println", Limit: 2})
	require.NoError(t, err)
	matches, done := s.Collect(context.Background(), 10)
	assert.Len(t, matches, 2)
	assert.True(t, done)
}

func TestClasses(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	names := func(units []types.Unit) []string {
		out := make([]string, len(units))
		for i, u := range units {
			out[i] = u.RawName
		}
		return out
	}

	assert.Equal(t, []string{"com.acme.Server", "com.acme.Util", "scripts/run.py"}, names(w.Classes("", false)))
	assert.Equal(t, []string{"com.acme.Server", "com.acme.Server$Handler"}, names(w.Classes("com.acme.Server*", true)))
}

func TestInvalidatePath(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	matches := collectAll(t, w, Request{Pattern: "util"})
	require.Len(t, matches, 1)

	p.AddJavaClass("com.acme", "Util", "    static void log() { System.out.println(\"utility\"); }\n")

	// Cached text wins until the path is invalidated
	matches = collectAll(t, w, Request{Pattern: "utility"})
	assert.Empty(t, matches)

	names := w.InvalidatePath("src/com/acme/Util.java")
	assert.Equal(t, []string{"com.acme.Util"}, names)
	_, ok := w.Store().Get("com.acme.Util")
	assert.False(t, ok)

	matches = collectAll(t, w, Request{Pattern: "utility"})
	require.Len(t, matches, 1)
	assert.Equal(t, "com.acme.Util.log", matches[0].Enclosing.FullName)

	assert.Empty(t, w.InvalidatePath("docs/readme.md"))
}

func TestRescan_PicksUpNewFiles(t *testing.T) {
	p := newProject(t)
	w := openWorkspace(t, testhelpers.NewTestConfigBuilder(p.Root()).Build())

	before, err := w.Search(Request{Pattern: "fresh"})
	require.NoError(t, err)

	p.AddJavaClass("com.acme", "Fresh", "    String s = \"fresh\";\n")
	require.NoError(t, w.Rescan(context.Background()))
	assert.Contains(t, w.Corpus().Names(), "com.acme.Fresh")

	old, _ := before.Collect(context.Background(), 0)
	assert.Empty(t, old, "a running session keeps its corpus")

	matches := collectAll(t, w, Request{Pattern: "fresh"})
	require.Len(t, matches, 1)
	assert.Equal(t, "com.acme.Fresh.s", matches[0].Enclosing.FullName)
}

func TestSQLiteCache_DropsStaleEntriesOnOpen(t *testing.T) {
	p := newProject(t)
	cfg := testhelpers.NewTestConfigBuilder(p.Root()).WithSQLiteCache().Build()

	w, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	matches := collectAll(t, w, Request{Pattern: "util"})
	require.Len(t, matches, 1)
	require.NoError(t, w.Close())

	p.AddJavaClass("com.acme", "Util", "    static void log() { System.out.println(\"changed\"); }\n")

	w = openWorkspace(t, cfg)
	_, ok := w.CachedText("src/com/acme/Util.java")
	assert.False(t, ok, "text persisted before the edit is dropped")
	text, ok := w.CachedText("src/com/acme/Server.java")
	require.True(t, ok, "unchanged files keep their persisted text")
	assert.True(t, strings.HasPrefix(text, "package com.acme;"))

	matches = collectAll(t, w, Request{Pattern: "changed"})
	assert.Len(t, matches, 1)
}
