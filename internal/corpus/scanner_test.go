package corpus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/classgrep/internal/codemeta"
	"github.com/standardbeagle/classgrep/internal/types"
	"github.com/standardbeagle/classgrep/testhelpers"
)

const serverBody = `    private int port;

    void start() {
        System.out.println("starting");
    }

    static class Handler {
        void handle() {}
    }
`

func newJavaProject(t *testing.T) *testhelpers.TestProject {
	p := testhelpers.NewTestProject(t)
	p.AddFile("src/com/acme/Server.java", "package com.acme;\n\npublic class Server {\n"+serverBody+"}\n\nclass Helper {\n}\n")
	p.AddJavaClass("com.acme", "Util", "    static int twice(int x) { return 2 * x; }\n")
	p.AddJavaClass("gen", "Generated", "")
	p.AddFile("generated/gen/Generated.java", "package gen;\nclass Generated {}\n")
	p.AddFile("build/classes/Out.java", "class Out {}\n")
	p.AddFile("src/Empty.java", "  \n")
	p.AddFile("scripts/run.py", "def main():\n    print('run')\n")
	p.AddFile("notes.txt", "not code")
	p.AddFile(".gitignore", "generated\nsrc/gen\n")
	return p
}

func TestScanner_Scan(t *testing.T) {
	p := newJavaProject(t)
	cfg := testhelpers.NewTestConfigBuilder(p.Root()).Build()
	cfg.Corpus.RespectGitignore = true

	extractor := codemeta.NewExtractor()
	defer extractor.Close()

	corpus, err := NewScanner(p.Root(), cfg.Corpus, extractor).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"com.acme.Helper",
		"com.acme.Server",
		"com.acme.Server$Handler",
		"com.acme.Util",
		"scripts/run.py",
		"src/Empty.java",
	}, corpus.Names())

	for i, u := range corpus {
		assert.Equal(t, i, u.Position)
	}

	server, ok := corpus.Lookup("com.acme.Server")
	require.True(t, ok)
	assert.Equal(t, "Server", server.Name)
	assert.Equal(t, "src/com/acme/Server.java", server.Path)
	assert.Equal(t, types.LanguageJava, server.Language)
	assert.False(t, server.Inner)

	handler, ok := corpus.Lookup("com.acme.Server$Handler")
	require.True(t, ok)
	assert.True(t, handler.Inner)
	assert.Equal(t, "com.acme.Server", handler.Outer)
	assert.Equal(t, server.Path, handler.Path)

	helper, ok := corpus.Lookup("com.acme.Helper")
	require.True(t, ok)
	assert.True(t, helper.Inner, "secondary top-level types share the file's text")
	assert.Equal(t, "com.acme.Server", helper.Outer)

	empty, ok := corpus.Lookup("src/Empty.java")
	require.True(t, ok)
	assert.True(t, empty.NoCode)

	assert.Len(t, corpus.UnitsForPath("src/com/acme/Server.java"), 3)
}

func TestScanner_WithoutExtractor(t *testing.T) {
	p := newJavaProject(t)
	cfg := testhelpers.NewTestConfigBuilder(p.Root()).WithLanguages("java").Build()
	cfg.Corpus.RespectGitignore = true

	corpus, err := NewScanner(p.Root(), cfg.Corpus, nil).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/Empty.java",
		"src/com/acme/Server.java",
		"src/com/acme/Util.java",
	}, corpus.Names())
}

func TestScanner_GitignoreDisabled(t *testing.T) {
	p := newJavaProject(t)
	cfg := testhelpers.NewTestConfigBuilder(p.Root()).WithLanguages("java").Build()

	corpus, err := NewScanner(p.Root(), cfg.Corpus, nil).Scan(context.Background())
	require.NoError(t, err)
	assert.Contains(t, corpus.Names(), "generated/gen/Generated.java")
	assert.Contains(t, corpus.Names(), "src/gen/Generated.java")
	assert.NotContains(t, corpus.Names(), "build/classes/Out.java")
}

func TestScanner_Accepts(t *testing.T) {
	cfg := testhelpers.NewTestConfigBuilder(t.TempDir()).
		WithIncludePatterns("src/**").
		WithExclusions("**/*Test.java").
		Build()
	s := NewScanner(cfg.Project.Root, cfg.Corpus, nil)

	assert.True(t, s.Accepts("src/com/acme/Server.java"))
	assert.True(t, s.Accepts("src/tool.py"))
	assert.False(t, s.Accepts("lib/Server.java"), "outside include patterns")
	assert.False(t, s.Accepts("src/com/acme/ServerTest.java"))
	assert.False(t, s.Accepts("src/build/Out.java"))
	assert.False(t, s.Accepts("src/README.md"))
}

func TestScanner_MaxFileSize(t *testing.T) {
	p := testhelpers.NewTestProject(t)
	p.AddJavaClass("a", "Small", "")
	p.AddJavaClass("a", "Large", "    // padding padding padding padding padding\n")

	cfg := testhelpers.NewTestConfigBuilder(p.Root()).Build()
	cfg.Corpus.MaxFileSize = int64(len(p.Content("src/a/Small.java")))

	corpus, err := NewScanner(p.Root(), cfg.Corpus, nil).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a/Small.java"}, corpus.Names())
}

func TestScanner_Cancelled(t *testing.T) {
	p := newJavaProject(t)
	cfg := testhelpers.NewTestConfigBuilder(p.Root()).Build()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(p.Root(), cfg.Corpus, nil).Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
