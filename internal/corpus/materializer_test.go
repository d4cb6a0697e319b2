package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/classgrep/internal/codemeta"
	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
	"github.com/standardbeagle/classgrep/internal/types"
	"github.com/standardbeagle/classgrep/testhelpers"
)

func scanProject(t *testing.T, p *testhelpers.TestProject, extractor *codemeta.Extractor) types.Corpus {
	t.Helper()
	cfg := testhelpers.NewTestConfigBuilder(p.Root()).Build()
	cfg.Corpus.RespectGitignore = true
	corpus, err := NewScanner(p.Root(), cfg.Corpus, extractor).Scan(context.Background())
	require.NoError(t, err)
	return corpus
}

func TestSourceMaterializer_Materialize(t *testing.T) {
	p := newJavaProject(t)
	extractor := codemeta.NewExtractor()
	defer extractor.Close()
	corpus := scanProject(t, p, extractor)

	cache := testhelpers.NewMapCache(nil)
	store := codemeta.NewStore(extractor, cache)
	m := NewSourceMaterializer(p.Root(), corpus, cache, store, 0)

	server, _ := corpus.Lookup("com.acme.Server")
	text, err := m.Materialize(context.Background(), server)
	require.NoError(t, err)
	assert.Equal(t, p.Content("src/com/acme/Server.java"), text)
	assert.True(t, cache.Has("com.acme.Server"))

	md, ok := store.Get("com.acme.Server")
	require.True(t, ok, "materialization builds position metadata")
	assert.Equal(t, "com.acme", md.Package)
	assert.EqualValues(t, 1, m.Count())
}

func TestSourceMaterializer_InnerUnitUsesOuterText(t *testing.T) {
	p := newJavaProject(t)
	extractor := codemeta.NewExtractor()
	defer extractor.Close()
	corpus := scanProject(t, p, extractor)

	cache := testhelpers.NewMapCache(nil)
	m := NewSourceMaterializer(p.Root(), corpus, cache, nil, 0)

	handler, ok := corpus.Lookup("com.acme.Server$Handler")
	require.True(t, ok)
	text, err := m.Materialize(context.Background(), handler)
	require.NoError(t, err)
	assert.Equal(t, p.Content("src/com/acme/Server.java"), text)
	assert.True(t, cache.Has("com.acme.Server"), "text is cached under the owning unit")
	assert.False(t, cache.Has("com.acme.Server$Handler"))

	orphan := types.Unit{RawName: "x.Gone$Inner", Outer: "x.Gone", Inner: true}
	_, err = m.Materialize(context.Background(), orphan)
	var matErr *cgerrors.MaterializationError
	assert.True(t, errors.As(err, &matErr))
}

func TestSourceMaterializer_Failures(t *testing.T) {
	p := testhelpers.NewTestProject(t)
	p.AddFile("a/Big.java", "class Big { int x = 1; }\n")
	p.AddFile("a/Blob.java", "\x00\x01\x02\x03binary")
	root := p.Root()

	corpus := types.Corpus{
		{RawName: "a.Big", Name: "Big", Path: "a/Big.java", Language: types.LanguageJava},
		{RawName: "a.Blob", Name: "Blob", Path: "a/Blob.java", Language: types.LanguageJava},
		{RawName: "a.Missing", Name: "Missing", Path: "a/Missing.java", Language: types.LanguageJava},
	}
	cache := testhelpers.NewMapCache(nil)
	m := NewSourceMaterializer(root, corpus, cache, nil, 10)
	ctx := context.Background()

	_, err := m.Materialize(ctx, corpus[0])
	require.Error(t, err)
	var fileErr *cgerrors.FileError
	assert.True(t, errors.As(err, &fileErr), "oversized files report a file error")

	m = NewSourceMaterializer(root, corpus, cache, nil, 0)
	_, err = m.Materialize(ctx, corpus[1])
	assert.ErrorIs(t, err, cgerrors.ErrBinaryContent)

	_, err = m.Materialize(ctx, corpus[2])
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.Zero(t, cache.Len(), "failed units are never cached")
}

func TestSourceMaterializer_Cancelled(t *testing.T) {
	p := testhelpers.NewTestProject(t)
	p.AddJavaClass("a", "A", "")
	corpus := types.Corpus{{RawName: "a.A", Name: "A", Path: "src/a/A.java", Language: types.LanguageJava}}
	m := NewSourceMaterializer(p.Root(), corpus, nil, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Materialize(ctx, corpus[0])
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.Count())

	text, err := m.Materialize(context.Background(), corpus[0])
	require.NoError(t, err)
	assert.Equal(t, p.Content("src/a/A.java"), text)
	_, statErr := os.Stat(filepath.Join(p.Root(), "src/a/A.java"))
	assert.NoError(t, statErr)
}
