package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearClassgrepEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvRoot, EnvCache, EnvCachePath, EnvMaxResults, EnvLogFile, EnvWatch} {
		t.Setenv(key, "")
	}
}

func TestApplyEnv_DotEnvFile(t *testing.T) {
	clearClassgrepEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte(
		"CLASSGREP_CACHE=sqlite\nCLASSGREP_CACHE_PATH=/tmp/cg.db\nCLASSGREP_MAX_RESULTS=12\nCLASSGREP_WATCH=yes\n"), 0o644))

	cfg := Default(dir)
	require.NoError(t, ApplyEnv(cfg, dir))

	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, "/tmp/cg.db", cfg.Cache.Path)
	assert.Equal(t, 12, cfg.Search.MaxResults)
	assert.True(t, cfg.Watch.Enabled)
}

func TestApplyEnv_ProcessEnvWins(t *testing.T) {
	clearClassgrepEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("CLASSGREP_MAX_RESULTS=12\n"), 0o644))
	t.Setenv(EnvMaxResults, "99")
	t.Setenv(EnvRoot, "sub")

	cfg := Default(dir)
	require.NoError(t, ApplyEnv(cfg, dir))

	assert.Equal(t, 99, cfg.Search.MaxResults)
	assert.Equal(t, filepath.Join(dir, "sub"), cfg.Project.Root)
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	clearClassgrepEnv(t)
	t.Setenv(EnvMaxResults, "many")

	cfg := Default(t.TempDir())
	err := ApplyEnv(cfg, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.max_results")
}

func TestApplyEnv_NoFile(t *testing.T) {
	clearClassgrepEnv(t)
	cfg := Default("/x")
	before := *cfg

	require.NoError(t, ApplyEnv(cfg, t.TempDir()))
	assert.Equal(t, before.Search, cfg.Search)
	assert.Equal(t, before.Cache, cfg.Cache)
}
