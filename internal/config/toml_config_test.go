package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTOML_KeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := parseTOML([]byte(`
[corpus]
languages = ["java", "go"]
max_file_size = 1024

[watch]
enabled = true
`), "/work")
	require.NoError(t, err)

	assert.Equal(t, []string{"java", "go"}, cfg.Corpus.Languages)
	assert.Equal(t, int64(1024), cfg.Corpus.MaxFileSize)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 300, cfg.Watch.DebounceMs)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 500, cfg.Search.MaxResults)
}

func TestParseTOML_Invalid(t *testing.T) {
	_, err := parseTOML([]byte("[search\nmax_results = 1"), "/work")
	assert.Error(t, err)
}

func TestLoadTOML_Missing(t *testing.T) {
	cfg, err := LoadTOML(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}
