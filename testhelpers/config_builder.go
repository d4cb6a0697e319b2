// Package testhelpers provides shared utilities for testing classgrep
package testhelpers

import (
	"github.com/standardbeagle/classgrep/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults.
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(projectPath).
//		WithExclusions("generated/**").
//		WithLanguages("java").
//		Build()
type TestConfigBuilder struct {
	projectRoot string
	exclusions  []string
	inclusions  []string
	languages   []string
	backend     string
}

// NewTestConfigBuilder creates a config builder with safe defaults for a project path
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	return &TestConfigBuilder{
		projectRoot: projectRoot,
		exclusions: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/target/**",
			"**/build/**",
		},
		backend: config.CacheBackendMemory,
	}
}

// WithExclusions adds additional exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.exclusions = append(b.exclusions, patterns...)
	return b
}

// WithIncludePatterns sets the include patterns (replaces defaults)
func (b *TestConfigBuilder) WithIncludePatterns(patterns ...string) *TestConfigBuilder {
	b.inclusions = patterns
	return b
}

// WithLanguages restricts the corpus to the given languages
func (b *TestConfigBuilder) WithLanguages(langs ...string) *TestConfigBuilder {
	b.languages = langs
	return b
}

// WithSQLiteCache switches the cache backend to SQLite under the project root
func (b *TestConfigBuilder) WithSQLiteCache() *TestConfigBuilder {
	b.backend = config.CacheBackendSQLite
	return b
}

// Build creates the final test config with all settings
func (b *TestConfigBuilder) Build() *config.Config {
	cfg := config.Default(b.projectRoot)
	cfg.Project.Name = "test-project"
	cfg.Corpus.Include = b.inclusions
	cfg.Corpus.Exclude = b.exclusions
	cfg.Corpus.Languages = b.languages
	cfg.Corpus.RespectGitignore = false // Disabled for tests
	cfg.Corpus.Workers = 2              // Limited for predictable behavior
	cfg.Cache.Backend = b.backend
	cfg.Cache.MaxEntries = 100
	cfg.Search.MaxResults = 50
	cfg.Search.PageSize = 10
	cfg.Watch.DebounceMs = 10 // Fast debounce for tests
	return cfg
}
