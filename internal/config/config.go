package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/standardbeagle/classgrep/internal/types"
)

// Config file names looked up in the project root (and the home directory for KDL)
const (
	KDLFileName  = ".classgrep.kdl"
	TOMLFileName = ".classgrep.toml"
	EnvFileName  = ".env"
)

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
)

type Config struct {
	Version int     `toml:"version"`
	Project Project `toml:"project"`
	Corpus  Corpus  `toml:"corpus"`
	Cache   Cache   `toml:"cache"`
	Search  Search  `toml:"search"`
	Watch   Watch   `toml:"watch"`
	Logging Logging `toml:"logging"`
	MCP     MCP     `toml:"mcp"`
}

type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

// Corpus controls which source files become searchable units
type Corpus struct {
	Include          []string `toml:"include"`           // Doublestar globs relative to the root; empty = all supported files
	Exclude          []string `toml:"exclude"`           // Doublestar globs relative to the root
	Languages        []string `toml:"languages"`         // Restrict to these languages; empty = all supported
	RespectGitignore bool     `toml:"respect_gitignore"` // Skip files ignored by .gitignore
	MaxFileSize      int64    `toml:"max_file_size"`     // Larger files are skipped
	Workers          int      `toml:"workers"`           // Parallel readers during discovery; 0 = NumCPU
}

// Cache controls where materialized text is kept
type Cache struct {
	Backend    string `toml:"backend"`     // "memory" or "sqlite"
	Path       string `toml:"path"`        // SQLite database path
	MaxEntries int    `toml:"max_entries"` // Memory backend capacity
	TTLMinutes int    `toml:"ttl_minutes"` // Memory backend entry lifetime; 0 = no expiry
}

// Search holds the default matching mode and result limits
type Search struct {
	CaseInsensitive bool `toml:"case_insensitive"`
	Regex           bool `toml:"regex"`
	WholeWord       bool `toml:"whole_word"`
	MaxResults      int  `toml:"max_results"` // 0 = unlimited
	PageSize        int  `toml:"page_size"`   // Matches per MCP page
}

type Watch struct {
	Enabled    bool `toml:"enabled"`
	DebounceMs int  `toml:"debounce_ms"`
}

type Logging struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

type MCP struct {
	SessionTTLMinutes int `toml:"session_ttl_minutes"`
	MaxSessions       int `toml:"max_sessions"`
}

// Default returns the built-in configuration for a project root
func Default(root string) *Config {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "." // Fallback to relative if we can't get absolute
		}
		root = cwd
	}

	return &Config{
		Version: 1,
		Project: Project{
			Root: root,
			Name: filepath.Base(root),
		},
		Corpus: Corpus{
			Include:          []string{},
			Exclude:          DefaultExclusions(),
			RespectGitignore: true,
			MaxFileSize:      types.DefaultMaxFileSize,
			Workers:          runtime.NumCPU(),
		},
		Cache: Cache{
			Backend:    CacheBackendMemory,
			MaxEntries: 2000,
			TTLMinutes: 0,
		},
		Search: Search{
			MaxResults: types.DefaultMaxResults,
			PageSize:   types.DefaultPageSize,
		},
		Watch: Watch{
			Enabled:    false,
			DebounceMs: 300, // 300ms debounce for file changes
		},
		Logging: Logging{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
		MCP: MCP{
			SessionTTLMinutes: 15,
			MaxSessions:       32,
		},
	}
}

// DefaultExclusions returns directories that never hold searchable sources
func DefaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.*/**",
		"**/node_modules/**",
		"**/vendor/**",
		"**/build/**",
		"**/out/**",
		"**/target/**",
		"**/bin/**",
		"**/obj/**",
		"**/dist/**",
		"**/*.min.js",
		"**/__pycache__/**",
	}
}

// Load loads configuration for the directory containing path (a config file
// or a directory), then applies .env and environment overrides.
func Load(path string) (*Config, error) {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	} else if err != nil && filepath.Ext(path) != "" {
		dir = filepath.Dir(path)
	}
	return LoadWithRoot(dir)
}

// LoadWithRoot loads configuration from rootDir with global defaults from the home directory
func LoadWithRoot(rootDir string) (*Config, error) {
	if rootDir == "" {
		rootDir = "."
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	// Step 1: Load global base config from ~/.classgrep.kdl (if exists)
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != absRoot {
		if globalCfg, err := LoadKDL(homeDir, absRoot); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: Load project-specific config (KDL first, TOML second)
	var projectConfig *Config
	kdlCfg, err := LoadKDL(absRoot, absRoot)
	if err != nil {
		return nil, err
	}
	projectConfig = kdlCfg
	if projectConfig == nil {
		tomlCfg, err := LoadTOML(absRoot)
		if err != nil {
			return nil, err
		}
		projectConfig = tomlCfg
	}

	// Step 3: Merge configs (project overrides base, but preserve base exclusions)
	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		cfg = baseConfig
	default:
		cfg = Default(absRoot)
	}

	// Step 4: .env file and CLASSGREP_* variables win over files
	if err := ApplyEnv(cfg, absRoot); err != nil {
		return nil, err
	}

	// Step 5: exclude declared build output directories
	cfg.Corpus.Exclude = DeduplicatePatterns(append(cfg.Corpus.Exclude, NewOutputDetector(cfg.Project.Root).Exclusions()...))

	return cfg, nil
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Corpus.Exclude) > 0 {
		merged.Corpus.Exclude = DeduplicatePatterns(append(append([]string{}, base.Corpus.Exclude...), project.Corpus.Exclude...))
	}

	// Project inclusions override base completely if specified
	if len(project.Corpus.Include) == 0 && len(base.Corpus.Include) > 0 {
		merged.Corpus.Include = base.Corpus.Include
	}

	return &merged
}

// DeduplicatePatterns removes repeated patterns, keeping first occurrences in order
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// resolveRoot makes a configured root absolute relative to the config file's directory
func resolveRoot(cfg *Config, configDir, fallback string) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = fallback
		return
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(configDir, cfg.Project.Root)
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)
}
