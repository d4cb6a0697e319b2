package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
)

// Environment variables recognised as overrides
const (
	EnvRoot       = "CLASSGREP_ROOT"
	EnvCache      = "CLASSGREP_CACHE"
	EnvCachePath  = "CLASSGREP_CACHE_PATH"
	EnvMaxResults = "CLASSGREP_MAX_RESULTS"
	EnvLogFile    = "CLASSGREP_LOG_FILE"
	EnvWatch      = "CLASSGREP_WATCH"
)

// ApplyEnv applies overrides from dir/.env and the process environment.
// Process variables take precedence over the .env file.
func ApplyEnv(cfg *Config, dir string) error {
	fileVars, err := godotenv.Read(filepath.Join(dir, EnvFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", EnvFileName, err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok && v != ""
	}

	if v, ok := lookup(EnvRoot); ok {
		cfg.Project.Root = v
		resolveRoot(cfg, dir, dir)
	}
	if v, ok := lookup(EnvCache); ok {
		cfg.Cache.Backend = v
	}
	if v, ok := lookup(EnvCachePath); ok {
		cfg.Cache.Path = v
	}
	if v, ok := lookup(EnvMaxResults); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cgerrors.NewConfigError("search.max_results", v, err)
		}
		cfg.Search.MaxResults = n
	}
	if v, ok := lookup(EnvLogFile); ok {
		cfg.Logging.File = v
	}
	if v, ok := lookup(EnvWatch); ok {
		cfg.Watch.Enabled = parseBool(v)
	}
	return nil
}
