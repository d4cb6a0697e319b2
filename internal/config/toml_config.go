package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LoadTOML attempts to load configuration from .classgrep.toml in dir.
// Returns nil, nil when no file exists.
func LoadTOML(dir string) (*Config, error) {
	tomlPath := filepath.Join(dir, TOMLFileName)

	content, err := os.ReadFile(tomlPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TOMLFileName, err)
	}

	cfg, err := parseTOML(content, dir)
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, dir, dir)
	return cfg, nil
}

// parseTOML decodes content over the defaults; keys absent from the file keep their default
func parseTOML(content []byte, root string) (*Config, error) {
	cfg := Default(root)
	cfg.Project.Root = ""
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)
	return cfg, nil
}
