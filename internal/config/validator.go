package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
	"github.com/standardbeagle/classgrep/internal/types"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Every invalid field is reported; the returned error is a *MultiError of *ConfigError.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	var errs []error

	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		errs = append(errs, cgerrors.NewConfigError("project", cfg.Project.Root, err))
	}

	errs = append(errs, v.validateCorpusConfig(&cfg.Corpus)...)

	if err := v.validateCacheConfig(&cfg.Cache); err != nil {
		errs = append(errs, cgerrors.NewConfigError("cache", cfg.Cache.Backend, err))
	}

	if err := v.validateSearchConfig(&cfg.Search); err != nil {
		errs = append(errs, cgerrors.NewConfigError("search", "", err))
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, cgerrors.NewConfigError("watch.debounce_ms", fmt.Sprint(cfg.Watch.DebounceMs),
			errors.New("debounce cannot be negative")))
	}

	if cfg.MCP.SessionTTLMinutes < 0 || cfg.MCP.MaxSessions < 0 {
		errs = append(errs, cgerrors.NewConfigError("mcp", "",
			fmt.Errorf("session limits cannot be negative (ttl=%d, max=%d)", cfg.MCP.SessionTTLMinutes, cfg.MCP.MaxSessions)))
	}

	if err := cgerrors.NewMultiError(errs).ErrorOrNil(); err != nil {
		return err
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateProjectConfig validates project configuration
func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateCorpusConfig(corpus *Corpus) []error {
	var errs []error

	if corpus.MaxFileSize <= 0 {
		errs = append(errs, cgerrors.NewConfigError("corpus.max_file_size", fmt.Sprint(corpus.MaxFileSize),
			fmt.Errorf("MaxFileSize must be positive, got %d", corpus.MaxFileSize)))
	} else if corpus.MaxFileSize > 100*1024*1024 {
		errs = append(errs, cgerrors.NewConfigError("corpus.max_file_size", fmt.Sprint(corpus.MaxFileSize),
			fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", corpus.MaxFileSize)))
	}

	if corpus.Workers < 0 {
		errs = append(errs, cgerrors.NewConfigError("corpus.workers", fmt.Sprint(corpus.Workers),
			fmt.Errorf("Workers cannot be negative, got %d", corpus.Workers)))
	}

	for _, pattern := range append(append([]string{}, corpus.Include...), corpus.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, cgerrors.NewConfigError("corpus.pattern", pattern, doublestar.ErrBadPattern))
		}
	}

	for _, lang := range corpus.Languages {
		if _, ok := types.ParseLanguage(lang); !ok {
			errs = append(errs, cgerrors.NewConfigError("corpus.languages", lang, errors.New("unsupported language")))
		}
	}

	return errs
}

func (v *Validator) validateCacheConfig(cache *Cache) error {
	switch strings.ToLower(cache.Backend) {
	case "", CacheBackendMemory:
		if cache.MaxEntries < 0 {
			return fmt.Errorf("MaxEntries cannot be negative, got %d", cache.MaxEntries)
		}
	case CacheBackendSQLite:
	default:
		return fmt.Errorf("unknown cache backend %q (want %q or %q)", cache.Backend, CacheBackendMemory, CacheBackendSQLite)
	}
	if cache.TTLMinutes < 0 {
		return fmt.Errorf("TTLMinutes cannot be negative, got %d", cache.TTLMinutes)
	}
	return nil
}

// validateSearchConfig validates search configuration
func (v *Validator) validateSearchConfig(search *Search) error {
	if search.MaxResults < 0 {
		return fmt.Errorf("MaxResults cannot be negative, got %d", search.MaxResults)
	}
	if search.PageSize < 0 {
		return fmt.Errorf("PageSize cannot be negative, got %d", search.PageSize)
	}
	return nil
}

// setSmartDefaults fills zero values with defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Project.Name == "" {
		cfg.Project.Name = projectNameFromRoot(cfg.Project.Root)
	}

	// Leave one core free for the OS, minimum of 1
	if cfg.Corpus.Workers == 0 {
		cfg.Corpus.Workers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheBackendMemory
	}
	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)
	if cfg.Cache.Backend == CacheBackendMemory && cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 2000
	}

	if cfg.Search.PageSize == 0 {
		cfg.Search.PageSize = types.DefaultPageSize
	}

	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 300
	}

	if cfg.MCP.SessionTTLMinutes == 0 {
		cfg.MCP.SessionTTLMinutes = 15
	}
	if cfg.MCP.MaxSessions == 0 {
		cfg.MCP.MaxSessions = 32
	}
}

func projectNameFromRoot(root string) string {
	root = strings.TrimRight(strings.ReplaceAll(root, "\\", "/"), "/")
	if i := strings.LastIndex(root, "/"); i >= 0 {
		return root[i+1:]
	}
	return root
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
