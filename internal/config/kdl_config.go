package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from the .classgrep.kdl file in dir.
// Returns nil, nil when no file exists. projectRoot is the root used when the
// file does not name one.
func LoadKDL(dir, projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(dir, KDLFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil // No KDL config found, use defaults
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", KDLFileName, err)
	}

	cfg := Default(projectRoot)
	cfg.Project.Root = ""
	if err := applyKDL(cfg, string(content)); err != nil {
		return nil, err
	}
	resolveRoot(cfg, dir, projectRoot)
	return cfg, nil
}

// parseKDL parses KDL content on top of the defaults for the working directory
func parseKDL(content string) (*Config, error) {
	cfg := Default("")
	if err := applyKDL(cfg, content); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyKDL overlays the settings present in content onto cfg
func applyKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children { // project { root "." name "foo" }
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "corpus":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "include":
					cfg.Corpus.Include = append(cfg.Corpus.Include, collectStringArgs(cn)...)
				case "exclude":
					// Replace default exclusions if exclude block is present
					cfg.Corpus.Exclude = collectStringArgs(cn)
				case "languages":
					cfg.Corpus.Languages = collectStringArgs(cn)
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Corpus.RespectGitignore = b
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Corpus.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Corpus.MaxFileSize = sz
						} else {
							log.Printf("WARNING: invalid max_file_size %q in KDL config: %v", s, err)
						}
					}
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Corpus.Workers = v
					}
				}
			}
		case "cache":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "backend":
					if s, ok := firstStringArg(cn); ok {
						cfg.Cache.Backend = strings.ToLower(s)
					}
				case "path":
					if s, ok := firstStringArg(cn); ok {
						cfg.Cache.Path = s
					}
				case "max_entries":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.MaxEntries = v
					}
				case "ttl_minutes":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.TTLMinutes = v
					}
				}
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "case_insensitive":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.CaseInsensitive = b
					}
				case "regex":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.Regex = b
					}
				case "whole_word":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.WholeWord = b
					}
				case "max_results":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxResults = v
					}
				case "page_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.PageSize = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "logging":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "file":
					if s, ok := firstStringArg(cn); ok {
						cfg.Logging.File = s
					}
				case "max_size_mb":
					if v, ok := firstIntArg(cn); ok {
						cfg.Logging.MaxSizeMB = v
					}
				case "max_backups":
					if v, ok := firstIntArg(cn); ok {
						cfg.Logging.MaxBackups = v
					}
				case "max_age_days":
					if v, ok := firstIntArg(cn); ok {
						cfg.Logging.MaxAgeDays = v
					}
				case "compress":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Logging.Compress = b
					}
				}
			}
		case "mcp":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "session_ttl_minutes":
					if v, ok := firstIntArg(cn); ok {
						cfg.MCP.SessionTTLMinutes = v
					}
				case "max_sessions":
					if v, ok := firstIntArg(cn); ok {
						cfg.MCP.MaxSessions = v
					}
				}
			}
		}
	}

	return nil
}

// Helper functions leveraging kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// First try to collect from arguments (for inline format)
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block format like exclude { "pattern" }: the node name is the string value
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}
