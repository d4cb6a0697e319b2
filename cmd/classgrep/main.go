package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/standardbeagle/classgrep/internal/config"
	"github.com/standardbeagle/classgrep/internal/debug"
	"github.com/standardbeagle/classgrep/internal/version"
	"github.com/standardbeagle/classgrep/internal/workspace"

	"github.com/urfave/cli/v2"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	dir := "."
	if rootFlag := c.String("root"); rootFlag != "" {
		dir = rootFlag
	}
	if configPath := c.String("config"); configPath != "" {
		dir = configPath
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", dir, err)
	}

	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}
	if backend := c.String("cache"); backend != "" {
		cfg.Cache.Backend = backend
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Corpus.Exclude = append(cfg.Corpus.Exclude, excludeFlags...)
	}

	return cfg, nil
}

// openWorkspace loads config and opens the project, honouring --verbose
func openWorkspace(ctx context.Context, c *cli.Context) (*workspace.Workspace, error) {
	if c.Bool("verbose") {
		debug.EnableDebug = "true"
		debug.SetDebugOutput(c.App.ErrWriter)
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	return workspace.Open(ctx, cfg)
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "classgrep",
		Usage:                  "Search source code class by class and report the enclosing method or field",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file or directory (defaults to the project root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Code cache backend: memory or sqlite",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/generated/**')",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show debug information and search progress on stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Search for pattern in every class",
				ArgsUsage: "<pattern>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "case-insensitive",
						Aliases: []string{"i"},
						Usage:   "Case-insensitive search",
					},
					&cli.BoolFlag{
						Name:    "regex",
						Aliases: []string{"E"},
						Usage:   "Treat pattern as a regular expression",
					},
					&cli.BoolFlag{
						Name:    "word-regexp",
						Aliases: []string{"w"},
						Usage:   "Match whole words only",
					},
					&cli.StringSliceFlag{
						Name:    "class",
						Aliases: []string{"C"},
						Usage:   "Only search these classes: exact names, simple names or globs (--class 'com.acme.**')",
					},
					&cli.IntFlag{
						Name:    "max-results",
						Aliases: []string{"m"},
						Usage:   "Stop after this many matches (0 = config default)",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output one JSON object per match",
					},
				},
				Action: searchCommand,
			},
			{
				Name:      "classes",
				Aliases:   []string{"ls"},
				Usage:     "List searchable classes",
				ArgsUsage: "[glob]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "inner",
						Usage: "Include nested classes",
					},
				},
				Action: classesCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Run as an MCP server on stdio",
				Action: mcpCommand,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.FullInfo())
					return nil
				},
			},
		},
		Action: func(c *cli.Context) error {
			// Default to search if pattern provided
			if c.NArg() > 0 {
				return searchCommand(c)
			}
			return cli.ShowAppHelp(c)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
