package main

import (
	"fmt"
	"time"

	"github.com/standardbeagle/classgrep/internal/debug"
	"github.com/standardbeagle/classgrep/internal/mcp"
	"github.com/standardbeagle/classgrep/internal/watch"
	"github.com/standardbeagle/classgrep/internal/workspace"

	"github.com/urfave/cli/v2"
)

func mcpCommand(c *cli.Context) error {
	// Enable MCP mode to suppress all debug output on stdio
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	logPath, err := debug.InitLogFile(debug.LogFileConfig{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return debug.Fatal("failed to open log file: %v\n", err)
	}
	defer debug.CloseLogFile()
	debug.LogMCP("logging to %s\n", logPath)

	ws, err := workspace.Open(c.Context, cfg)
	if err != nil {
		return debug.Fatal("failed to open workspace: %v\n", err)
	}
	defer ws.Close()

	if cfg.Watch.Enabled {
		w, err := watch.New(ws, cfg.Corpus.Exclude, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond)
		if err != nil {
			return debug.Fatal("failed to create file watcher: %v\n", err)
		}
		w.OnBatch(func(b watch.Batch) {
			debug.LogMCP("watch batch: %d paths, %d units invalidated, rescanned=%v\n",
				len(b.Paths), len(b.Invalidated), b.Rescanned)
		})
		if err := w.Start(); err != nil {
			return debug.Fatal("failed to start file watcher: %v\n", err)
		}
		defer w.Stop()
	}

	server := mcp.NewServer(ws)
	if err := server.Start(c.Context); err != nil && c.Context.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	debug.LogMCP("MCP server stopped\n")
	return nil
}
