// Package version identifies the classgrep build.
package version

import (
	"encoding/hex"
	"runtime/debug"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Overridden with -ldflags "-X github.com/standardbeagle/classgrep/internal/version.Commit=..."
var (
	Commit = "unknown"
	Date   = "development"
)

const Version = "0.3.0"

// FullInfo is the one-line version banner printed by the CLI
func FullInfo() string {
	return "classgrep " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}

// BuildID fingerprints the running binary. Cached text written by a
// different build is discarded by the SQLite code cache.
var BuildID = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version + "-" + Commit
	}

	d := xxhash.New()
	d.WriteString(info.GoVersion)
	d.WriteString(info.Main.Path)
	d.WriteString(info.Main.Version)
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" || s.Key == "vcs.modified" || s.Key == "vcs.time" {
			d.WriteString(s.Key + "=" + s.Value)
		}
	}

	var sum [8]byte
	return hex.EncodeToString(d.Sum(sum[:0]))
})
