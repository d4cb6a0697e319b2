// Package corpus discovers the units of a project and materializes their text.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/classgrep/internal/codemeta"
	"github.com/standardbeagle/classgrep/internal/config"
	"github.com/standardbeagle/classgrep/internal/debug"
	"github.com/standardbeagle/classgrep/internal/types"
)

// Scanner walks a project root and builds its corpus
type Scanner struct {
	root      string
	cfg       config.Corpus
	extractor *codemeta.Extractor
	ignore    *gitignore.GitIgnore
	languages map[types.Language]bool
}

type candidate struct {
	abs  string
	rel  string
	lang types.Language
}

// NewScanner creates a scanner for root. extractor names Java units by their
// declared types; nil falls back to one unit per file.
func NewScanner(root string, cfg config.Corpus, extractor *codemeta.Extractor) *Scanner {
	s := &Scanner{
		root:      root,
		cfg:       cfg,
		extractor: extractor,
	}

	if cfg.RespectGitignore {
		if ig, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			s.ignore = ig
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read .gitignore: %v", err)
		}
	}

	if len(cfg.Languages) > 0 {
		s.languages = make(map[types.Language]bool, len(cfg.Languages))
		for _, name := range cfg.Languages {
			if lang, ok := types.ParseLanguage(name); ok {
				s.languages[lang] = true
			}
		}
	}
	return s
}

// Root returns the scanned directory
func (s *Scanner) Root() string {
	return s.root
}

// Accepts reports whether a file (slash path relative to the root) belongs in the corpus
// by name alone. Size and content are checked during the scan.
func (s *Scanner) Accepts(rel string) bool {
	lang := types.LanguageForPath(rel)
	if lang == types.LanguageUnknown {
		return false
	}
	if s.languages != nil && !s.languages[lang] {
		return false
	}
	if s.excluded(rel, false) {
		return false
	}
	if len(s.cfg.Include) == 0 {
		return true
	}
	for _, pattern := range s.cfg.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// excluded applies exclusion globs and .gitignore to a relative path
func (s *Scanner) excluded(rel string, isDir bool) bool {
	for _, pattern := range s.cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		// Directory patterns like "**/build/**" must also prune the directory itself
		if isDir {
			if ok, _ := doublestar.Match(pattern, rel+"/x"); ok {
				return true
			}
		}
	}
	if s.ignore != nil {
		if isDir {
			return s.ignore.MatchesPath(rel + "/")
		}
		return s.ignore.MatchesPath(rel)
	}
	return false
}

// Scan walks the root and returns the corpus ordered by raw name
func (s *Scanner) Scan(ctx context.Context) (types.Corpus, error) {
	candidates, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	var units []types.Unit

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found := s.unitsFor(c)
			mu.Lock()
			units = append(units, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(units, func(i, j int) bool {
		return units[i].RawName < units[j].RawName
	})
	// Two files may declare the same class; keep the first path
	corpus := make(types.Corpus, 0, len(units))
	for i, u := range units {
		if i > 0 && u.RawName == units[i-1].RawName {
			debug.LogCorpus("duplicate unit %s in %s, keeping %s\n", u.RawName, u.Path, units[i-1].Path)
			continue
		}
		u.Position = len(corpus)
		corpus = append(corpus, u)
	}

	debug.LogCorpus("scanned %s: %d files, %d units\n", s.root, len(candidates), len(corpus))
	return corpus, nil
}

// collect walks the tree and returns accepted files in walk order
func (s *Scanner) collect(ctx context.Context) ([]candidate, error) {
	var candidates []candidate

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("Warning: cannot access %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if s.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !s.Accepts(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if s.cfg.MaxFileSize > 0 && info.Size() > s.cfg.MaxFileSize {
			debug.LogCorpus("skipping %s: %d bytes exceeds limit\n", rel, info.Size())
			return nil
		}

		candidates = append(candidates, candidate{abs: path, rel: rel, lang: types.LanguageForPath(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.root, err)
	}
	return candidates, nil
}

// unitsFor reads one file and names its units
func (s *Scanner) unitsFor(c candidate) []types.Unit {
	content, err := os.ReadFile(c.abs)
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", c.rel, err)
		return unitsForFile(c.rel, c.lang, nil, true)
	}

	noCode := len(strings.TrimSpace(string(content))) == 0 || IsBinary(content)
	if noCode || c.lang != types.LanguageJava || s.extractor == nil {
		return unitsForFile(c.rel, c.lang, nil, noCode)
	}

	md, err := s.extractor.Extract(c.rel, c.lang, content)
	if err != nil {
		debug.LogCorpus("naming %s from its path: %v\n", c.rel, err)
		md = nil
	}
	return unitsForFile(c.rel, c.lang, md, false)
}
