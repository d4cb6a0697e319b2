package corpus

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/classgrep/internal/search"
	"github.com/standardbeagle/classgrep/internal/types"
)

// Filter builds an inclusion set from class patterns. A pattern containing
// glob characters is matched against raw names with package dots treated as
// path separators ("com.acme.**", "**.*Service"); any other pattern matches a
// raw name exactly or a simple name. Nested units are scanned as part of
// their outer unit, so selecting one selects its outer unit too. Returns nil
// when patterns is empty.
func Filter(corpus types.Corpus, patterns []string) *search.UnitSet {
	if len(patterns) == 0 {
		return nil
	}

	set := search.NewUnitSet()
	for _, u := range corpus {
		for _, p := range patterns {
			if MatchUnit(u, p) {
				set.Add(u.RawName)
				if u.Inner && u.Outer != "" {
					set.Add(u.Outer)
				}
				break
			}
		}
	}
	return set
}

// MatchUnit reports whether a single class pattern selects u
func MatchUnit(u types.Unit, pattern string) bool {
	if !strings.ContainsAny(pattern, "*?[{") {
		return u.RawName == pattern || u.Name == pattern
	}
	ok, _ := doublestar.Match(dotsToSlashes(pattern), dotsToSlashes(u.RawName))
	return ok
}

func dotsToSlashes(s string) string {
	return strings.ReplaceAll(s, ".", "/")
}

// Suggest returns up to n unit names closest to pattern by Jaro-Winkler similarity
func Suggest(corpus types.Corpus, pattern string, n int) []string {
	if n <= 0 || pattern == "" {
		return nil
	}
	needle := strings.ToLower(strings.Trim(pattern, "*?"))

	type scored struct {
		name  string
		score float32
	}
	var candidates []scored
	for _, u := range corpus {
		if u.Inner {
			continue
		}
		best := float32(0)
		for _, s := range []string{u.Name, u.RawName} {
			sim, err := edlib.StringsSimilarity(needle, strings.ToLower(s), edlib.JaroWinkler)
			if err == nil && sim > best {
				best = sim
			}
		}
		if best > 0 {
			candidates = append(candidates, scored{u.RawName, best})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}
