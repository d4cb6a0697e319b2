package corpus

import (
	"path"
	"strings"

	"github.com/standardbeagle/classgrep/internal/codemeta"
	"github.com/standardbeagle/classgrep/internal/types"
)

// unitsForFile names the units backed by one source file. rel is the
// slash separated path relative to the project root. md may be nil when
// the file could not be parsed.
func unitsForFile(rel string, lang types.Language, md *codemeta.Metadata, noCode bool) []types.Unit {
	base := path.Base(rel)
	if lang != types.LanguageJava || md == nil || len(md.Types) == 0 {
		return []types.Unit{{
			RawName:  rel,
			Name:     base,
			Path:     rel,
			Language: lang,
			NoCode:   noCode,
		}}
	}

	stem := strings.TrimSuffix(base, path.Ext(base))
	primary := md.Types[0].Name
	for _, decl := range md.Types {
		if decl.TopLevel && decl.Name == stem {
			primary = decl.Name
			break
		}
	}

	prefix := ""
	if md.Package != "" {
		prefix = md.Package + "."
	}
	outer := prefix + primary

	units := []types.Unit{{
		RawName:  outer,
		Name:     primary,
		Path:     rel,
		Language: lang,
		NoCode:   noCode,
	}}

	seen := map[string]bool{outer: true}
	for _, decl := range md.Types {
		// Binary names: secondary top-level types keep their own name but share the file's text
		raw := prefix + decl.Chain
		if seen[raw] {
			continue
		}
		seen[raw] = true
		units = append(units, types.Unit{
			RawName:  raw,
			Name:     decl.Name,
			Path:     rel,
			Language: lang,
			Outer:    outer,
			Inner:    true,
			NoCode:   noCode,
		})
	}
	return units
}
