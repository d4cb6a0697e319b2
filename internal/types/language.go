package types

import (
	"path/filepath"
	"sort"
	"strings"
)

var languageByExt = map[string]Language{
	".java": LanguageJava,
	".go":   LanguageGo,
	".cs":   LanguageCSharp,
	".py":   LanguagePython,
	".js":   LanguageJavaScript,
	".jsx":  LanguageJavaScript,
	".mjs":  LanguageJavaScript,
	".cjs":  LanguageJavaScript,
	".ts":   LanguageTypeScript,
	".tsx":  LanguageTypeScript,
	".rs":   LanguageRust,
	".c":    LanguageCpp,
	".h":    LanguageCpp,
	".cc":   LanguageCpp,
	".cpp":  LanguageCpp,
	".cxx":  LanguageCpp,
	".hpp":  LanguageCpp,
	".hh":   LanguageCpp,
	".php":  LanguagePHP,
	".zig":  LanguageZig,
}

// LanguageForPath returns the language implied by a file extension
func LanguageForPath(path string) Language {
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns every recognised source extension, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(languageByExt))
	for ext := range languageByExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseLanguage accepts a language name or one of its common aliases
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "java":
		return LanguageJava, true
	case "go", "golang":
		return LanguageGo, true
	case "csharp", "c#", "cs":
		return LanguageCSharp, true
	case "python", "py":
		return LanguagePython, true
	case "javascript", "js":
		return LanguageJavaScript, true
	case "typescript", "ts":
		return LanguageTypeScript, true
	case "rust", "rs":
		return LanguageRust, true
	case "cpp", "c++", "c":
		return LanguageCpp, true
	case "php":
		return LanguagePHP, true
	case "zig":
		return LanguageZig, true
	}
	return LanguageUnknown, false
}
