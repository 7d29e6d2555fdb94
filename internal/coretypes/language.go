package coretypes

import (
	"path/filepath"
	"strings"
)

// Language identifies the programming language a source file is written
// in. The parser port classifies files by extension; unsupported files are
// ignored without error during indexing.
type Language string

// Supported languages. The Go adapter in internal/parser is the only
// concrete parser port shipped by this module; the remaining languages are
// classified for filtering and future adapters but produce no chunks until
// an adapter for them exists.
const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageRust       Language = "rust"
	LanguageHCL        Language = "hcl"
	LanguagePHP        Language = "php"
	LanguageUnknown    Language = "unknown"
)

// LanguageFromPath classifies a file by its extension.
func LanguageFromPath(path string) Language {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "go":
		return LanguageGo
	case "py":
		return LanguagePython
	case "js", "jsx", "mjs", "cjs":
		return LanguageJavaScript
	case "ts", "tsx":
		return LanguageTypeScript
	case "rs":
		return LanguageRust
	case "hcl", "tf":
		return LanguageHCL
	case "php":
		return LanguagePHP
	default:
		return LanguageUnknown
	}
}

// IsKnown reports whether the language is anything other than Unknown.
func (l Language) IsKnown() bool {
	return l != LanguageUnknown
}

// HasParserAdapter reports whether a concrete parser port implementation
// exists for this language in this module.
func (l Language) HasParserAdapter() bool {
	return l == LanguageGo
}
