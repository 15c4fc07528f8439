// # internal/parser/loader.go
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// GrammarLoader owns the tree-sitter grammars for the artifact languages a
// package distribution can contain.
type GrammarLoader struct {
	languages map[string]*sitter.Language
}

func NewGrammarLoader() *GrammarLoader {
	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
	}

	gl.languages["javascript"] = sitter.NewLanguage(tree_sitter_javascript.Language())
	gl.languages["typescript"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())

	return gl
}

func (gl *GrammarLoader) Language(lang string) (*sitter.Language, error) {
	grammar := gl.languages[lang]
	if grammar == nil {
		return nil, fmt.Errorf("grammar not loaded: %s", lang)
	}
	return grammar, nil
}

// DetectLanguage maps an artifact path to its grammar. Declaration files
// (.d.ts) and plain .ts both parse with the typescript grammar; .cjs and
// .mjs are javascript dialects the javascript grammar accepts.
func DetectLanguage(path string) string {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".cjs"), strings.HasSuffix(name, ".mjs"), strings.HasSuffix(name, ".js"):
		return "javascript"
	case strings.HasSuffix(name, ".ts"):
		return "typescript"
	default:
		return ""
	}
}
