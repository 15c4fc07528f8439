// # internal/typecheck/checker.go

// Package typecheck performs the single-file declaration check: a syntax
// parse plus resolution of every cross-file reference the declaration
// makes, in the context of the project's shared compiler configuration.
// A declaration that looks fine standalone can still carry relative
// imports broken by packaging; this is the check that catches those.
package typecheck

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"distgate/internal/parser"
)

var referencePathRe = regexp.MustCompile(`^\s*///\s*<reference\s+path="([^"]+)"`)

// DeclarationChecker validates declaration-adjacent sources (.ts, .d.ts,
// and .mjs files that are not executed).
type DeclarationChecker struct {
	loader *parser.GrammarLoader
	syntax *parser.Checker
	config *CompilerConfig
}

func NewDeclarationChecker(loader *parser.GrammarLoader, config *CompilerConfig) *DeclarationChecker {
	return &DeclarationChecker{
		loader: loader,
		syntax: parser.NewChecker(loader),
		config: config,
	}
}

// Check parses content and resolves its cross-references. The returned
// diagnostics cover both syntax errors and unresolvable references; empty
// means the file passes.
func (c *DeclarationChecker) Check(path string, content []byte) ([]parser.Diagnostic, error) {
	diags, err := c.syntax.Check(path, content)
	if err != nil {
		return nil, err
	}
	if len(diags) > 0 {
		// Specifier extraction on a broken tree would mis-attribute
		// problems; syntax diagnostics alone are actionable.
		return diags, nil
	}

	specs, err := c.importSpecifiers(path, content)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if resolved := c.resolveSpecifier(filepath.Dir(path), spec.text); !resolved {
			diags = append(diags, parser.Diagnostic{
				Path:    path,
				Line:    spec.line,
				Column:  spec.column,
				Message: fmt.Sprintf("cannot resolve import %q", spec.text),
			})
		}
	}

	diags = append(diags, c.checkReferencePaths(path, content)...)
	return diags, nil
}

type specifier struct {
	text   string
	line   uint
	column uint
}

// importSpecifiers walks the syntax tree collecting the module specifier
// of every import statement, re-export, and import-equals-require form.
func (c *DeclarationChecker) importSpecifiers(path string, content []byte) ([]specifier, error) {
	lang := parser.DetectLanguage(path)
	grammar, err := c.loader.Language(lang)
	if err != nil {
		return nil, err
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(grammar)

	tree := p.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse failed: %s", path)
	}
	defer tree.Close()

	var specs []specifier
	collectSpecifiers(tree.RootNode(), content, &specs)
	return specs, nil
}

func collectSpecifiers(node *sitter.Node, content []byte, specs *[]specifier) {
	switch node.Kind() {
	case "import_statement", "export_statement", "external_module_reference":
		if str := firstStringChild(node); str != nil {
			pos := str.StartPosition()
			*specs = append(*specs, specifier{
				text:   stringText(str, content),
				line:   uint(pos.Row) + 1,
				column: uint(pos.Column) + 1,
			})
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		collectSpecifiers(node.Child(i), content, specs)
	}
}

func firstStringChild(node *sitter.Node) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "string" {
			return child
		}
	}
	return nil
}

func stringText(node *sitter.Node, content []byte) string {
	text := string(content[node.StartByte():node.EndByte()])
	return strings.Trim(text, `"'`)
}

// checkReferencePaths validates every /// <reference path="..."/> directive
// against disk.
func (c *DeclarationChecker) checkReferencePaths(path string, content []byte) []parser.Diagnostic {
	var diags []parser.Diagnostic
	dir := filepath.Dir(path)

	for i, line := range strings.Split(string(content), "\n") {
		m := referencePathRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		target := filepath.Join(dir, m[1])
		if _, err := os.Stat(target); err != nil {
			diags = append(diags, parser.Diagnostic{
				Path:    path,
				Line:    uint(i) + 1,
				Column:  1,
				Message: fmt.Sprintf("reference path %q does not exist", m[1]),
			})
		}
	}
	return diags
}

// resolveSpecifier reports whether a module specifier resolves to a file.
// Relative specifiers resolve against the importing file; non-relative
// ones try tsconfig path aliases, then baseUrl. A bare specifier with no
// alias and no baseUrl hit is assumed to be an external dependency and
// passes.
func (c *DeclarationChecker) resolveSpecifier(dir, spec string) bool {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		return resolveFile(filepath.Join(dir, spec))
	}

	for pattern, targets := range c.config.Paths {
		rest, ok := matchAlias(pattern, spec)
		if !ok {
			continue
		}
		base := c.config.Dir
		if c.config.BaseURL != "" {
			base = filepath.Join(c.config.Dir, c.config.BaseURL)
		}
		for _, target := range targets {
			candidate := filepath.Join(base, strings.Replace(target, "*", rest, 1))
			if resolveFile(candidate) {
				return true
			}
		}
		return false
	}

	if c.config.BaseURL != "" {
		if resolveFile(filepath.Join(c.config.Dir, c.config.BaseURL, spec)) {
			return true
		}
	}
	return true
}

// matchAlias matches a tsconfig paths pattern (exact, or a single "*"
// wildcard) against a specifier, returning the wildcard capture.
func matchAlias(pattern, spec string) (string, bool) {
	star := strings.Index(pattern, "*")
	if star < 0 {
		return "", pattern == spec
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if !strings.HasPrefix(spec, prefix) || !strings.HasSuffix(spec, suffix) {
		return "", false
	}
	return spec[len(prefix) : len(spec)-len(suffix)], true
}

// resolveFile applies the compiler's lookup order for a specifier target:
// the literal path, declaration-extension rewrites of an emitted-JS
// extension, source extensions, then directory index files.
func resolveFile(base string) bool {
	candidates := []string{base}

	switch {
	case strings.HasSuffix(base, ".js"):
		candidates = append(candidates, strings.TrimSuffix(base, ".js")+".d.ts", strings.TrimSuffix(base, ".js")+".ts")
	case strings.HasSuffix(base, ".mjs"):
		candidates = append(candidates, strings.TrimSuffix(base, ".mjs")+".d.mts")
	case strings.HasSuffix(base, ".cjs"):
		candidates = append(candidates, strings.TrimSuffix(base, ".cjs")+".d.cts")
	default:
		candidates = append(candidates,
			base+".ts",
			base+".d.ts",
			filepath.Join(base, "index.ts"),
			filepath.Join(base, "index.d.ts"),
		)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}
