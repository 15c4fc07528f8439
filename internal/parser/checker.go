// # internal/parser/checker.go
package parser

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Diagnostic is one syntax problem located in a source file, positioned
// 1-based for direct developer consumption.
type Diagnostic struct {
	Path    string
	Line    uint
	Column  uint
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Line, d.Column, d.Message)
}

// FormatDiagnostics renders the full diagnostic list, one per line, the way
// a compiler would print them.
func FormatDiagnostics(diags []Diagnostic) string {
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.String())
	}
	return b.String()
}

// Checker parses artifacts and collects syntax diagnostics.
type Checker struct {
	loader *GrammarLoader
}

func NewChecker(loader *GrammarLoader) *Checker {
	return &Checker{loader: loader}
}

// Check parses content with the grammar for path's language and returns
// every syntax diagnostic found. A nil, empty result means the file parses
// cleanly.
func (c *Checker) Check(path string, content []byte) ([]Diagnostic, error) {
	lang := DetectLanguage(path)
	if lang == "" {
		return nil, errors.New("unsupported language")
	}

	grammar, err := c.loader.Language(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New("parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var diags []Diagnostic
	collectErrors(root, path, content, &diags)
	if len(diags) == 0 {
		// HasError with no locatable ERROR node; report at the root.
		diags = append(diags, Diagnostic{Path: path, Line: 1, Column: 1, Message: "syntax error"})
	}
	return diags, nil
}

func collectErrors(node *sitter.Node, path string, content []byte, diags *[]Diagnostic) {
	if !node.HasError() {
		return
	}

	if node.IsError() || node.IsMissing() {
		pos := node.StartPosition()
		msg := "syntax error"
		if node.IsMissing() {
			msg = fmt.Sprintf("missing %q", node.Kind())
		} else if text := errorContext(node, content); text != "" {
			msg = fmt.Sprintf("syntax error near %q", text)
		}
		*diags = append(*diags, Diagnostic{
			Path:    path,
			Line:    uint(pos.Row) + 1,
			Column:  uint(pos.Column) + 1,
			Message: msg,
		})
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		collectErrors(node.Child(i), path, content, diags)
	}
}

// errorContext extracts a short snippet of the offending source text.
func errorContext(node *sitter.Node, content []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if start >= uint(len(content)) || end > uint(len(content)) || start >= end {
		return ""
	}
	text := strings.TrimSpace(string(content[start:end]))
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return text
}
