// # internal/scan/scanner.go

// Package scan enumerates what is actually present in the package
// directory and diffs it against the declared file set. It catches build
// artifacts that got written but never declared, which would otherwise be
// silently published.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

// Scanner walks a package directory depth-first collecting every regular
// file. Anything that is neither file nor directory (symlink, device,
// socket) is unrecoverable: the build should never produce one.
type Scanner struct {
	ignore []glob.Glob
}

func New(ignorePatterns []string) (*Scanner, error) {
	s := &Scanner{}
	for _, p := range ignorePatterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		s.ignore = append(s.ignore, g)
	}
	return s, nil
}

// ListFiles returns the absolute path of every regular file under root,
// minus ignored basenames.
func (s *Scanner) ListFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		for _, g := range s.ignore {
			if g.Match(base) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return fmt.Errorf("unexpected filesystem entry %s (%s)", path, d.Type())
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Unexpected computes actual minus expected, sorted. Unlike the other
// checks this result is reported in one batch, so a single run surfaces
// every stray file at once.
func Unexpected(actual, expected []string) []string {
	declared := make(map[string]bool, len(expected))
	for _, path := range expected {
		declared[path] = true
	}

	var extras []string
	for _, path := range actual {
		if !declared[path] {
			extras = append(extras, path)
		}
	}
	sort.Strings(extras)
	return extras
}
