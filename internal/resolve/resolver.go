// # internal/resolve/resolver.go

// Package resolve confirms every manifest-declared entry point exists on
// disk. The checks are independent stat calls and run concurrently; the
// first failure wins and in-flight siblings are abandoned.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// EntryPoints verifies each declared entry path against pkgDir. The keys
// of entries are manifest locations (main, module, types, exports[...])
// so a failure reports exactly where the broken declaration lives.
func EntryPoints(pkgDir string, entries map[string]string) error {
	g := new(errgroup.Group)
	for location, rel := range entries {
		g.Go(func() error {
			path := filepath.Join(pkgDir, rel)
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("entry point %s -> %q does not resolve: %w", location, rel, err)
			}
			if !info.Mode().IsRegular() {
				return fmt.Errorf("entry point %s -> %q is not a regular file", location, rel)
			}
			return nil
		})
	}
	return g.Wait()
}
