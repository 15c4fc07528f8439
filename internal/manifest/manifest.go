// # internal/manifest/manifest.go

// Package manifest loads the package.json manifest of a build output
// directory and derives the declared file set from it.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the file looked up inside the package directory.
const ManifestName = "package.json"

var (
	// ErrNoFiles indicates the manifest declares no files at all.
	ErrNoFiles = errors.New("manifest declares no files")
)

// Manifest is the parsed package.json. Only the fields the gate inspects
// are decoded; everything else in the manifest is ignored.
type Manifest struct {
	Files   []string                `json:"files"`
	Main    string                  `json:"main"`
	Module  string                  `json:"module"`
	Types   string                  `json:"types"`
	Exports map[string]ExportTarget `json:"exports"`
}

// ExportTarget is one entry of the exports map: either a bare path or a
// conditional record with separate import/require targets.
type ExportTarget struct {
	Path    string
	Import  string
	Require string
}

// Conditional reports whether the target carries import/require sub-paths
// rather than a single path.
func (t ExportTarget) Conditional() bool {
	return t.Path == ""
}

func (t *ExportTarget) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		t.Path = path
		return nil
	}

	var cond struct {
		Import  string `json:"import"`
		Require string `json:"require"`
	}
	if err := json.Unmarshal(data, &cond); err != nil {
		return fmt.Errorf("export target must be a path or an import/require record: %w", err)
	}
	t.Import = cond.Import
	t.Require = cond.Require
	return nil
}

// Load reads and parses <pkgDir>/package.json. A missing or malformed
// manifest is unrecoverable for the whole run; the caller does not get a
// partial manifest back.
func Load(pkgDir string) (*Manifest, error) {
	path := filepath.Join(pkgDir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoFiles)
	}

	return &m, nil
}

// ExpectedFiles joins every declared file onto pkgDir, preserving manifest
// order. The result doubles as the allow-list for the tree scan.
func (m *Manifest) ExpectedFiles(pkgDir string) []string {
	paths := make([]string, 0, len(m.Files))
	for _, rel := range m.Files {
		paths = append(paths, filepath.Join(pkgDir, rel))
	}
	return paths
}

// EntryPoints returns every manifest-declared entry path keyed by its
// manifest location, for resolution against the package directory. Absent
// optional entries are omitted.
func (m *Manifest) EntryPoints() map[string]string {
	entries := make(map[string]string)
	if m.Main != "" {
		entries["main"] = m.Main
	}
	if m.Module != "" {
		entries["module"] = m.Module
	}
	if m.Types != "" {
		entries["types"] = m.Types
	}
	for key, target := range m.Exports {
		if target.Conditional() {
			if target.Import != "" {
				entries[fmt.Sprintf("exports[%q].import", key)] = target.Import
			}
			if target.Require != "" {
				entries[fmt.Sprintf("exports[%q].require", key)] = target.Require
			}
			continue
		}
		entries[fmt.Sprintf("exports[%q]", key)] = target.Path
	}
	return entries
}
