// # internal/typecheck/tsconfig.go
package typecheck

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// CompilerConfig is the slice of tsconfig.json the declaration checker
// consumes: where non-relative specifiers anchor and how path aliases map.
type CompilerConfig struct {
	// Dir is the directory of the tsconfig file, the anchor for BaseURL.
	Dir     string
	BaseURL string
	Paths   map[string][]string
}

type tsconfigFile struct {
	Extends         string `json:"extends"`
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// LoadTSConfig reads <rootDir>/tsconfig.json. tsconfig is JSON with
// comments and trailing commas, so the raw bytes are sanitized before
// decoding. A relative "extends" is followed one level; anything deeper
// falls back to the local options with a debug log.
func LoadTSConfig(rootDir string) (*CompilerConfig, error) {
	path := filepath.Join(rootDir, "tsconfig.json")
	cfg, err := loadTSConfigFile(path)
	if err != nil {
		return nil, err
	}

	merged := &CompilerConfig{
		Dir:     rootDir,
		BaseURL: cfg.CompilerOptions.BaseURL,
		Paths:   cfg.CompilerOptions.Paths,
	}

	if cfg.Extends != "" && strings.HasPrefix(cfg.Extends, ".") {
		basePath := filepath.Join(rootDir, cfg.Extends)
		if filepath.Ext(basePath) == "" {
			basePath += ".json"
		}
		base, err := loadTSConfigFile(basePath)
		if err != nil {
			slog.Debug("ignoring unreadable tsconfig base", "path", basePath, "error", err)
		} else {
			if merged.BaseURL == "" {
				merged.BaseURL = base.CompilerOptions.BaseURL
			}
			if merged.Paths == nil {
				merged.Paths = base.CompilerOptions.Paths
			}
		}
	}

	return merged, nil
}

func loadTSConfigFile(path string) (*tsconfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compiler config %s: %w", path, err)
	}

	var cfg tsconfigFile
	if err := json.Unmarshal(stripJSONC(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse compiler config %s: %w", path, err)
	}
	return &cfg, nil
}

// stripJSONC removes line comments, block comments, and trailing commas so
// the stdlib decoder accepts tsconfig-flavored JSON. String contents are
// left untouched.
func stripJSONC(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]

		if inString {
			out = append(out, c)
			if c == '\\' && i+1 < len(data) {
				out = append(out, data[i+1])
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out = append(out, c)
		case c == '/' && i+1 < len(data) && data[i+1] == '/':
			for i < len(data) && data[i] != '\n' {
				i++
			}
			if i < len(data) {
				out = append(out, '\n')
			}
		case c == '/' && i+1 < len(data) && data[i+1] == '*':
			i += 2
			for i+1 < len(data) && !(data[i] == '*' && data[i+1] == '/') {
				i++
			}
			i++ // skip the closing '/'
		case c == ',':
			// Drop the comma if the next non-whitespace byte closes a scope.
			j := i + 1
			for j < len(data) && (data[j] == ' ' || data[j] == '\t' || data[j] == '\n' || data[j] == '\r') {
				j++
			}
			if j < len(data) && (data[j] == '}' || data[j] == ']') {
				continue
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}
