// Package project locates and parses the tern.toml project manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file name that marks a project root.
const ManifestName = "tern.toml"

// Manifest is the decoded tern.toml.
type Manifest struct {
	Project  ProjectSection  `toml:"project"`
	Analysis AnalysisSection `toml:"analysis"`
}

// ProjectSection is the [project] table.
type ProjectSection struct {
	Name string `toml:"name"`
}

// AnalysisSection is the [analysis] table. Zero values mean "use the
// built-in default".
type AnalysisSection struct {
	SchemaDir      string `toml:"schema_dir"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Jobs           int    `toml:"jobs"`
}

// ErrProjectNameMissing indicates that [project].name is absent or blank.
var ErrProjectNameMissing = errors.New("missing [project].name")

// FindManifest walks up from startDir to locate tern.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindRoot returns the directory containing tern.toml, if any.
func FindRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}

// Load parses a tern.toml manifest. A relative schema_dir resolves against
// the manifest's directory.
func Load(path string) (Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(m.Project.Name) == "" {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrProjectNameMissing)
	}
	if m.Analysis.SchemaDir != "" && !filepath.IsAbs(m.Analysis.SchemaDir) {
		m.Analysis.SchemaDir = filepath.Join(filepath.Dir(path), m.Analysis.SchemaDir)
	}
	return m, nil
}
