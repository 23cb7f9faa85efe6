// Package manifest handles wrenpp.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file a project directory carries.
const FileName = "wrenpp.toml"

// Manifest is a wrenpp.toml project configuration: where script modules
// live, what the entry module is, how bundles are produced, and which
// Go packages get generated bindings.
type Manifest struct {
	Project Project            `toml:"project"`
	Scripts Scripts            `toml:"scripts"`
	Bundle  Bundle             `toml:"bundle"`
	Wrap    map[string]WrapSpec `toml:"wrap"`

	// Dir is the directory containing the wrenpp.toml file, set at
	// load time.
	Dir string `toml:"-"`
}

// Project carries project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Scripts configures script module locations.
type Scripts struct {
	Dirs  []string `toml:"dirs"`
	Entry string   `toml:"entry"`
}

// Bundle configures script bundle output.
type Bundle struct {
	Output string `toml:"output"`
}

// WrapSpec names a Go package to generate script bindings for, keyed by
// the script module the bindings go into.
type WrapSpec struct {
	Package string   `toml:"package"`
	Include []string `toml:"include"`
}

// Load parses the wrenpp.toml in the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if len(m.Scripts.Dirs) == 0 {
		m.Scripts.Dirs = []string{"scripts"}
	}
	if m.Scripts.Entry == "" {
		m.Scripts.Entry = "main"
	}
	if m.Bundle.Output == "" {
		m.Bundle.Output = m.Project.Name + ".wrb"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir looking for a wrenpp.toml and
// loads the first one found. Returns nil without error when no manifest
// exists anywhere up the tree.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// ScriptDirPaths returns absolute paths for the configured script
// directories.
func (m *Manifest) ScriptDirPaths() []string {
	var paths []string
	for _, d := range m.Scripts.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// BundlePath returns the absolute path bundles are written to.
func (m *Manifest) BundlePath() string {
	return filepath.Join(m.Dir, m.Bundle.Output)
}
