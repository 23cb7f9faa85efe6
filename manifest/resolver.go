package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScriptExtension is the file extension of script modules on disk.
const ScriptExtension = ".wren"

// Resolver maps module names to script files under the manifest's
// script directories. A module in a subdirectory gets a slash-separated
// name: scripts/geo/vec.wren resolves as "geo/vec".
type Resolver struct {
	manifest *Manifest
}

// NewResolver creates a resolver over a loaded manifest.
func NewResolver(m *Manifest) *Resolver {
	return &Resolver{manifest: m}
}

// Resolve returns the path of the named module's source file. Earlier
// script directories shadow later ones.
func (r *Resolver) Resolve(name string) (string, error) {
	rel := filepath.FromSlash(name) + ScriptExtension
	for _, dir := range r.manifest.ScriptDirPaths() {
		path := filepath.Join(dir, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("module %q not found under %v", name, r.manifest.Scripts.Dirs)
}

// Load reads the named module's source.
func (r *Resolver) Load(name string) (string, error) {
	path, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Modules lists every resolvable module name, sorted.
func (r *Resolver) Modules() ([]string, error) {
	seen := make(map[string]bool)
	for _, dir := range r.manifest.ScriptDirPaths() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ScriptExtension) {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(strings.TrimSuffix(rel, ScriptExtension))
			seen[name] = true
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
