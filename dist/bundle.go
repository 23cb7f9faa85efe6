// Package dist packs script modules into distributable bundles.
//
// A bundle is a canonical-CBOR document holding a project's module
// sources keyed by module name, with a per-module content hash so a
// tampered or truncated bundle is rejected at load time.
package dist

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/heretique/wrenpp/manifest"
)

// FormatVersion is bumped when the bundle layout changes.
const FormatVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Module is one script module inside a bundle.
type Module struct {
	Source string   `cbor:"source"`
	Hash   [32]byte `cbor:"hash"`
}

// Bundle is a packed set of script modules.
type Bundle struct {
	Version   int               `cbor:"version"`
	Project   string            `cbor:"project"`
	Release   string            `cbor:"release"`
	Entry     string            `cbor:"entry"`
	CreatedAt time.Time         `cbor:"created_at"`
	Modules   map[string]Module `cbor:"modules"`
}

// New creates an empty bundle.
func New(project, release, entry string) *Bundle {
	return &Bundle{
		Version:   FormatVersion,
		Project:   project,
		Release:   release,
		Entry:     entry,
		CreatedAt: time.Now().UTC(),
		Modules:   make(map[string]Module),
	}
}

// Add inserts a module's source, recording its content hash.
func (b *Bundle) Add(name, source string) {
	b.Modules[name] = Module{Source: source, Hash: sha256.Sum256([]byte(source))}
}

// Source returns a module's source after verifying its hash.
func (b *Bundle) Source(name string) (string, error) {
	mod, ok := b.Modules[name]
	if !ok {
		return "", fmt.Errorf("dist: bundle has no module %q", name)
	}
	if sha256.Sum256([]byte(mod.Source)) != mod.Hash {
		return "", fmt.Errorf("dist: module %q failed integrity check", name)
	}
	return mod.Source, nil
}

// ModuleNames lists the bundled modules, sorted.
func (b *Bundle) ModuleNames() []string {
	names := make([]string, 0, len(b.Modules))
	for name := range b.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Marshal serializes the bundle to canonical CBOR.
func Marshal(b *Bundle) ([]byte, error) {
	return cborEncMode.Marshal(b)
}

// Unmarshal deserializes a bundle and checks its format version.
func Unmarshal(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("dist: unmarshal bundle: %w", err)
	}
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("dist: unsupported bundle version %d", b.Version)
	}
	return &b, nil
}

// Pack collects every module the manifest's resolver can see into a
// bundle.
func Pack(m *manifest.Manifest) (*Bundle, error) {
	r := manifest.NewResolver(m)
	names, err := r.Modules()
	if err != nil {
		return nil, fmt.Errorf("dist: listing modules: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("dist: no modules under %v", m.Scripts.Dirs)
	}

	b := New(m.Project.Name, m.Project.Version, m.Scripts.Entry)
	for _, name := range names {
		source, err := r.Load(name)
		if err != nil {
			return nil, fmt.Errorf("dist: reading module %q: %w", name, err)
		}
		b.Add(name, source)
	}
	return b, nil
}

// WriteFile marshals the bundle to a file.
func WriteFile(b *Bundle, path string) error {
	data, err := Marshal(b)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a bundle from a file.
func ReadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dist: reading bundle: %w", err)
	}
	return Unmarshal(data)
}
