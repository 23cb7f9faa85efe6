package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "game"
version = "0.3.0"

[scripts]
dirs = ["scripts", "shared"]
entry = "boot"

[bundle]
output = "game.wrb"

[wrap.strutil]
package = "strings"
include = ["ToUpper", "Repeat"]
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Project.Name != "game" || m.Project.Version != "0.3.0" {
		t.Errorf("project = %+v", m.Project)
	}
	if len(m.Scripts.Dirs) != 2 || m.Scripts.Entry != "boot" {
		t.Errorf("scripts = %+v", m.Scripts)
	}
	if m.Bundle.Output != "game.wrb" {
		t.Errorf("bundle output = %q", m.Bundle.Output)
	}
	spec, ok := m.Wrap["strutil"]
	if !ok || spec.Package != "strings" || len(spec.Include) != 2 {
		t.Errorf("wrap spec = %+v", m.Wrap)
	}
	if m.Dir == "" || !filepath.IsAbs(m.Dir) {
		t.Errorf("dir not resolved: %q", m.Dir)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "tiny"
`)
	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Scripts.Dirs) != 1 || m.Scripts.Dirs[0] != "scripts" {
		t.Errorf("default script dirs = %v", m.Scripts.Dirs)
	}
	if m.Scripts.Entry != "main" {
		t.Errorf("default entry = %q", m.Scripts.Entry)
	}
	if m.Bundle.Output != "tiny.wrb" {
		t.Errorf("default bundle output = %q", m.Bundle.Output)
	}
}

func TestLoadManifestMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("loading a missing manifest succeeded")
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[project]\nname = \"up\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Project.Name != "up" {
		t.Fatalf("manifest not found from nested dir: %+v", m)
	}
}

func TestResolverResolvesAndShadows(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "p"

[scripts]
dirs = ["first", "second"]
`)
	mustWrite := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("first/main.wren", "var from = \"first\"")
	mustWrite("second/main.wren", "var from = \"second\"")
	mustWrite("second/geo/vec.wren", "var v = 1")

	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(m)

	src, err := r.Load("main")
	if err != nil {
		t.Fatal(err)
	}
	if src != "var from = \"first\"" {
		t.Errorf("earlier dir does not shadow: %q", src)
	}

	if _, err := r.Load("geo/vec"); err != nil {
		t.Errorf("nested module not resolved: %v", err)
	}
	if _, err := r.Load("absent"); err == nil {
		t.Error("resolving a missing module succeeded")
	}

	mods, err := r.Modules()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"geo/vec", "main"}
	if len(mods) != 2 || mods[0] != want[0] || mods[1] != want[1] {
		t.Errorf("modules = %v, want %v", mods, want)
	}
}
