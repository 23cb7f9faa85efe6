package modstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/heretique/wrenpp/dist"
	"github.com/heretique/wrenpp/wren"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "modules.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("main", `System.print("hi")`); err != nil {
		t.Fatal(err)
	}
	src, err := s.Get("main")
	if err != nil {
		t.Fatal(err)
	}
	if src != `System.print("hi")` {
		t.Errorf("source = %q", src)
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("main", "var v = 1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("main", "var v = 2"); err != nil {
		t.Fatal(err)
	}
	src, err := s.Get("main")
	if err != nil {
		t.Fatal(err)
	}
	if src != "var v = 2" {
		t.Errorf("source = %q, want replacement", src)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAndList(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"b", "a", "c"} {
		if err := s.Put(name, "x"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Delete("b"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("never-there"); err != nil {
		t.Errorf("deleting an absent module errored: %v", err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("names = %v", names)
	}
}

func TestImportBundle(t *testing.T) {
	s := openTestStore(t)
	b := dist.New("p", "1.0.0", "main")
	b.Add("main", "var m = 1")
	b.Add("util", "var u = 2")

	if err := s.ImportBundle(b); err != nil {
		t.Fatal(err)
	}
	src, err := s.Get("util")
	if err != nil || src != "var u = 2" {
		t.Errorf("imported source = %q, %v", src, err)
	}
}

func TestLoaderServesVM(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("greeting", `var text = "stored hello"`); err != nil {
		t.Fatal(err)
	}

	var out string
	vm := wren.NewVM(wren.Config{
		LoadModule: s.Loader(),
		Write:      func(text string) { out += text },
	})
	res := vm.Interpret("main", `
import "greeting" for text
System.print(text)
`)
	if res != wren.ResultSuccess {
		t.Fatalf("interpret: %v", res)
	}
	if out != "stored hello\n" {
		t.Errorf("output = %q", out)
	}
}

func TestLoaderMissMapsToNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Loader()("absent"); !errors.Is(err, wren.ErrModuleNotFound) {
		t.Errorf("error = %v, want wren.ErrModuleNotFound", err)
	}
}
