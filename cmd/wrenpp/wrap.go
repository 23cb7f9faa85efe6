package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/heretique/wrenpp/gowrap"
	"github.com/heretique/wrenpp/manifest"
)

// handleWrapCommand processes the `wrenpp wrap` subcommand.
// Usage:
//
//	wrenpp wrap                    # all packages from wrenpp.toml [wrap]
//	wrenpp wrap strings            # single package, ad-hoc
//	wrenpp wrap --output ./gen ... # custom output dir
func handleWrapCommand(args []string, verbose bool) {
	outputDir := "bindings"
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "--output" || args[i] == "-o" {
			if i+1 >= len(args) {
				fatalf("--output requires a directory path")
			}
			outputDir = args[i+1]
			i++
			continue
		}
		remaining = append(remaining, args[i])
	}

	type target struct {
		module  string
		pkg     string
		include map[string]bool
	}
	var targets []target

	if len(remaining) > 0 {
		for _, pkg := range remaining {
			targets = append(targets, target{module: path.Base(pkg), pkg: pkg})
		}
	} else {
		m, err := manifest.FindAndLoad(".")
		if err != nil {
			fatalf("%v", err)
		}
		if m == nil {
			fatalf("no %s found and no packages given", manifest.FileName)
		}
		if len(m.Wrap) == 0 {
			fatalf("no [wrap] sections configured in %s", manifest.FileName)
		}
		for module, spec := range m.Wrap {
			t := target{module: module, pkg: spec.Package}
			if len(spec.Include) > 0 {
				t.include = make(map[string]bool, len(spec.Include))
				for _, name := range spec.Include {
					t.include[name] = true
				}
			}
			targets = append(targets, t)
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fatalf("%v", err)
	}

	for _, t := range targets {
		model, err := gowrap.IntrospectPackage(t.pkg, t.include)
		if err != nil {
			fatalf("%v", err)
		}

		src, err := gowrap.GenerateGo(model, gowrap.GoOptions{
			Package: filepath.Base(outputDir),
			Module:  t.module,
		})
		if err != nil {
			fatalf("%v", err)
		}
		goPath := filepath.Join(outputDir, model.Name+"_bindings.go")
		if err := os.WriteFile(goPath, src, 0o644); err != nil {
			fatalf("%v", err)
		}

		wrenPath := filepath.Join(outputDir, model.Name+manifest.ScriptExtension)
		if err := os.WriteFile(wrenPath, gowrap.GenerateWren(model), 0o644); err != nil {
			fatalf("%v", err)
		}

		fmt.Printf("Wrapped %s: %d functions, %d types -> %s\n",
			t.pkg, len(model.Functions), len(model.Types), outputDir)
		if verbose {
			for _, fn := range model.Functions {
				fmt.Printf("  func %s\n", gowrap.Signature(fn.Name, fn.Arity()))
			}
			for _, typ := range model.Types {
				fmt.Printf("  type %s (%d methods)\n", typ.Name, len(typ.Methods))
			}
		}
	}
}
