package main

import (
	"fmt"

	"github.com/heretique/wrenpp"
	"github.com/heretique/wrenpp/dist"
	"github.com/heretique/wrenpp/manifest"
	"github.com/heretique/wrenpp/modstore"
	"github.com/heretique/wrenpp/wren"
)

// handleRunCommand processes the `wrenpp run` subcommand.
// Usage:
//
//	wrenpp run                   # manifest entry module
//	wrenpp run tools/report      # named module from script dirs
//	wrenpp run --bundle app.wrb  # modules served from a bundle
//	wrenpp run --db modules.db   # modules served from a store
func handleRunCommand(args []string, verbose bool) {
	var bundlePath, dbPath string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--bundle", "-b":
			if i+1 >= len(args) {
				fatalf("--bundle requires a file path")
			}
			bundlePath = args[i+1]
			i++
		case "--db":
			if i+1 >= len(args) {
				fatalf("--db requires a file path")
			}
			dbPath = args[i+1]
			i++
		default:
			remaining = append(remaining, args[i])
		}
	}

	module := ""
	if len(remaining) > 0 {
		module = remaining[0]
	}

	loader, entry := buildLoader(bundlePath, dbPath, verbose)
	if module == "" {
		module = entry
	}

	vm := wrenpp.New(wrenpp.WithLoader(loader))
	if err := vm.ExecuteModule(module); err != nil {
		fatalf("%v", err)
	}
}

// buildLoader assembles the module loader for a run: a bundle or a
// store when asked for, the manifest's script directories otherwise.
// The second result is the default entry module.
func buildLoader(bundlePath, dbPath string, verbose bool) (wren.LoadModuleFn, string) {
	if bundlePath != "" {
		b, err := dist.ReadFile(bundlePath)
		if err != nil {
			fatalf("%v", err)
		}
		if verbose {
			fmt.Printf("Loaded bundle %s (%s %s, %d modules)\n",
				bundlePath, b.Project, b.Release, len(b.ModuleNames()))
		}
		return dist.Loader(b, nil), b.Entry
	}

	if dbPath != "" {
		store, err := modstore.Open(dbPath)
		if err != nil {
			fatalf("%v", err)
		}
		// The store lives for the run; the process exit closes it.
		return store.Loader(), "main"
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fatalf("%v", err)
	}
	if m == nil {
		fatalf("no %s found; run inside a project or pass --bundle/--db", manifest.FileName)
	}
	if verbose {
		fmt.Printf("Using manifest in %s\n", m.Dir)
	}
	r := manifest.NewResolver(m)
	return func(name string) (string, error) {
		if _, err := r.Resolve(name); err != nil {
			return "", fmt.Errorf("%w: %v", wren.ErrModuleNotFound, err)
		}
		return r.Load(name)
	}, m.Scripts.Entry
}
