package main

import (
	"fmt"

	"github.com/heretique/wrenpp/dist"
	"github.com/heretique/wrenpp/manifest"
)

// handlePackCommand processes the `wrenpp pack` subcommand.
// Usage:
//
//	wrenpp pack                  # bundle to the manifest's output path
//	wrenpp pack --output app.wrb # custom output path
func handlePackCommand(args []string, verbose bool) {
	var output string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--output", "-o":
			if i+1 >= len(args) {
				fatalf("--output requires a file path")
			}
			output = args[i+1]
			i++
		default:
			fatalf("unknown pack argument: %s", args[i])
		}
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fatalf("%v", err)
	}
	if m == nil {
		fatalf("no %s found", manifest.FileName)
	}
	if output == "" {
		output = m.BundlePath()
	}

	b, err := dist.Pack(m)
	if err != nil {
		fatalf("%v", err)
	}
	if err := dist.WriteFile(b, output); err != nil {
		fatalf("%v", err)
	}

	names := b.ModuleNames()
	fmt.Printf("Packed %d modules into %s\n", len(names), output)
	if verbose {
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
	}
}
