package main

import (
	"fmt"
	"os"

	"github.com/heretique/wrenpp/dist"
	"github.com/heretique/wrenpp/modstore"
)

// handleModulesCommand processes the `wrenpp modules` subcommand.
// Usage:
//
//	wrenpp modules list [--db modules.db]
//	wrenpp modules import app.wrb [--db modules.db]
//	wrenpp modules get <name> [--db modules.db]
//	wrenpp modules delete <name> [--db modules.db]
func handleModulesCommand(args []string, verbose bool) {
	dbPath := "modules.db"
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "--db" {
			if i+1 >= len(args) {
				fatalf("--db requires a file path")
			}
			dbPath = args[i+1]
			i++
			continue
		}
		remaining = append(remaining, args[i])
	}

	if len(remaining) == 0 {
		fatalf("modules needs an operation: list, import, get, delete")
	}

	store, err := modstore.Open(dbPath)
	if err != nil {
		fatalf("%v", err)
	}
	defer store.Close()

	switch remaining[0] {
	case "list":
		names, err := store.List()
		if err != nil {
			fatalf("%v", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "%d modules in %s\n", len(names), dbPath)
		}

	case "import":
		if len(remaining) < 2 {
			fatalf("modules import needs a bundle file")
		}
		b, err := dist.ReadFile(remaining[1])
		if err != nil {
			fatalf("%v", err)
		}
		if err := store.ImportBundle(b); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Imported %d modules from %s into %s\n",
			len(b.ModuleNames()), remaining[1], dbPath)

	case "get":
		if len(remaining) < 2 {
			fatalf("modules get needs a module name")
		}
		source, err := store.Get(remaining[1])
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Print(source)

	case "delete":
		if len(remaining) < 2 {
			fatalf("modules delete needs a module name")
		}
		if err := store.Delete(remaining[1]); err != nil {
			fatalf("%v", err)
		}

	default:
		fatalf("unknown modules operation: %s", remaining[0])
	}
}
