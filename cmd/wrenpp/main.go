// wrenpp CLI - runs scripts, packs bundles, and manages module stores.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wrenpp [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run [module]       Run a module (defaults to the manifest entry)\n")
		fmt.Fprintf(os.Stderr, "  pack               Pack the project's scripts into a bundle\n")
		fmt.Fprintf(os.Stderr, "  modules <op>       Manage a module store (list, import, get, delete)\n")
		fmt.Fprintf(os.Stderr, "  wrap [packages]    Generate Go bindings for Go packages\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wrenpp run                  # Run the manifest's entry module\n")
		fmt.Fprintf(os.Stderr, "  wrenpp run tools/report     # Run a specific module\n")
		fmt.Fprintf(os.Stderr, "  wrenpp run --bundle app.wrb # Run the bundle's entry module\n")
		fmt.Fprintf(os.Stderr, "  wrenpp pack                 # Write the project bundle\n")
		fmt.Fprintf(os.Stderr, "  wrenpp modules import app.wrb --db modules.db\n")
		fmt.Fprintf(os.Stderr, "  wrenpp wrap strings         # Generate bindings for package strings\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	switch args[0] {
	case "run":
		handleRunCommand(args[1:], *verbose)
	case "pack":
		handlePackCommand(args[1:], *verbose)
	case "modules":
		handleModulesCommand(args[1:], *verbose)
	case "wrap":
		handleWrapCommand(args[1:], *verbose)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
	os.Exit(1)
}
