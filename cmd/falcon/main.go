// Command falcon runs a Falcon source file: minimal wiring to
// internal/runner's run_source entrypoint, not a REPL or LSP.
package main

import (
	"fmt"
	"os"

	"github.com/Gabrial-8467/falcon/internal/config"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <script>\n", os.Args[0])
		os.Exit(1)
	}
	path := os.Args[1]
	if !config.HasSourceExt(path) {
		fmt.Fprintf(os.Stderr, "warning: %s does not have a recognized source extension (%v)\n",
			path, config.SourceFileExtensions)
	}

	if err := run(path); err != nil {
		os.Exit(1)
	}
}
