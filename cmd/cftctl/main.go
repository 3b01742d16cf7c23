package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cftops/cftctl/cmd/cftctl/commands"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "v0.0.0"

// Entry point of the application.
func main() {
	if err := commands.Root(version).Execute(); err != nil {
		// Failed results have already been printed.
		if !errors.Is(err, commands.ErrFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
