// Command corplang is the thin CLI over pkg/corplang: it owns its own
// argument parsing and talks to the interpreter only through the public
// facade, per spec §6's external-collaborator boundary.
package main

import (
	"os"

	"github.com/corplang/mp/cmd/corplang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
