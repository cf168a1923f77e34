// Command agentgraphctl validates, upgrades, canonicalizes, and runs graph
// configs from the shell: the CLI-shaped entrypoint around the
// upgrade -> canonicalize -> validate -> compile -> run pipeline.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
