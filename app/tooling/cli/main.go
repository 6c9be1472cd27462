// This program provides a command line client for talking to a running
// chainpress node.
package main

import (
	"os"

	"github.com/chainpress/chainpress/app/tooling/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
