// Command bob is the CLI driver for the bob language: a REPL by
// default, or "bob run <path>" to evaluate a script file.
package main

import (
	"os"

	"github.com/cwbudde/go-bob/cmd/bob/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
