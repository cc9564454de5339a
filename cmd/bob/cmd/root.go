package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	noColor     bool
	searchPaths []string
)

var rootCmd = &cobra.Command{
	Use:   "bob",
	Short: "bob language interpreter",
	Long: `bob is a tree-walking interpreter for the bob scripting language:
dynamically typed, with classes, closures, tail-call elimination, and
a small host-embeddable module system.

Run with no arguments to start an interactive REPL, or "bob run <path>"
to evaluate a script file.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			in := newInterpreter()
			if _, err := in.EvalFile(args[0]); err != nil {
				exitWithError("%v", err)
			}
			return nil
		}
		return runREPL()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
	rootCmd.PersistentFlags().StringArrayVar(&searchPaths, "search-path", nil, "additional directory to search for file module imports (repeatable)")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
