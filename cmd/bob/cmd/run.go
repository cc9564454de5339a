package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-bob/pkg/bob"
)

var evalExpr string

var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Evaluate a bob script file, or an inline expression with -e",
	Long: `Execute a bob program from a file or inline expression.

Examples:
  # Run a script file
  bob run script.bob

  # Evaluate an inline expression
  bob run -e "print(1 + 2);"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := newInterpreter()
		if evalExpr != "" {
			if _, err := in.EvalString(evalExpr, "<eval>"); err != nil {
				exitWithError("%v", err)
			}
			return nil
		}
		if len(args) == 0 {
			return cmd.Usage()
		}
		if _, err := in.EvalFile(args[0]); err != nil {
			exitWithError("%v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate an inline expression instead of a file")
}

// newInterpreter builds a bob.Interpreter configured from the root
// command's persistent flags.
func newInterpreter() *bob.Interpreter {
	in := bob.New()
	in.SetNoColor(noColor)
	exe, _ := os.Executable()
	in.SetArgv(os.Args, exe)
	in.SetModulePolicy(true, false, searchPaths)
	return in
}

// runREPL implements the bare `bob` invocation: read stdin line by
// line, evaluate each line as bob source, exit cleanly on EOF. A
// bufio.Scanner is enough for the REPL session this interpreter
// supports; no external line-editor dependency.
func runREPL() error {
	in := newInterpreter()
	scanner := bufio.NewScanner(os.Stdin)
	var history []string
	fmt.Println(`bob REPL — Ctrl-D to exit, "history" / "clear" for meta-commands`)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		switch line {
		case "":
			continue
		case "history":
			for i, h := range history {
				fmt.Printf("%d: %s\n", i+1, h)
			}
			continue
		case "clear":
			history = history[:0]
			continue
		}
		history = append(history, line)
		if _, err := in.EvalString(line, "<repl>"); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}
	fmt.Println()
	return nil
}
