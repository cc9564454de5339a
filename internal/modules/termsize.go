package modules

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/value"
)

// RegisterTermSize installs the "termsize" builtin module, backed by
// golang.org/x/term.
func RegisterTermSize(in *interp.Interpreter) {
	in.RegisterModule("termsize", func(b *interp.ModuleBuilder) {
		b.Fn("width", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 0 {
				return value.None, fmt.Errorf("termsize.width(): expected 0 arguments but got %d", len(args))
			}
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				return value.Int(0), nil
			}
			return value.Int(int64(w)), nil
		})
		b.Fn("height", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 0 {
				return value.None, fmt.Errorf("termsize.height(): expected 0 arguments but got %d", len(args))
			}
			_, h, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				return value.Int(0), nil
			}
			return value.Int(int64(h)), nil
		})
		b.Fn("isTerminal", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 0 {
				return value.None, fmt.Errorf("termsize.isTerminal(): expected 0 arguments but got %d", len(args))
			}
			return value.Bool(term.IsTerminal(int(os.Stdout.Fd()))), nil
		})
	})
}
