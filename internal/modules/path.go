package modules

import (
	"fmt"
	"path/filepath"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/value"
)

func pathStr1(name string, fn func(string) string) func([]value.Value, int, int) (value.Value, error) {
	return func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, fmt.Errorf("path.%s(): expected 1 argument but got %d", name, len(args))
		}
		s, ok := args[0].(value.StringValue)
		if !ok {
			return value.None, fmt.Errorf("path.%s(): argument must be a string", name)
		}
		return value.StringValue(fn(string(s))), nil
	}
}

// RegisterPath installs the "path" builtin module.
func RegisterPath(in *interp.Interpreter) {
	in.RegisterModule("path", func(b *interp.ModuleBuilder) {
		b.Fn("base", pathStr1("base", filepath.Base))
		b.Fn("dir", pathStr1("dir", filepath.Dir))
		b.Fn("ext", pathStr1("ext", filepath.Ext))
		b.Fn("clean", pathStr1("clean", filepath.Clean))

		b.Fn("isAbs", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("path.isAbs(): expected 1 argument but got %d", len(args))
			}
			s, ok := args[0].(value.StringValue)
			if !ok {
				return value.None, fmt.Errorf("path.isAbs(): argument must be a string")
			}
			return value.Bool(filepath.IsAbs(string(s))), nil
		})

		b.Fn("abs", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("path.abs(): expected 1 argument but got %d", len(args))
			}
			s, ok := args[0].(value.StringValue)
			if !ok {
				return value.None, fmt.Errorf("path.abs(): argument must be a string")
			}
			abs, err := filepath.Abs(string(s))
			if err != nil {
				return value.None, err
			}
			return value.StringValue(abs), nil
		})

		b.Fn("join", func(args []value.Value, line, col int) (value.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				s, ok := a.(value.StringValue)
				if !ok {
					return value.None, fmt.Errorf("path.join(): all arguments must be strings")
				}
				parts[i] = string(s)
			}
			return value.StringValue(filepath.Join(parts...)), nil
		})
	})
}
