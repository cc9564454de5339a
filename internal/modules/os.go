package modules

import (
	"fmt"
	"os"
	"runtime"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/value"
)

// RegisterOS installs the "os" builtin module: environment variables,
// process platform, and basic filesystem mutation not already covered
// by the StdLib readFile/writeFile/readLines/fileExists globals.
func RegisterOS(in *interp.Interpreter) {
	in.RegisterModule("os", func(b *interp.ModuleBuilder) {
		b.Val("platform", value.StringValue(runtime.GOOS))

		b.Fn("getEnv", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("os.getEnv(): expected 1 argument but got %d", len(args))
			}
			name, ok := args[0].(value.StringValue)
			if !ok {
				return value.None, fmt.Errorf("os.getEnv(): argument must be a string")
			}
			v, found := os.LookupEnv(string(name))
			if !found {
				return value.None, nil
			}
			return value.StringValue(v), nil
		})

		b.Fn("setEnv", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 2 {
				return value.None, fmt.Errorf("os.setEnv(): expected 2 arguments but got %d", len(args))
			}
			name, ok1 := args[0].(value.StringValue)
			val, ok2 := args[1].(value.StringValue)
			if !ok1 || !ok2 {
				return value.None, fmt.Errorf("os.setEnv(): arguments must be strings")
			}
			if err := os.Setenv(string(name), string(val)); err != nil {
				return value.None, err
			}
			return value.None, nil
		})

		b.Fn("remove", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("os.remove(): expected 1 argument but got %d", len(args))
			}
			name, ok := args[0].(value.StringValue)
			if !ok {
				return value.None, fmt.Errorf("os.remove(): argument must be a string")
			}
			if err := os.Remove(string(name)); err != nil {
				return value.None, err
			}
			return value.None, nil
		})

		b.Fn("mkdirAll", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("os.mkdirAll(): expected 1 argument but got %d", len(args))
			}
			name, ok := args[0].(value.StringValue)
			if !ok {
				return value.None, fmt.Errorf("os.mkdirAll(): argument must be a string")
			}
			if err := os.MkdirAll(string(name), 0o755); err != nil {
				return value.None, err
			}
			return value.None, nil
		})

		b.Fn("listDir", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("os.listDir(): expected 1 argument but got %d", len(args))
			}
			name, ok := args[0].(value.StringValue)
			if !ok {
				return value.None, fmt.Errorf("os.listDir(): argument must be a string")
			}
			entries, err := os.ReadDir(string(name))
			if err != nil {
				return value.None, err
			}
			out := make([]value.Value, len(entries))
			for i, e := range entries {
				out[i] = value.StringValue(e.Name())
			}
			return value.NewArray(out), nil
		})
	})
}
