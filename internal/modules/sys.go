package modules

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/value"
)

// RegisterSys installs the "sys" builtin module: argv, executable
// path, process exit, and a read-only module-cache snapshot.
func RegisterSys(in *interp.Interpreter) {
	in.RegisterModule("sys", func(b *interp.ModuleBuilder) {
		b.Fn("argv", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 0 {
				return value.None, fmt.Errorf("sys.argv(): expected 0 arguments but got %d", len(args))
			}
			argv := in.Argv()
			out := make([]value.Value, len(argv))
			for i, a := range argv {
				out[i] = value.StringValue(a)
			}
			return value.NewArray(out), nil
		})

		b.Fn("executablePath", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 0 {
				return value.None, fmt.Errorf("sys.executablePath(): expected 0 arguments but got %d", len(args))
			}
			return value.StringValue(in.ExecutablePath()), nil
		})

		b.Fn("moduleCache", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 0 {
				return value.None, fmt.Errorf("sys.moduleCache(): expected 0 arguments but got %d", len(args))
			}
			keys := in.ModuleCacheSnapshot()
			out := make([]value.Value, len(keys))
			for i, k := range keys {
				out[i] = value.StringValue(k)
			}
			return value.NewArray(out), nil
		})

		b.Fn("exit", func(args []value.Value, line, col int) (value.Value, error) {
			code := 0
			if len(args) > 0 {
				code = int(value.AsNumber(args[0]))
			}
			os.Exit(code)
			return value.None, nil
		})
	})
}
