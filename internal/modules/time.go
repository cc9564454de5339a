package modules

import (
	"fmt"
	"time"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/value"
)

// RegisterTime installs the "time" builtin module: now, monotonic,
// and sleep.
func RegisterTime(in *interp.Interpreter) {
	start := time.Now()

	in.RegisterModule("time", func(b *interp.ModuleBuilder) {
		b.Fn("now", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 0 {
				return value.None, fmt.Errorf("time.now(): expected 0 arguments but got %d", len(args))
			}
			return value.NumberValue(float64(time.Now().UnixNano()) / 1e9), nil
		})

		b.Fn("monotonic", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 0 {
				return value.None, fmt.Errorf("time.monotonic(): expected 0 arguments but got %d", len(args))
			}
			return value.NumberValue(time.Since(start).Seconds()), nil
		})

		b.Fn("sleep", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("time.sleep(): expected 1 argument but got %d", len(args))
			}
			secs := value.AsNumber(args[0])
			if secs < 0 {
				return value.None, fmt.Errorf("time.sleep(): argument cannot be negative")
			}
			time.Sleep(time.Duration(secs * float64(time.Second)))
			return value.None, nil
		})
	})
}
