package modules

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/value"
)

// RegisterRandom installs the "random" builtin module: a seeded PRNG
// independent of the StdLib "random" global.
func RegisterRandom(in *interp.Interpreter) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	in.RegisterModule("random", func(b *interp.ModuleBuilder) {
		b.Fn("seed", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("random.seed(): expected 1 argument but got %d", len(args))
			}
			rng = rand.New(rand.NewSource(int64(value.AsNumber(args[0]))))
			return value.None, nil
		})
		b.Fn("float", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 0 {
				return value.None, fmt.Errorf("random.float(): expected 0 arguments but got %d", len(args))
			}
			return value.NumberValue(rng.Float64()), nil
		})
		b.Fn("int", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 2 {
				return value.None, fmt.Errorf("random.int(): expected 2 arguments (min, max) but got %d", len(args))
			}
			lo := int64(value.AsNumber(args[0]))
			hi := int64(value.AsNumber(args[1]))
			if hi < lo {
				return value.None, fmt.Errorf("random.int(): max must be >= min")
			}
			return value.Int(lo + rng.Int63n(hi-lo+1)), nil
		})
	})
}
