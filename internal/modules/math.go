package modules

import (
	"fmt"
	"math"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/value"
)

func num1(name string, fn func(float64) float64) func([]value.Value, int, int) (value.Value, error) {
	return func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, fmt.Errorf("math.%s(): expected 1 argument but got %d", name, len(args))
		}
		return value.NumberValue(fn(value.AsNumber(args[0]))), nil
	}
}

// RegisterMath installs the "math" builtin module: unary functions
// and constants over Number.
func RegisterMath(in *interp.Interpreter) {
	in.RegisterModule("math", func(b *interp.ModuleBuilder) {
		b.Val("pi", value.NumberValue(math.Pi))
		b.Val("e", value.NumberValue(math.E))

		b.Fn("abs", num1("abs", math.Abs))
		b.Fn("sqrt", num1("sqrt", math.Sqrt))
		b.Fn("floor", num1("floor", math.Floor))
		b.Fn("ceil", num1("ceil", math.Ceil))
		b.Fn("round", num1("round", math.Round))
		b.Fn("trunc", num1("trunc", math.Trunc))
		b.Fn("sin", num1("sin", math.Sin))
		b.Fn("cos", num1("cos", math.Cos))
		b.Fn("tan", num1("tan", math.Tan))
		b.Fn("log", num1("log", math.Log))
		b.Fn("log2", num1("log2", math.Log2))
		b.Fn("log10", num1("log10", math.Log10))
		b.Fn("exp", num1("exp", math.Exp))

		b.Fn("pow", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 2 {
				return value.None, fmt.Errorf("math.pow(): expected 2 arguments but got %d", len(args))
			}
			return value.NumberValue(math.Pow(value.AsNumber(args[0]), value.AsNumber(args[1]))), nil
		})
		b.Fn("min", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 2 {
				return value.None, fmt.Errorf("math.min(): expected 2 arguments but got %d", len(args))
			}
			return value.NumberValue(math.Min(value.AsNumber(args[0]), value.AsNumber(args[1]))), nil
		})
		b.Fn("max", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 2 {
				return value.None, fmt.Errorf("math.max(): expected 2 arguments but got %d", len(args))
			}
			return value.NumberValue(math.Max(value.AsNumber(args[0]), value.AsNumber(args[1]))), nil
		})
	})
}
