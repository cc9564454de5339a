// Package stdlib installs the global StdLib functions into an
// Interpreter's global environment. Each builtin validates its own
// argument count and operand types; any error it returns is raised as
// a catchable language throw at the call site.
package stdlib

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/lexer"
	"github.com/cwbudde/go-bob/internal/parser"
	"github.com/cwbudde/go-bob/internal/registry"
	"github.com/cwbudde/go-bob/internal/value"
)

func builtin(name string, fn value.BuiltinFn) *value.BuiltinFunctionValue {
	return &value.BuiltinFunctionValue{Name: name, Fn: fn}
}

func arityErr(name string, want, got int) error {
	return fmt.Errorf("%s(): %w", name, registry.ArityError(name, want, got))
}

// Install registers every StdLib global.
func Install(in *interp.Interpreter) {
	stdin := bufio.NewReader(os.Stdin)

	in.Global.Define("print", builtin("print", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("print", 1, len(args))
		}
		fmt.Println(args[0].ToString())
		return value.None, nil
	}))

	in.Global.Define("printRaw", builtin("printRaw", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("printRaw", 1, len(args))
		}
		fmt.Print(args[0].ToString())
		return value.None, nil
	}))

	in.Global.Define("toString", builtin("toString", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("toString", 1, len(args))
		}
		return value.StringValue(args[0].ToString()), nil
	}))

	in.Global.Define("toNumber", builtin("toNumber", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, nil
		}
		s, ok := args[0].(value.StringValue)
		if !ok {
			return value.None, nil
		}
		trimmed := strings.TrimSpace(string(s))
		if trimmed == "" {
			return value.None, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return value.None, nil
		}
		return value.NumberValue(f), nil
	}))

	in.Global.Define("toInt", builtin("toInt", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("toInt", 1, len(args))
		}
		switch n := args[0].(type) {
		case value.NumberValue:
			return value.Int(int64(n)), nil
		case value.IntValue:
			return n, nil
		default:
			return value.None, fmt.Errorf("toInt() can only be used on numbers")
		}
	}))

	in.Global.Define("toBoolean", builtin("toBoolean", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("toBoolean", 1, len(args))
		}
		return value.Bool(value.Truthy(args[0])), nil
	}))

	in.Global.Define("len", builtin("len", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("len", 1, len(args))
		}
		switch v := args[0].(type) {
		case value.ArrayValue:
			return value.Int(int64(len(*v.Items))), nil
		case value.StringValue:
			return value.Int(int64(len([]rune(string(v))))), nil
		case value.DictValue:
			return value.Int(int64(v.M.Len())), nil
		default:
			return value.None, fmt.Errorf("len() can only be used on arrays, strings, and dictionaries")
		}
	}))

	in.Global.Define("push", builtin("push", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) < 2 {
			return value.None, fmt.Errorf("push(): expected at least 2 arguments but got %d", len(args))
		}
		arr, ok := args[0].(value.ArrayValue)
		if !ok {
			return value.None, fmt.Errorf("first argument to push() must be an array")
		}
		*arr.Items = append(*arr.Items, args[1:]...)
		return arr, nil
	}))

	in.Global.Define("pop", builtin("pop", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("pop", 1, len(args))
		}
		arr, ok := args[0].(value.ArrayValue)
		if !ok {
			return value.None, fmt.Errorf("pop() can only be used on arrays")
		}
		items := *arr.Items
		if len(items) == 0 {
			return value.None, fmt.Errorf("cannot pop from empty array")
		}
		last := items[len(items)-1]
		*arr.Items = items[:len(items)-1]
		return last, nil
	}))

	in.Global.Define("keys", builtin("keys", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("keys", 1, len(args))
		}
		d, ok := args[0].(value.DictValue)
		if !ok {
			return value.None, fmt.Errorf("keys() can only be used on dictionaries")
		}
		ks := d.M.Keys()
		out := make([]value.Value, len(ks))
		for i, k := range ks {
			out[i] = value.StringValue(k)
		}
		return value.NewArray(out), nil
	}))

	in.Global.Define("values", builtin("values", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("values", 1, len(args))
		}
		d, ok := args[0].(value.DictValue)
		if !ok {
			return value.None, fmt.Errorf("values() can only be used on dictionaries")
		}
		var out []value.Value
		d.M.Range(func(_ string, v value.Value) bool {
			out = append(out, v)
			return true
		})
		return value.NewArray(out), nil
	}))

	in.Global.Define("has", builtin("has", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 2 {
			return value.None, arityErr("has", 2, len(args))
		}
		d, ok := args[0].(value.DictValue)
		if !ok {
			return value.None, fmt.Errorf("first argument to has() must be a dictionary")
		}
		key, ok := args[1].(value.StringValue)
		if !ok {
			return value.None, fmt.Errorf("second argument to has() must be a string")
		}
		_, found := d.M.Get(string(key))
		return value.Bool(found), nil
	}))

	in.Global.Define("assert", builtin("assert", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 && len(args) != 2 {
			return value.None, fmt.Errorf("assert(): expected 1 or 2 arguments but got %d", len(args))
		}
		if value.Truthy(args[0]) {
			return value.None, nil
		}
		msg := "Assertion failed: condition is false"
		if len(args) == 2 {
			if s, ok := args[1].(value.StringValue); ok {
				msg += " - " + string(s)
			}
		}
		return value.None, fmt.Errorf("%s", msg)
	}))

	in.Global.Define("time", builtin("time", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 0 {
			return value.None, arityErr("time", 0, len(args))
		}
		return value.NumberValue(float64(time.Now().UnixMicro())), nil
	}))

	in.Global.Define("sleep", builtin("sleep", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("sleep", 1, len(args))
		}
		secs := value.AsNumber(args[0])
		if secs < 0 {
			return value.None, fmt.Errorf("sleep() argument cannot be negative")
		}
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return value.None, nil
	}))

	in.Global.Define("random", builtin("random", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 0 {
			return value.None, arityErr("random", 0, len(args))
		}
		return value.NumberValue(rand.Float64()), nil
	}))

	in.Global.Define("input", builtin("input", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) > 1 {
			return value.None, fmt.Errorf("input(): expected 0 or 1 arguments but got %d", len(args))
		}
		if len(args) == 1 {
			fmt.Print(args[0].ToString())
		}
		text, err := stdin.ReadString('\n')
		if err != nil && text == "" {
			return value.StringValue(""), nil
		}
		return value.StringValue(strings.TrimRight(text, "\r\n")), nil
	}))

	in.Global.Define("type", builtin("type", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("type", 1, len(args))
		}
		return value.StringValue(args[0].Kind().String()), nil
	}))

	in.Global.Define("eval", builtin("eval", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, fmt.Errorf("eval expects exactly 1 argument (string)")
		}
		code, ok := args[0].(value.StringValue)
		if !ok {
			return value.None, fmt.Errorf("eval argument must be a string")
		}
		p := parser.New(lexer.New(string(code)))
		stmts := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			return value.None, fmt.Errorf("eval failed: %v", errs[0])
		}
		in.PushSource(string(code), "<eval>")
		defer in.PopSource()
		if err := in.Interpret(stmts); err != nil {
			return value.None, fmt.Errorf("eval failed: %w", err)
		}
		return value.None, nil
	}))

	in.Global.Define("readFile", builtin("readFile", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("readFile", 1, len(args))
		}
		name, ok := args[0].(value.StringValue)
		if !ok {
			return value.None, fmt.Errorf("readFile() argument must be a string")
		}
		data, err := os.ReadFile(string(name))
		if err != nil {
			return value.None, fmt.Errorf("could not open file: %s", name)
		}
		return value.StringValue(string(data)), nil
	}))

	in.Global.Define("writeFile", builtin("writeFile", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 2 {
			return value.None, arityErr("writeFile", 2, len(args))
		}
		name, ok := args[0].(value.StringValue)
		if !ok {
			return value.None, fmt.Errorf("first argument to writeFile() must be a string")
		}
		content, ok := args[1].(value.StringValue)
		if !ok {
			return value.None, fmt.Errorf("second argument to writeFile() must be a string")
		}
		if err := os.WriteFile(string(name), []byte(content), 0o644); err != nil {
			return value.None, fmt.Errorf("could not create file: %s", name)
		}
		return value.None, nil
	}))

	in.Global.Define("readLines", builtin("readLines", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("readLines", 1, len(args))
		}
		name, ok := args[0].(value.StringValue)
		if !ok {
			return value.None, fmt.Errorf("readLines() argument must be a string")
		}
		f, err := os.Open(string(name))
		if err != nil {
			return value.None, fmt.Errorf("could not open file: %s", name)
		}
		defer f.Close()
		var lines []value.Value
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			lines = append(lines, value.StringValue(sc.Text()))
		}
		return value.NewArray(lines), nil
	}))

	in.Global.Define("fileExists", builtin("fileExists", func(args []value.Value, line, col int) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("fileExists", 1, len(args))
		}
		name, ok := args[0].(value.StringValue)
		if !ok {
			return value.None, fmt.Errorf("fileExists() argument must be a string")
		}
		_, err := os.Stat(string(name))
		return value.Bool(err == nil), nil
	}))

	in.Global.Define("exit", builtin("exit", func(args []value.Value, line, col int) (value.Value, error) {
		code := 0
		if len(args) > 0 {
			if n, ok := args[0].(value.IntValue); ok {
				code = int(n)
			} else if n, ok := args[0].(value.NumberValue); ok {
				code = int(n)
			}
		}
		os.Exit(code)
		return value.None, nil
	}))
}
