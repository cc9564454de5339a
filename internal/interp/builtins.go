package interp

import (
	"fmt"

	"github.com/cwbudde/go-bob/internal/value"
)

// builtinMethodFn is a host-implemented method: it receives the
// receiver alongside the call arguments, unlike value.BuiltinFn which
// has no receiver slot.
type builtinMethodFn func(recv value.Value, args []value.Value, line, col int) (value.Value, error)

type builtinMethodKey struct {
	Name  string
	Arity int
}

func (in *Interpreter) defineBuiltinMethod(target, name string, arity int, fn builtinMethodFn) {
	m, ok := in.builtinMethods[target]
	if !ok {
		m = make(map[builtinMethodKey]builtinMethodFn)
		in.builtinMethods[target] = m
	}
	m[builtinMethodKey{name, arity}] = fn
}

// lookupBuiltinMethod resolves a built-in method for recv by
// (name, arity): first the receiver's own kind table, then "any".
func (in *Interpreter) lookupBuiltinMethod(recv value.Value, name string, arity int) (builtinMethodFn, bool) {
	for _, target := range []string{recv.Kind().String(), "any"} {
		if m, ok := in.builtinMethods[target]; ok {
			if fn, ok := m[builtinMethodKey{name, arity}]; ok {
				return fn, true
			}
		}
	}
	return nil, false
}

// hasBuiltinMethod reports whether any arity of name exists on the
// target's table or "any", for property reads that must decide "is
// this a method?" before a call-site arity is known.
func (in *Interpreter) hasBuiltinMethod(target, name string) bool {
	for _, t := range []string{target, "any"} {
		m, ok := in.builtinMethods[t]
		if !ok {
			continue
		}
		for k := range m {
			if k.Name == name {
				return true
			}
		}
	}
	return false
}

// installBuiltinMethods populates the per-kind method tables the
// evaluator's property and method dispatch consult: `arr.push(x)`,
// `d.keys()`, `s.len()` and the like. These are the method-form
// counterparts of the StdLib globals; both surfaces share semantics.
func (in *Interpreter) installBuiltinMethods() {
	in.defineBuiltinMethod("array", "len", 0, func(recv value.Value, _ []value.Value, _, _ int) (value.Value, error) {
		a := recv.(value.ArrayValue)
		return value.Int(int64(len(*a.Items))), nil
	})
	in.defineBuiltinMethod("array", "push", 1, func(recv value.Value, args []value.Value, _, _ int) (value.Value, error) {
		a := recv.(value.ArrayValue)
		*a.Items = append(*a.Items, args[0])
		return a, nil
	})
	in.defineBuiltinMethod("array", "pop", 0, func(recv value.Value, _ []value.Value, _, _ int) (value.Value, error) {
		a := recv.(value.ArrayValue)
		items := *a.Items
		if len(items) == 0 {
			return value.None, fmt.Errorf("cannot pop from empty array")
		}
		last := items[len(items)-1]
		*a.Items = items[:len(items)-1]
		return last, nil
	})

	in.defineBuiltinMethod("string", "len", 0, func(recv value.Value, _ []value.Value, _, _ int) (value.Value, error) {
		s := recv.(value.StringValue)
		return value.Int(int64(len([]rune(string(s))))), nil
	})

	in.defineBuiltinMethod("dict", "len", 0, func(recv value.Value, _ []value.Value, _, _ int) (value.Value, error) {
		d := recv.(value.DictValue)
		return value.Int(int64(d.M.Len())), nil
	})
	in.defineBuiltinMethod("dict", "keys", 0, func(recv value.Value, _ []value.Value, _, _ int) (value.Value, error) {
		d := recv.(value.DictValue)
		return dictKeys(d), nil
	})
	in.defineBuiltinMethod("dict", "values", 0, func(recv value.Value, _ []value.Value, _, _ int) (value.Value, error) {
		d := recv.(value.DictValue)
		var out []value.Value
		d.M.Range(func(_ string, v value.Value) bool {
			out = append(out, v)
			return true
		})
		return value.NewArray(out), nil
	})
	in.defineBuiltinMethod("dict", "has", 1, func(recv value.Value, args []value.Value, _, _ int) (value.Value, error) {
		d := recv.(value.DictValue)
		key, ok := args[0].(value.StringValue)
		if !ok {
			return value.None, fmt.Errorf("has() argument must be a string")
		}
		_, found := d.M.Get(string(key))
		return value.Bool(found), nil
	})
}

func dictKeys(d value.DictValue) value.Value {
	ks := d.M.Keys()
	out := make([]value.Value, len(ks))
	for i, k := range ks {
		out[i] = value.StringValue(k)
	}
	return value.NewArray(out)
}
