// Package value implements the tagged-union runtime Value model: the
// central sum type every expression evaluates to, its arithmetic and
// coercion laws, equality, truthiness, and stringification.
//
// Value is an interface implemented by one concrete type per variant,
// rather than a single struct with a discriminant field.
package value

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Value is the central sum type: every Value is exactly one of the
// concrete types in this file.
type Value interface {
	Kind() Kind
	ToString() string
}

// Kind discriminates the Value variants for switch-free dispatch where
// only the tag is needed (error messages, type() builtin, equals).
type Kind int

const (
	KindNone Kind = iota
	KindBoolean
	KindInteger
	KindBigInt
	KindNumber
	KindString
	KindArray
	KindDict
	KindFunction
	KindBuiltinFunction
	KindThunk
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindBigInt:
		return "bigint"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindFunction:
		return "function"
	case KindBuiltinFunction:
		return "builtin"
	case KindThunk:
		return "thunk"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// ---- None ----

type NoneValue struct{}

var None Value = NoneValue{}

func (NoneValue) Kind() Kind       { return KindNone }
func (NoneValue) ToString() string { return "none" }

// ---- Boolean ----

type BoolValue bool

func (b BoolValue) Kind() Kind { return KindBoolean }
func (b BoolValue) ToString() string {
	if b {
		return "true"
	}
	return "false"
}

var (
	True  Value = BoolValue(true)
	False Value = BoolValue(false)
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// ---- Integer ----

// IntValue is a signed 64-bit integer. Arithmetic that overflows
// promotes to BigValue (see Add/Sub/Mul/Shl below).
type IntValue int64

func (i IntValue) Kind() Kind       { return KindInteger }
func (i IntValue) ToString() string { return strconv.FormatInt(int64(i), 10) }

// smallIntPool backs integer literals in [-128, 127] so that repeated
// evaluation of the same small literal yields identical (and cheaply
// equals-equal) values.
var smallIntPool [256]Value

func init() {
	for i := range smallIntPool {
		smallIntPool[i] = IntValue(i - 128)
	}
}

// Int returns a pooled Value for n in [-128, 127], or a fresh IntValue
// otherwise.
func Int(n int64) Value {
	if n >= -128 && n <= 127 {
		return smallIntPool[n+128]
	}
	return IntValue(n)
}

// ---- BigInt ----

// BigValue wraps an arbitrary-precision integer backed by math/big.
type BigValue struct{ V *big.Int }

func (b BigValue) Kind() Kind       { return KindBigInt }
func (b BigValue) ToString() string { return b.V.String() }

func NewBig(i *big.Int) Value { return BigValue{V: i} }

// ---- Number (float) ----

type NumberValue float64

func (n NumberValue) Kind() Kind { return KindNumber }
func (n NumberValue) ToString() string {
	s := strconv.FormatFloat(float64(n), 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// ---- String ----

type StringValue string

func (s StringValue) Kind() Kind       { return KindString }
func (s StringValue) ToString() string { return string(s) }

// ---- Array (shared, mutable) ----

// ArrayValue is a reference to a shared mutable slice. Copying an
// ArrayValue copies the pointer, not the backing slice, so two Values
// can observe the same mutations.
type ArrayValue struct{ Items *[]Value }

func NewArray(items []Value) Value {
	return ArrayValue{Items: &items}
}

func (a ArrayValue) Kind() Kind { return KindArray }
func (a ArrayValue) ToString() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range *a.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(displayElem(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

// ---- Dict (shared, mutable, insertion-ordered) ----

// DictValue is a reference to a shared mutable string-keyed map. Key
// order is insertion order.
type DictValue struct{ M *OrderedMap }

func NewDict() Value {
	return DictValue{M: NewOrderedMap()}
}

func (d DictValue) Kind() Kind { return KindDict }
func (d DictValue) ToString() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	d.M.Range(func(k string, v Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		sb.WriteString(displayElem(v))
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}

// IsInstance reports whether d carries a "__class" field, i.e. is a
// class instance rather than a plain dictionary.
func (d DictValue) IsInstance() bool {
	_, ok := d.M.Get("__class")
	return ok
}

func (d DictValue) ClassName() string {
	if v, ok := d.M.Get("__class"); ok {
		if s, ok := v.(StringValue); ok {
			return string(s)
		}
	}
	return ""
}

// displayElem stringifies a value the way it appears nested inside an
// array or dict: strings are quoted, everything else uses ToString.
func displayElem(v Value) string {
	if s, ok := v.(StringValue); ok {
		return strconv.Quote(string(s))
	}
	return v.ToString()
}

// ---- Function ----

// FunctionValue is a user-defined function: its parameter list, body
// (opaque here as `any` to avoid an import cycle with package ast —
// the interpreter package casts back to []ast.Stmt), captured
// environment, and optional owner-class / source-module tags.
type FunctionValue struct {
	Name       string
	Params     []string
	Body       any
	Closure    any // *runtime.Environment
	OwnerClass string
	SourceMod  string
}

func (f *FunctionValue) Kind() Kind       { return KindFunction }
func (f *FunctionValue) ToString() string { return fmt.Sprintf("<function %s>", nameOrAnon(f.Name)) }

func nameOrAnon(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}

// ---- BuiltinFunction ----

// BuiltinFn is the host-callable signature: args plus the call site.
type BuiltinFn func(args []Value, line, col int) (Value, error)

type BuiltinFunctionValue struct {
	Name string
	Fn   BuiltinFn
}

func (b *BuiltinFunctionValue) Kind() Kind       { return KindBuiltinFunction }
func (b *BuiltinFunctionValue) ToString() string { return fmt.Sprintf("<function %s>", nameOrAnon(b.Name)) }

// ---- Thunk ----

// ThunkValue is a deferred zero-argument computation, used only for
// tail calls. Force is supplied by the interpreter package.
type ThunkValue struct {
	Force func() (Value, error)
}

func (t ThunkValue) Kind() Kind       { return KindThunk }
func (t ThunkValue) ToString() string { return "<thunk>" }

// ---- Module ----

// ModuleValue is an immutable, named bundle of exports.
type ModuleValue struct {
	Name    string
	Exports *OrderedMap
}

func (m ModuleValue) Kind() Kind       { return KindModule }
func (m ModuleValue) ToString() string { return fmt.Sprintf("<module %s>", m.Name) }

// ---- Predicates / extractors ----

func IsNone(v Value) bool { return v.Kind() == KindNone }

// AsInt extracts an int64 from an Integer Value, or 0 if v is not an Integer.
func AsInt(v Value) int64 {
	if i, ok := v.(IntValue); ok {
		return int64(i)
	}
	return 0
}

func AsString(v Value) string {
	if s, ok := v.(StringValue); ok {
		return string(s)
	}
	return ""
}

// AsNumber extracts a float64 from any numeric variant (Number,
// Integer, BigInt), or 0 for everything else. Builtins taking a
// numeric argument accept Integer and Number interchangeably.
func AsNumber(v Value) float64 {
	switch n := v.(type) {
	case NumberValue:
		return float64(n)
	case IntValue:
		return float64(n)
	case BigValue:
		f, _ := new(big.Float).SetInt(n.V).Float64()
		return f
	}
	return 0
}

// ---- Truthiness ----

func Truthy(v Value) bool {
	switch t := v.(type) {
	case NoneValue:
		return false
	case BoolValue:
		return bool(t)
	case IntValue:
		return t != 0
	case BigValue:
		return t.V.Sign() != 0
	case NumberValue:
		return t != 0
	case StringValue:
		return len(t) > 0
	case ArrayValue:
		return len(*t.Items) > 0
	case DictValue:
		return t.M.Len() > 0
	case *FunctionValue, *BuiltinFunctionValue, ModuleValue:
		return true
	default:
		return true
	}
}

// ---- Equality ----

// Equals is the language's equality law: same variant and
// structurally equal, Function/Builtin equal only by identity,
// Number<->Integer<->BigInt compare by mathematical value, and
// Number<->Boolean equate 0<->false, nonzero<->true.
func Equals(a, b Value) bool {
	switch x := a.(type) {
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case BoolValue:
		switch y := b.(type) {
		case BoolValue:
			return x == y
		case NumberValue:
			return (y != 0) == bool(x)
		case IntValue:
			return (y != 0) == bool(x)
		}
		return false
	case IntValue:
		switch y := b.(type) {
		case IntValue:
			return x == y
		case NumberValue:
			return float64(x) == float64(y)
		case BigValue:
			return big.NewInt(int64(x)).Cmp(y.V) == 0
		case BoolValue:
			return (x != 0) == bool(y)
		}
		return false
	case BigValue:
		switch y := b.(type) {
		case BigValue:
			return x.V.Cmp(y.V) == 0
		case IntValue:
			return x.V.Cmp(big.NewInt(int64(y))) == 0
		case NumberValue:
			f := new(big.Float).SetInt(x.V)
			yf := big.NewFloat(float64(y))
			return f.Cmp(yf) == 0
		}
		return false
	case NumberValue:
		switch y := b.(type) {
		case NumberValue:
			return x == y
		case IntValue:
			return float64(x) == float64(y)
		case BoolValue:
			return (x != 0) == bool(y)
		case BigValue:
			f := new(big.Float).SetInt(y.V)
			return big.NewFloat(float64(x)).Cmp(f) == 0
		}
		return false
	case StringValue:
		y, ok := b.(StringValue)
		return ok && x == y
	case ArrayValue:
		y, ok := b.(ArrayValue)
		if !ok || len(*x.Items) != len(*y.Items) {
			return false
		}
		for i := range *x.Items {
			if !Equals((*x.Items)[i], (*y.Items)[i]) {
				return false
			}
		}
		return true
	case DictValue:
		y, ok := b.(DictValue)
		if !ok || x.M.Len() != y.M.Len() {
			return false
		}
		equal := true
		x.M.Range(func(k string, v Value) bool {
			yv, ok := y.M.Get(k)
			if !ok || !Equals(v, yv) {
				equal = false
				return false
			}
			return true
		})
		return equal
	case *FunctionValue:
		y, ok := b.(*FunctionValue)
		return ok && x == y
	case *BuiltinFunctionValue:
		y, ok := b.(*BuiltinFunctionValue)
		return ok && x == y
	case ThunkValue:
		return false
	case ModuleValue:
		y, ok := b.(ModuleValue)
		return ok && x.Name == y.Name && x.Exports == y.Exports
	}
	return false
}

// OrderedMap is a string-keyed map that preserves insertion order,
// backing DictValue and ModuleValue exports.
type OrderedMap struct {
	keys []string
	idx  map[string]int
	vals map[string]Value
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{idx: map[string]int{}, vals: map[string]Value{}}
}

// NewOrderedMapFrom builds an OrderedMap from a plain map, ordering
// keys alphabetically since a Go map carries no declaration order of
// its own. Used for module exports snapshotted from an Environment's
// top-level bindings.
func NewOrderedMapFrom(m map[string]Value) *OrderedMap {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := NewOrderedMap()
	for _, k := range keys {
		out.Set(k, m[k])
	}
	return out
}

func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *OrderedMap) Set(key string, v Value) {
	if _, ok := m.idx[key]; !ok {
		m.idx[key] = len(m.keys)
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *OrderedMap) Delete(key string) {
	if _, ok := m.idx[key]; !ok {
		return
	}
	delete(m.vals, key)
	delete(m.idx, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	for i, k := range m.keys {
		m.idx[k] = i
	}
}

func (m *OrderedMap) Len() int { return len(m.keys) }

func (m *OrderedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range iterates key/value pairs in insertion order, stopping early if
// f returns false.
func (m *OrderedMap) Range(f func(key string, v Value) bool) {
	for _, k := range m.keys {
		if !f(k, m.vals[k]) {
			return
		}
	}
}

