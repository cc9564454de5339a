package value

import (
	"math/big"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestToStringSnapshot(t *testing.T) {
	arr := NewArray([]Value{Int(1), StringValue("two"), Bool(true)})
	dict := NewDict().(DictValue)
	dict.M.Set("a", Int(1))
	dict.M.Set("b", StringValue("x"))

	cases := map[string]Value{
		"none":     None,
		"bool":     Bool(true),
		"int":      Int(42),
		"big":      NewBig(big.NewInt(123456789)),
		"number":   NumberValue(3.5),
		"number_integral": NumberValue(4.0),
		"string":   StringValue("hello"),
		"array":    arr,
		"dict":     dict,
		"function": &FunctionValue{Name: "f"},
		"builtin":  &BuiltinFunctionValue{Name: "b"},
		"thunk":    ThunkValue{},
		"module":   ModuleValue{Name: "m", Exports: NewOrderedMap()},
	}

	// Snapshots are numbered by call order, so iterate in the recorded
	// order rather than Go's randomized map order.
	order := []string{"thunk", "int", "big", "number", "string", "function",
		"number_integral", "dict", "builtin", "bool", "array", "module", "none"}
	for _, name := range order {
		snaps.MatchSnapshot(t, name, cases[name].ToString())
	}
}

func TestIntPooling(t *testing.T) {
	if Int(5) != Int(5) {
		t.Fatalf("expected pooled small ints to be identical values")
	}
	a := Int(1000)
	b := Int(1000)
	if a != b {
		// not pooled, but should still be equal by value
		if a.(IntValue) != b.(IntValue) {
			t.Fatalf("expected equal IntValue for repeated large int")
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{None, false},
		{Bool(false), false},
		{Bool(true), true},
		{Int(0), false},
		{Int(1), true},
		{StringValue(""), false},
		{StringValue("x"), true},
		{NewArray(nil), false},
		{NewArray([]Value{Int(1)}), true},
		{NewDict(), false},
	}
	for _, tt := range tests {
		if got := Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestEqualsCrossType(t *testing.T) {
	if !Equals(Int(1), NumberValue(1.0)) {
		t.Error("expected Int(1) == Number(1.0)")
	}
	if !Equals(NewBig(big.NewInt(7)), Int(7)) {
		t.Error("expected BigInt(7) == Int(7)")
	}
	if !Equals(Bool(true), Int(1)) {
		t.Error("expected true == 1")
	}
	if Equals(Bool(false), Int(2)) {
		t.Error("expected false != 2")
	}
	if Equals(StringValue("a"), StringValue("b")) {
		t.Error("expected distinct strings to be unequal")
	}
}

func TestOrderedMapInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	m.Set("m", Int(3))

	got := m.Keys()
	want := []string{"z", "a", "m"}
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}

	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Fatal("expected a to be removed")
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

func TestNewOrderedMapFromAlphabetical(t *testing.T) {
	m := NewOrderedMapFrom(map[string]Value{"z": Int(1), "a": Int(2), "m": Int(3)})
	got := m.Keys()
	want := []string{"a", "m", "z"}
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestDictIsInstance(t *testing.T) {
	d := NewDict().(DictValue)
	if d.IsInstance() {
		t.Error("plain dict should not be an instance")
	}
	d.M.Set("__class", StringValue("Animal"))
	if !d.IsInstance() {
		t.Error("dict with __class should be an instance")
	}
	if d.ClassName() != "Animal" {
		t.Errorf("ClassName() = %q, want Animal", d.ClassName())
	}
}
