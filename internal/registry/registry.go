// Package registry implements the Function, Class, and Extension
// registries: overload tables keyed by (name, arity), inheritance
// walks bounded by a depth guard, and the built-in per-target
// extension tables.
package registry

import (
	"fmt"

	"github.com/cwbudde/go-bob/internal/value"
)

// maxInheritanceDepth bounds class-parent-chain walks.
const maxInheritanceDepth = 256

// overloadKey identifies one entry of a (name, arity) overload table.
type overloadKey struct {
	Name  string
	Arity int
}

// FieldInit is a class field name paired with its initializer
// expression, kept opaque here (package ast owns the concrete type) to
// avoid an import cycle; the interpreter package supplies the
// concrete ast.Expr and casts back when evaluating defaults.
type FieldInit struct {
	Name string
	Init any // ast.Expr
}

// ClassEntry is one class registry record. The merged view of field
// defaults across the parent chain comes from MergedFields rather
// than a materialized template.
type ClassEntry struct {
	Name    string
	Parent  string // empty if none
	Methods map[overloadKey]*value.FunctionValue
	Fields  []FieldInit
}

// ClassRegistry owns every declared class, keyed by name.
type ClassRegistry struct {
	classes map[string]*ClassEntry
}

func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{classes: make(map[string]*ClassEntry)}
}

func (r *ClassRegistry) Define(name, parent string) *ClassEntry {
	e := &ClassEntry{Name: name, Parent: parent, Methods: make(map[overloadKey]*value.FunctionValue)}
	r.classes[name] = e
	return e
}

func (r *ClassRegistry) Get(name string) (*ClassEntry, bool) {
	e, ok := r.classes[name]
	return e, ok
}

func (r *ClassRegistry) DefineMethod(class, name string, arity int, fn *value.FunctionValue) {
	e, ok := r.classes[class]
	if !ok {
		return
	}
	e.Methods[overloadKey{name, arity}] = fn
}

// LookupDirect finds a method declared directly on class (no parent walk).
func (r *ClassRegistry) LookupDirect(class, name string, arity int) (*value.FunctionValue, bool) {
	e, ok := r.classes[class]
	if !ok {
		return nil, false
	}
	fn, ok := e.Methods[overloadKey{name, arity}]
	return fn, ok
}

// LookupOverload walks the parent chain starting at class, bounded by
// maxInheritanceDepth.
func (r *ClassRegistry) LookupOverload(class, name string, arity int) (*value.FunctionValue, bool) {
	cur := class
	for depth := 0; depth < maxInheritanceDepth && cur != ""; depth++ {
		if fn, ok := r.LookupDirect(cur, name, arity); ok {
			return fn, true
		}
		e, ok := r.classes[cur]
		if !ok {
			break
		}
		cur = e.Parent
	}
	return nil, false
}

// AnyOverload reports whether class (or any ancestor) declares name at
// any arity, returning one such method. Used by property reads, which
// must decide "is this a method?" before the call-site arity is known.
func (r *ClassRegistry) AnyOverload(class, name string) (*value.FunctionValue, bool) {
	cur := class
	for depth := 0; depth < maxInheritanceDepth && cur != ""; depth++ {
		e, ok := r.classes[cur]
		if !ok {
			break
		}
		for k, fn := range e.Methods {
			if k.Name == name {
				return fn, true
			}
		}
		cur = e.Parent
	}
	return nil, false
}

// ParentOf returns the declared parent class name, or "" if class is
// unknown or has no parent.
func (r *ClassRegistry) ParentOf(class string) string {
	if e, ok := r.classes[class]; ok {
		return e.Parent
	}
	return ""
}

// MergedFields walks the parent chain root-first and returns the field
// initializer list with parent fields first, child fields overriding
// on name conflict.
func (r *ClassRegistry) MergedFields(class string) []FieldInit {
	var chain []string
	cur := class
	for depth := 0; depth < maxInheritanceDepth && cur != ""; depth++ {
		chain = append(chain, cur)
		cur = r.ParentOf(cur)
	}
	// chain is child-to-root; reverse to root-to-child.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	order := []string{}
	byName := map[string]FieldInit{}
	for _, cls := range chain {
		e, ok := r.classes[cls]
		if !ok {
			continue
		}
		for _, f := range e.Fields {
			if _, seen := byName[f.Name]; !seen {
				order = append(order, f.Name)
			}
			byName[f.Name] = f
		}
	}
	out := make([]FieldInit, 0, len(order))
	for _, n := range order {
		out = append(out, byName[n])
	}
	return out
}

// ExtensionRegistry maps target -> name -> arity -> Function, for
// built-in targets ("string","array","dict","number","any") and for
// user class names.
type ExtensionRegistry struct {
	byTarget map[string]map[overloadKey]*value.FunctionValue
}

func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{byTarget: make(map[string]map[overloadKey]*value.FunctionValue)}
}

func (r *ExtensionRegistry) Define(target, name string, arity int, fn *value.FunctionValue) {
	m, ok := r.byTarget[target]
	if !ok {
		m = make(map[overloadKey]*value.FunctionValue)
		r.byTarget[target] = m
	}
	m[overloadKey{name, arity}] = fn
}

// Lookup finds any arity of name on target (used by property-read
// dispatcher construction, which re-resolves exact arity at call time).
func (r *ExtensionRegistry) Lookup(target, name string) (*value.FunctionValue, bool) {
	m, ok := r.byTarget[target]
	if !ok {
		return nil, false
	}
	for k, fn := range m {
		if k.Name == name {
			return fn, true
		}
	}
	return nil, false
}

func (r *ExtensionRegistry) LookupOverload(target, name string, arity int) (*value.FunctionValue, bool) {
	m, ok := r.byTarget[target]
	if !ok {
		return nil, false
	}
	fn, ok := m[overloadKey{name, arity}]
	return fn, ok
}

// FunctionRegistry tracks top-level named functions for lookup by
// (name, arity). Lifetime management is left to the garbage collector:
// a Function stays alive as long as a Value, Environment, or registry
// entry refers to it, so no manual reclamation happens here.
type FunctionRegistry struct {
	byName map[overloadKey]*value.FunctionValue
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{byName: make(map[overloadKey]*value.FunctionValue)}
}

func (r *FunctionRegistry) Define(name string, arity int, fn *value.FunctionValue) {
	r.byName[overloadKey{name, arity}] = fn
}

func (r *FunctionRegistry) Lookup(name string, arity int) (*value.FunctionValue, bool) {
	fn, ok := r.byName[overloadKey{name, arity}]
	return fn, ok
}

// LookupAny finds any arity of name, for contexts (a bare variable
// reference to a function) where no call-site arity exists yet.
func (r *FunctionRegistry) LookupAny(name string) (*value.FunctionValue, bool) {
	for k, fn := range r.byName {
		if k.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// Compact is a no-op: the garbage collector reclaims unreferenced
// Functions/Thunks once no Value or Environment points at them, so
// there is nothing to sweep.
func (r *FunctionRegistry) Compact() {}

func arityMismatch(name string, want, got int) error {
	return fmt.Errorf("Expected %d arguments but got %d", want, got)
}

// ArityError returns the stable "Expected N arguments but got M"
// message used across call sites.
func ArityError(name string, want, got int) error { return arityMismatch(name, want, got) }
