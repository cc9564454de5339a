// Package runtime holds the lexical Environment and the per-call
// ExecutionContext control token: the scope chain and the control-flow
// signal are separate concerns with separate types.
package runtime

import (
	"fmt"

	"github.com/cwbudde/go-bob/internal/value"
)

// Environment is a lexical scope frame with zero or one parent.
type Environment struct {
	store map[string]value.Value
	outer *Environment
}

// NewEnvironment creates a root-level environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]value.Value)}
}

// NewEnclosedEnvironment creates a child scope of outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{store: make(map[string]value.Value), outer: outer}
}

// Define always writes into the current frame, overwriting any
// existing binding of the same name in this frame.
func (e *Environment) Define(name string, v value.Value) {
	e.store[name] = v
}

// Get walks the scope chain to the root.
func (e *Environment) Get(name string) (value.Value, bool) {
	if v, ok := e.store[name]; ok {
		return v, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Assign mutates the nearest enclosing binding. It fails with
// *UndefinedVariableError if name is not reachable from this frame.
func (e *Environment) Assign(name string, v value.Value) error {
	if _, ok := e.store[name]; ok {
		e.store[name] = v
		return nil
	}
	if e.outer != nil {
		return e.outer.Assign(name, v)
	}
	return &UndefinedVariableError{Name: name}
}

// Bindings snapshots only the current frame's bindings, without the
// parent chain. A module body runs in a child of the global scope,
// so its export set is exactly this frame: the file's own top-level
// definitions, not the globals it could see.
func (e *Environment) Bindings() map[string]value.Value {
	out := make(map[string]value.Value, len(e.store))
	for k, v := range e.store {
		out[k] = v
	}
	return out
}

// Outer returns the parent scope, or nil at the root.
func (e *Environment) Outer() *Environment { return e.outer }

// CloneFrameOnly returns a new Environment with the same bindings as e
// (shallow copy of this frame only) sharing e's parent chain, used to
// build a closure's captured environment.
func (e *Environment) CloneFrameOnly() *Environment {
	clone := &Environment{store: make(map[string]value.Value, len(e.store)), outer: e.outer}
	for k, v := range e.store {
		clone.store[k] = v
	}
	return clone
}

// PruneForClosureCapture replaces every Array/Dict binding in the
// current frame with a fresh empty container so a closure never
// aliases the caller's local mutable state. Functions, Modules, and
// other scalar values are left as-is since only containers have
// caller-local mutable identity. Capture touches only the current
// frame; the parent chain is shared, not pruned, so outer scopes keep
// observing their own container mutations normally.
func (e *Environment) PruneForClosureCapture() {
	for k, v := range e.store {
		switch v.(type) {
		case value.ArrayValue:
			e.store[k] = value.NewArray(nil)
		case value.DictValue:
			e.store[k] = value.NewDict()
		}
	}
}

// CaptureClosure builds the environment a Function literal captures:
// clone the current frame (so later definitions in the defining scope
// don't leak in), prune its containers, and keep the parent chain
// shared (not cloned) so sibling closures still observe updates to
// enclosing scopes.
func CaptureClosure(current *Environment) *Environment {
	clone := current.CloneFrameOnly()
	clone.PruneForClosureCapture()
	return clone
}

// UndefinedVariableError is the *Undefined variable* failure returned
// by Assign misses; Get reports a miss through its bool result.
type UndefinedVariableError struct{ Name string }

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("Undefined variable: %s", e.Name)
}
