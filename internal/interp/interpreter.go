// Package interp implements the evaluation core: the
// Evaluator/Executor AST visitors, call resolution and method
// dispatch, the tail-call trampoline, and the Interpreter orchestrator
// that owns the global environment, registries, and module cache.
//
// evaluator.go, executor.go, calls.go, and module.go all operate on
// the single Interpreter defined here — one package housing the
// runtime state plus the visitor methods, rather than separate
// objects per visitor.
package interp

import (
	"fmt"

	"github.com/cwbudde/go-bob/internal/ast"
	"github.com/cwbudde/go-bob/internal/diag"
	"github.com/cwbudde/go-bob/internal/registry"
	"github.com/cwbudde/go-bob/internal/runtime"
	"github.com/cwbudde/go-bob/internal/value"
)

// ModulePolicy controls how import specifiers resolve.
type ModulePolicy struct {
	AllowFileImports      bool
	AllowBuiltinImports   bool
	PreferFileOverBuiltin bool
	SearchPaths           []string
	BuiltinAllowList      map[string]bool // nil means "no allow-list restriction"
	BuiltinDenyList       map[string]bool
}

// ModuleBuilder is the host callback surface for RegisterModule:
// Fn(name, builtin) and Val(name, value) populate a module's exports.
type ModuleBuilder struct {
	exports *value.OrderedMap
}

func (b *ModuleBuilder) Fn(name string, fn value.BuiltinFn) {
	b.exports.Set(name, &value.BuiltinFunctionValue{Name: name, Fn: fn})
}

func (b *ModuleBuilder) Val(name string, v value.Value) {
	b.exports.Set(name, v)
}

// Interpreter is the single-threaded orchestrator: it owns the global
// Environment, the Function/Class/Extension registries, the module
// cache, and drives the trampoline.
type Interpreter struct {
	Global *runtime.Environment

	Functions  *registry.FunctionRegistry
	Classes    *registry.ClassRegistry
	Extensions *registry.ExtensionRegistry

	Reporter diag.Reporter

	moduleCache map[string]value.Value
	builtins    map[string]func(*ModuleBuilder)

	// builtinMethods holds the per-kind method tables ("array",
	// "string", "dict", "number", "any") that property reads and
	// method calls on non-class receivers dispatch through; see
	// installBuiltinMethods.
	builtinMethods map[string]map[builtinMethodKey]builtinMethodFn

	policy ModulePolicy

	argv           []string
	executablePath string

	// importerDir is the directory of the module currently being
	// executed, used to resolve relative import specifiers.
	importerDir []string

	// pendingThrow is the single-slot channel carrying a throw raised
	// inside a forced Thunk (whose originating frame has already
	// returned) back to the Evaluate call draining the chain.
	pendingThrow       bool
	pendingThrowValue  value.Value
	pendingThrowKind   string
	pendingThrowLine   int
	pendingThrowColumn int
}

// New creates an Interpreter with an empty global scope, registries,
// and the built-in per-kind method tables installed.
func New() *Interpreter {
	in := &Interpreter{
		Global:         runtime.NewEnvironment(),
		Functions:      registry.NewFunctionRegistry(),
		Classes:        registry.NewClassRegistry(),
		Extensions:     registry.NewExtensionRegistry(),
		moduleCache:    make(map[string]value.Value),
		builtins:       make(map[string]func(*ModuleBuilder)),
		builtinMethods: make(map[string]map[builtinMethodKey]builtinMethodFn),
		policy:         ModulePolicy{AllowFileImports: true, AllowBuiltinImports: true, PreferFileOverBuiltin: false},
	}
	in.installBuiltinMethods()
	return in
}

func (in *Interpreter) SetArgv(args []string, executablePath string) {
	in.argv = args
	in.executablePath = executablePath
}

func (in *Interpreter) Argv() []string         { return in.argv }
func (in *Interpreter) ExecutablePath() string { return in.executablePath }

func (in *Interpreter) SetModulePolicy(allowFiles, preferFiles bool, searchPaths []string) {
	in.policy.AllowFileImports = allowFiles
	in.policy.PreferFileOverBuiltin = preferFiles
	in.policy.SearchPaths = searchPaths
}

func (in *Interpreter) SetBuiltinModulePolicy(allow bool) {
	in.policy.AllowBuiltinImports = allow
}

func (in *Interpreter) SetBuiltinModuleAllowList(names ...string) {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	in.policy.BuiltinAllowList = m
}

func (in *Interpreter) SetBuiltinModuleDenyList(names ...string) {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	in.policy.BuiltinDenyList = m
}

func (in *Interpreter) RegisterModule(name string, builder func(*ModuleBuilder)) {
	in.builtins[name] = builder
}

func (in *Interpreter) SetErrorReporter(r diag.Reporter) { in.Reporter = r }

// PushSource and PopSource forward to the configured Reporter so
// callers (pkg/bob's EvalString/EvalFile) can attach file/source
// context to diagnostics before interpreting. No-ops with no Reporter.
func (in *Interpreter) PushSource(source, fileName string) {
	if in.Reporter != nil {
		in.Reporter.PushSource(source, fileName)
	}
}

func (in *Interpreter) PopSource() {
	if in.Reporter != nil {
		in.Reporter.PopSource()
	}
}

// ModuleCacheSnapshot exposes the cache keys currently resolved, for
// the `sys` builtin module's read-only cache snapshot.
func (in *Interpreter) ModuleCacheSnapshot() []string {
	keys := make([]string, 0, len(in.moduleCache))
	for k := range in.moduleCache {
		keys = append(keys, k)
	}
	return keys
}

// Interpret runs a sequence of top-level statements against the
// global environment.
func (in *Interpreter) Interpret(stmts []ast.Stmt) error {
	ctx := runtime.NewExecutionContext(false)
	for _, s := range stmts {
		if err := in.execStmt(s, in.Global, ctx); err != nil {
			return err
		}
		if ctx.HasThrow {
			return in.uncaughtThrow(ctx)
		}
	}
	return nil
}

func (in *Interpreter) uncaughtThrow(ctx *runtime.ExecutionContext) error {
	v := ctx.ThrownValue
	msg := v.ToString()
	kind := ctx.ThrowKind
	if kind == "" {
		kind = "Runtime Error"
	}
	if in.Reporter != nil {
		in.Reporter.ReportError(ctx.ThrowLine, ctx.ThrowColumn, kind, msg, "", true)
	}
	return &diag.Error{Kind: kind, Message: msg, Line: ctx.ThrowLine, Column: ctx.ThrowColumn}
}

// Evaluate evaluates expr, then drains any resulting Thunk chain:
// while the result is a Thunk, invoke it and replace the result.
// Draining here is never premature — a tail-call Thunk reaches this
// loop without passing through a nested Evaluate, because the Return
// statement hands its expression to evalExpr directly, one level
// below the trampoline. That structural guarantee replaces any
// "currently forcing" flag: a nested Evaluate during a Force (a
// non-tail call made inside a trampolined body) only ever drains
// Thunk chains of its own, in a bounded loop of its own.
func (in *Interpreter) Evaluate(e ast.Expr, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	v, err := in.evalExpr(e, env, ctx)
	if err != nil {
		return nil, err
	}
	for {
		th, ok := v.(value.ThunkValue)
		if !ok {
			return v, nil
		}
		v, err = th.Force()
		if err != nil {
			return nil, err
		}
		if in.takePendingThrow(ctx) {
			return value.None, nil
		}
	}
}

func (in *Interpreter) setPendingThrow(v value.Value, kind string, line, col int) {
	in.pendingThrow = true
	in.pendingThrowValue = v
	in.pendingThrowKind = kind
	in.pendingThrowLine = line
	in.pendingThrowColumn = col
}

// takePendingThrow transfers a pending throw onto ctx, clearing the
// slot. Reports whether a throw was pending.
func (in *Interpreter) takePendingThrow(ctx *runtime.ExecutionContext) bool {
	if !in.pendingThrow {
		return false
	}
	in.pendingThrow = false
	ctx.SetThrowWithKind(in.pendingThrowValue, in.pendingThrowKind, in.pendingThrowLine, in.pendingThrowColumn)
	in.pendingThrowValue = nil
	return true
}

func runtimeErrorf(line, col int, format string, args ...any) error {
	return &diag.Error{Kind: "Runtime Error", Message: fmt.Sprintf(format, args...), Line: line, Column: col}
}
