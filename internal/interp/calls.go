package interp

import (
	"fmt"

	"github.com/cwbudde/go-bob/internal/ast"
	"github.com/cwbudde/go-bob/internal/registry"
	"github.com/cwbudde/go-bob/internal/runtime"
	"github.com/cwbudde/go-bob/internal/value"
)

// invokeCall resolves a Call node's callee (plain function, bound
// method, super-call, or an arbitrary callable expression), evaluates
// its arguments, and performs the invocation.
// It always returns a fully resolved call result, which may itself be
// an unforced Thunk when the callee's own return statement was a tail
// call — draining that chain is the caller's responsibility via
// Interpreter.Evaluate. Every failure mode the language can catch is
// surfaced through ctx.SetThrow, matching the ExecutionContext-threaded
// control flow the rest of the evaluator/executor use; the error
// return is reserved for conditions with no catchable representation.
func (in *Interpreter) invokeCall(call *ast.Call, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	line, col := call.Pos().Line, call.Pos().Column

	if prop, ok := call.Callee.(*ast.Property); ok {
		return in.invokeMethodCall(call, prop, env, ctx)
	}

	if v, ok := call.Callee.(*ast.Var); ok {
		if bound, found := env.Get(v.Name); found {
			args, err := in.evalArgs(call.Args, env, ctx)
			if err != nil || ctx.HasThrow {
				return value.None, err
			}
			return in.callValue(bound, args, line, col, nil, "", ctx)
		}
		args, err := in.evalArgs(call.Args, env, ctx)
		if err != nil || ctx.HasThrow {
			return value.None, err
		}
		if _, found := in.Classes.Get(v.Name); found {
			return in.instantiateClass(v.Name, args, line, col, ctx)
		}
		if fn, found := in.Functions.Lookup(v.Name, len(args)); found {
			return in.callValue(fn, args, line, col, nil, "", ctx)
		}
		if fn, found := in.Functions.LookupAny(v.Name); found {
			return in.callValue(fn, args, line, col, nil, "", ctx)
		}
		ctx.SetThrow(value.StringValue("Undefined function: "+v.Name), line, col)
		return value.None, nil
	}

	callee, err := in.Evaluate(call.Callee, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	args, err := in.evalArgs(call.Args, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	return in.callValue(callee, args, line, col, nil, "", ctx)
}

func (in *Interpreter) evalArgs(exprs []ast.Expr, env *runtime.Environment, ctx *runtime.ExecutionContext) ([]value.Value, error) {
	args := make([]value.Value, 0, len(exprs))
	for _, a := range exprs {
		v, err := in.Evaluate(a, env, ctx)
		if err != nil || ctx.HasThrow {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// invokeMethodCall dispatches `object.name(args)`, including the
// `super.name(args)` form which restarts class lookup one level above
// the currently executing method's owner class.
func (in *Interpreter) invokeMethodCall(call *ast.Call, prop *ast.Property, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	line, col := call.Pos().Line, call.Pos().Column

	if v, ok := prop.Object.(*ast.Var); ok && v.Name == "super" {
		thisVal, found := env.Get("this")
		if !found {
			ctx.SetThrow(value.StringValue("'super' used outside of a method"), line, col)
			return value.None, nil
		}
		ownerClass, _ := env.Get("__class__")
		parent := in.Classes.ParentOf(value.AsString(ownerClass))
		args, err := in.evalArgs(call.Args, env, ctx)
		if err != nil || ctx.HasThrow {
			return value.None, err
		}
		fn, found := in.Classes.LookupOverload(parent, prop.Name, len(args))
		if !found {
			ctx.SetThrow(value.StringValue("Method not found: "+prop.Name), line, col)
			return value.None, nil
		}
		return in.callValue(fn, args, line, col, &thisVal, fn.OwnerClass, ctx)
	}

	obj, err := in.Evaluate(prop.Object, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	args, err := in.evalArgs(call.Args, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}

	if mv, ok := obj.(value.ModuleValue); ok {
		v, found := mv.Exports.Get(prop.Name)
		if !found {
			ctx.SetThrow(value.StringValue("Method not found: "+prop.Name+" in module "+mv.Name), line, col)
			return value.None, nil
		}
		return in.callValue(v, args, line, col, nil, "", ctx)
	}

	if fn, found := in.resolveMethod(obj, prop.Name, len(args)); found {
		return in.callValue(fn, args, line, col, &obj, fn.OwnerClass, ctx)
	}
	if d, ok := obj.(value.DictValue); ok {
		if v, found := d.M.Get(prop.Name); found {
			return in.callValue(v, args, line, col, &obj, "", ctx)
		}
	}
	if impl, found := in.lookupBuiltinMethod(obj, prop.Name, len(args)); found {
		v, err := impl(obj, args, line, col)
		if err != nil {
			ctx.SetThrow(value.StringValue(err.Error()), line, col)
			return value.None, nil
		}
		return v, nil
	}
	ctx.SetThrow(value.StringValue("Method not found: "+prop.Name), line, col)
	return value.None, nil
}

// resolveMethod walks the method dispatch order: for a
// class instance, a direct or inherited method by (name, arity), then
// an extension registered on the class or any ancestor; for every
// receiver, the extension table of its built-in kind, then "any".
func (in *Interpreter) resolveMethod(receiver value.Value, name string, arity int) (*value.FunctionValue, bool) {
	if d, ok := receiver.(value.DictValue); ok && d.IsInstance() {
		if fn, found := in.Classes.LookupOverload(d.ClassName(), name, arity); found {
			return fn, true
		}
		cls := d.ClassName()
		for depth := 0; depth < 256 && cls != ""; depth++ {
			if fn, found := in.Extensions.LookupOverload(cls, name, arity); found {
				return fn, true
			}
			cls = in.Classes.ParentOf(cls)
		}
	}
	if fn, found := in.Extensions.LookupOverload(receiver.Kind().String(), name, arity); found {
		return fn, true
	}
	return in.Extensions.LookupOverload("any", name, arity)
}

// boundDispatcher wraps a property-read method hit as a
// BuiltinFunction closure over the receiver. Calling it re-resolves
// the target by (name, arity) against the class, extension, and
// built-in method registries, so late-registered overloads and
// extensions dispatch correctly even through a stored method
// reference.
func (in *Interpreter) boundDispatcher(receiver value.Value, name string) value.Value {
	return &value.BuiltinFunctionValue{Name: name, Fn: func(args []value.Value, line, col int) (value.Value, error) {
		if fn, found := in.resolveMethod(receiver, name, len(args)); found {
			ctx := runtime.NewExecutionContext(false)
			v, err := in.callValue(fn, args, line, col, &receiver, fn.OwnerClass, ctx)
			if err != nil {
				return value.None, err
			}
			if ctx.HasThrow {
				return value.None, fmt.Errorf("%s", ctx.ThrownValue.ToString())
			}
			return v, nil
		}
		if impl, found := in.lookupBuiltinMethod(receiver, name, len(args)); found {
			return impl(receiver, args, line, col)
		}
		return value.None, fmt.Errorf("Method not found: %s", name)
	}}
}

// callValue invokes a resolved callable Value. boundThis/boundClass
// bind `this` and `__class__` in the new call frame for method calls;
// both are empty for plain function calls. Any failure the language
// can catch (arity mismatch, a builtin's reported error, calling a
// non-callable Value) is raised via ctx.SetThrow rather than returned
// as a Go error.
func (in *Interpreter) callValue(callee value.Value, args []value.Value, line, col int, boundThis *value.Value, boundClass string, ctx *runtime.ExecutionContext) (value.Value, error) {
	switch fn := callee.(type) {
	case *value.FunctionValue:
		return in.callFunction(fn, args, line, col, boundThis, boundClass, ctx)
	case *value.BuiltinFunctionValue:
		v, err := fn.Fn(args, line, col)
		if err != nil {
			ctx.SetThrow(value.StringValue(err.Error()), line, col)
			return value.None, nil
		}
		return v, nil
	default:
		ctx.SetThrow(value.StringValue("Value of type "+callee.Kind().String()+" is not callable"), line, col)
		return value.None, nil
	}
}

func (in *Interpreter) callFunction(fn *value.FunctionValue, args []value.Value, line, col int, boundThis *value.Value, boundClass string, outerCtx *runtime.ExecutionContext) (value.Value, error) {
	if len(args) != len(fn.Params) {
		outerCtx.SetThrow(value.StringValue(registry.ArityError(fn.Name, len(fn.Params), len(args)).Error()), line, col)
		return value.None, nil
	}
	var closureEnv *runtime.Environment
	if ce, ok := fn.Closure.(*runtime.Environment); ok && ce != nil {
		closureEnv = ce
	} else {
		closureEnv = in.Global
	}
	callEnv := runtime.NewEnclosedEnvironment(closureEnv)
	for i, p := range fn.Params {
		callEnv.Define(p, args[i])
	}
	if boundThis != nil {
		callEnv.Define("this", *boundThis)
		if boundClass != "" {
			callEnv.Define("__class__", value.StringValue(boundClass))
		} else if fn.OwnerClass != "" {
			callEnv.Define("__class__", value.StringValue(fn.OwnerClass))
		}
	}

	body, _ := fn.Body.([]ast.Stmt)
	callCtx := runtime.NewExecutionContext(true)
	for _, s := range body {
		if err := in.execStmt(s, callEnv, callCtx); err != nil {
			return value.None, err
		}
		if callCtx.HasThrow || callCtx.HasReturn {
			break
		}
	}
	if callCtx.HasThrow {
		outerCtx.SetThrowWithKind(callCtx.ThrownValue, callCtx.ThrowKind, callCtx.ThrowLine, callCtx.ThrowColumn)
		return value.None, nil
	}
	if callCtx.HasReturn {
		return callCtx.ReturnValue, nil
	}
	return value.None, nil
}
