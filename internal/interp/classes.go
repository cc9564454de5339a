package interp

import (
	"fmt"

	"github.com/cwbudde/go-bob/internal/ast"
	"github.com/cwbudde/go-bob/internal/registry"
	"github.com/cwbudde/go-bob/internal/runtime"
	"github.com/cwbudde/go-bob/internal/value"
)

// constructorName is the method looked up when a class is instantiated
// via a plain call: `Point(1, 2)` calls `Point.init`.
const constructorName = "init"

// execClass registers a class declaration: fields
// in source order (so MergedFields can apply root-to-child override),
// and every method keyed by (name, arity) for overload dispatch.
func (in *Interpreter) execClass(n *ast.Class, env *runtime.Environment) error {
	entry := in.Classes.Define(n.Name, n.Parent)
	for _, f := range n.Fields {
		entry.Fields = append(entry.Fields, registry.FieldInit{Name: f.Name, Init: f.Init})
	}
	for _, m := range n.Methods {
		fn := &value.FunctionValue{Name: m.Name, Params: m.Params, Body: m.Body, Closure: env, OwnerClass: n.Name}
		in.Classes.DefineMethod(n.Name, m.Name, len(m.Params), fn)
	}
	// The class name itself becomes a callable binding: calling it
	// builds an instance, so constructors flow through the same Value
	// model as any other callee (and survive module export snapshots).
	className := n.Name
	env.Define(n.Name, &value.BuiltinFunctionValue{Name: n.Name, Fn: func(args []value.Value, line, col int) (value.Value, error) {
		ctorCtx := runtime.NewExecutionContext(false)
		inst, err := in.instantiateClass(className, args, line, col, ctorCtx)
		if err != nil {
			return value.None, err
		}
		if ctorCtx.HasThrow {
			return value.None, fmt.Errorf("%s", ctorCtx.ThrownValue.ToString())
		}
		return inst, nil
	}})
	return nil
}

// execExtension registers extension methods onto a built-in type
// target ("string", "array", "dict", "number", "any") or a user class
// name.
func (in *Interpreter) execExtension(n *ast.Extension, env *runtime.Environment) error {
	for _, m := range n.Methods {
		fn := &value.FunctionValue{Name: m.Name, Params: m.Params, Body: m.Body, Closure: env}
		in.Extensions.Define(n.Target, m.Name, len(m.Params), fn)
	}
	return nil
}

// instantiateClass builds a new instance: a DictValue tagged with
// "__class", its merged field initializers evaluated root-first with
// `this` bound to the partially built instance, then its constructor
// (if any) invoked with the call's arguments.
func (in *Interpreter) instantiateClass(className string, args []value.Value, line, col int, ctx *runtime.ExecutionContext) (value.Value, error) {
	instance := value.NewDict().(value.DictValue)
	instance.M.Set("__class", value.StringValue(className))

	fieldEnv := runtime.NewEnclosedEnvironment(in.Global)
	var instVal value.Value = instance
	fieldEnv.Define("this", instVal)

	for _, f := range in.Classes.MergedFields(className) {
		var v value.Value = value.None
		if f.Init != nil {
			initExpr, ok := f.Init.(ast.Expr)
			if !ok {
				continue
			}
			var err error
			v, err = in.Evaluate(initExpr, fieldEnv, ctx)
			if err != nil || ctx.HasThrow {
				return value.None, err
			}
		}
		instance.M.Set(f.Name, v)
	}

	ctor, found := in.Classes.LookupOverload(className, constructorName, len(args))
	if !found {
		if len(args) != 0 {
			ctx.SetThrow(value.StringValue(registry.ArityError(constructorName, 0, len(args)).Error()), line, col)
			return value.None, nil
		}
		return instance, nil
	}
	if _, err := in.callFunction(ctor, args, line, col, &instVal, ctor.OwnerClass, ctx); err != nil || ctx.HasThrow {
		return value.None, err
	}
	return instance, nil
}
