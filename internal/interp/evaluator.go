package interp

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/cwbudde/go-bob/internal/ast"
	"github.com/cwbudde/go-bob/internal/parser"
	"github.com/cwbudde/go-bob/internal/runtime"
	"github.com/cwbudde/go-bob/internal/token"
	"github.com/cwbudde/go-bob/internal/value"
)

// evalExpr is the single-step expression visitor: it produces one
// Value (possibly a Thunk, when the node is a tail call) and never
// drains a Thunk chain itself — draining is Interpreter.Evaluate's job.
// Recoverable language-level faults are raised via ctx.SetThrow and
// returned as (value.None, nil); the non-nil error return is reserved
// for conditions the language has no catchable representation for.
func (in *Interpreter) evalExpr(e ast.Expr, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return in.evalLiteral(n)

	case *ast.Var:
		if n.Name == "super" {
			if owner, ok := env.Get("__class__"); ok {
				d := value.NewDict().(value.DictValue)
				d.M.Set("__class", value.StringValue(in.Classes.ParentOf(value.AsString(owner))))
				d.M.Set("__super", value.True)
				return d, nil
			}
		}
		v, ok := env.Get(n.Name)
		if ok {
			return v, nil
		}
		if fn, ok := in.Functions.LookupAny(n.Name); ok {
			return fn, nil
		}
		ctx.SetThrow(value.StringValue("Undefined variable: "+n.Name), n.Pos().Line, n.Pos().Column)
		return value.None, nil

	case *ast.Grouping:
		return in.Evaluate(n.Inner, env, ctx)

	case *ast.Unary:
		return in.evalUnary(n, env, ctx)

	case *ast.Binary:
		return in.evalBinary(n, env, ctx)

	case *ast.Ternary:
		cond, err := in.Evaluate(n.Cond, env, ctx)
		if err != nil || ctx.HasThrow {
			return value.None, err
		}
		if value.Truthy(cond) {
			return in.Evaluate(n.Then, env, ctx)
		}
		return in.Evaluate(n.Else, env, ctx)

	case *ast.Assign:
		return in.evalAssign(n, env, ctx)

	case *ast.Increment:
		return in.evalIncrement(n, env, ctx)

	case *ast.ArrayLiteral:
		items := make([]value.Value, 0, len(n.Elements))
		for _, el := range n.Elements {
			v, err := in.Evaluate(el, env, ctx)
			if err != nil || ctx.HasThrow {
				return value.None, err
			}
			items = append(items, v)
		}
		return value.NewArray(items), nil

	case *ast.DictLiteral:
		d := value.NewDict().(value.DictValue)
		for _, entry := range n.Entries {
			v, err := in.Evaluate(entry.Value, env, ctx)
			if err != nil || ctx.HasThrow {
				return value.None, err
			}
			d.M.Set(entry.Key, v)
		}
		return d, nil

	case *ast.ArrayIndex:
		return in.evalArrayIndex(n, env, ctx)

	case *ast.ArrayAssign:
		return in.evalArrayAssign(n, env, ctx)

	case *ast.Property:
		return in.evalProperty(n, env, ctx)

	case *ast.PropertyAssign:
		return in.evalPropertyAssign(n, env, ctx)

	case *ast.FunctionExpr:
		return &value.FunctionValue{
			Params:  n.Params,
			Body:    n.Body,
			Closure: runtime.CaptureClosure(env),
		}, nil

	case *ast.Call:
		if n.IsTailCall {
			// The frame that created this Thunk has returned by the
			// time the trampoline forces it, so the suspended call runs
			// under a fresh context; a throw it raises travels through
			// the pending-throw channel back to the draining Evaluate.
			capturedEnv := env
			return value.ThunkValue{Force: func() (value.Value, error) {
				thunkCtx := runtime.NewExecutionContext(false)
				v, err := in.invokeCall(n, capturedEnv, thunkCtx)
				if err != nil {
					return nil, err
				}
				if thunkCtx.HasThrow {
					in.setPendingThrow(thunkCtx.ThrownValue, thunkCtx.ThrowKind, thunkCtx.ThrowLine, thunkCtx.ThrowColumn)
					return value.None, nil
				}
				return v, nil
			}}, nil
		}
		return in.invokeCall(n, env, ctx)
	}
	return value.None, runtimeErrorf(e.Pos().Line, e.Pos().Column, "unsupported expression node %T", e)
}

func (in *Interpreter) evalLiteral(n *ast.Literal) (value.Value, error) {
	switch n.Kind {
	case token.TRUE:
		return value.True, nil
	case token.FALSE:
		return value.False, nil
	case token.NONE:
		return value.None, nil
	case token.STRING:
		return value.StringValue(n.Value), nil
	case token.NUMBER:
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return value.None, runtimeErrorf(n.Pos().Line, n.Pos().Column, "invalid number literal %q", n.Value)
		}
		return value.NumberValue(f), nil
	case token.INTEGER, token.BININTEGER:
		iv, ok := parser.ParseIntLiteral(n.Kind, n.Value)
		if ok {
			return value.Int(iv), nil
		}
		s := strings.ReplaceAll(n.Value, "_", "")
		base := 10
		if n.Kind == token.BININTEGER {
			base = 2
			s = strings.TrimPrefix(strings.TrimPrefix(s, "0b"), "0B")
		}
		big, ok := new(big.Int).SetString(s, base)
		if !ok {
			return value.None, runtimeErrorf(n.Pos().Line, n.Pos().Column, "invalid integer literal %q", n.Value)
		}
		return value.NewBig(big), nil
	}
	return value.None, runtimeErrorf(n.Pos().Line, n.Pos().Column, "unsupported literal kind %s", n.Kind)
}

// throwOpError raises an operator failure, preserving the stable
// diagnostic kind an OpError carries ("Division by Zero", "Modulo by
// Zero", "Operator not supported") through to the reported error.
func throwOpError(ctx *runtime.ExecutionContext, err error, line, col int) {
	kind := "Runtime Error"
	if oe, ok := err.(*value.OpError); ok {
		kind = oe.Kind
	}
	ctx.SetThrowWithKind(value.StringValue(err.Error()), kind, line, col)
}

func (in *Interpreter) evalUnary(n *ast.Unary, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	v, err := in.Evaluate(n.Operand, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	switch n.Op {
	case token.MINUS:
		res, opErr := value.Neg(v)
		if opErr != nil {
			throwOpError(ctx, opErr, n.Pos().Line, n.Pos().Column)
			return value.None, nil
		}
		return res, nil
	case token.BANG:
		return value.Bool(!value.Truthy(v)), nil
	case token.TILDE:
		res, opErr := value.BitNot(v)
		if opErr != nil {
			throwOpError(ctx, opErr, n.Pos().Line, n.Pos().Column)
			return value.None, nil
		}
		return res, nil
	}
	return value.None, runtimeErrorf(n.Pos().Line, n.Pos().Column, "unsupported unary operator %s", n.Op)
}

func (in *Interpreter) evalBinary(n *ast.Binary, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	// && and || short-circuit and yield the operand that decided the
	// outcome, not a coerced boolean: `a && b` is a when a is falsy,
	// else b; `a || b` is a when a is truthy, else b.
	if n.Op == token.AND {
		l, err := in.Evaluate(n.Left, env, ctx)
		if err != nil || ctx.HasThrow {
			return value.None, err
		}
		if !value.Truthy(l) {
			return l, nil
		}
		return in.Evaluate(n.Right, env, ctx)
	}
	if n.Op == token.OR {
		l, err := in.Evaluate(n.Left, env, ctx)
		if err != nil || ctx.HasThrow {
			return value.None, err
		}
		if value.Truthy(l) {
			return l, nil
		}
		return in.Evaluate(n.Right, env, ctx)
	}

	l, err := in.Evaluate(n.Left, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	r, err := in.Evaluate(n.Right, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}

	var res value.Value
	var opErr error
	switch n.Op {
	case token.PLUS:
		res, opErr = value.Add(l, r)
	case token.MINUS:
		res, opErr = value.Sub(l, r)
	case token.STAR:
		res, opErr = value.Mul(l, r)
	case token.SLASH:
		res, opErr = value.Div(l, r)
	case token.PERCENT:
		res, opErr = value.Mod(l, r)
	case token.AMP:
		res, opErr = value.BitAnd(l, r)
	case token.PIPE:
		res, opErr = value.BitOr(l, r)
	case token.CARET:
		res, opErr = value.BitXor(l, r)
	case token.SHL:
		res, opErr = value.Shl(l, r)
	case token.SHR:
		res, opErr = value.Shr(l, r)
	case token.EQ:
		return value.Bool(value.Equals(l, r)), nil
	case token.NEQ:
		return value.Bool(!value.Equals(l, r)), nil
	case token.LT, token.LTE, token.GT, token.GTE:
		cmp, cmpErr := value.Compare(l, r)
		if cmpErr != nil {
			throwOpError(ctx, cmpErr, n.Pos().Line, n.Pos().Column)
			return value.None, nil
		}
		switch n.Op {
		case token.LT:
			return value.Bool(cmp < 0), nil
		case token.LTE:
			return value.Bool(cmp <= 0), nil
		case token.GT:
			return value.Bool(cmp > 0), nil
		default:
			return value.Bool(cmp >= 0), nil
		}
	default:
		return value.None, runtimeErrorf(n.Pos().Line, n.Pos().Column, "unsupported binary operator %s", n.Op)
	}
	if opErr != nil {
		throwOpError(ctx, opErr, n.Pos().Line, n.Pos().Column)
		return value.None, nil
	}
	return res, nil
}

func (in *Interpreter) evalAssign(n *ast.Assign, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	val, err := in.Evaluate(n.Val, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	if n.Op != token.ASSIGN {
		cur, ok := env.Get(n.Name)
		if !ok {
			ctx.SetThrow(value.StringValue("Undefined variable: "+n.Name), n.Pos().Line, n.Pos().Column)
			return value.None, nil
		}
		combined, opErr := applyCompound(n.Op, cur, val)
		if opErr != nil {
			throwOpError(ctx, opErr, n.Pos().Line, n.Pos().Column)
			return value.None, nil
		}
		val = combined
	}
	if err := env.Assign(n.Name, val); err != nil {
		ctx.SetThrow(value.StringValue(err.Error()), n.Pos().Line, n.Pos().Column)
		return value.None, nil
	}
	if n.Op == token.ASSIGN {
		in.Functions.Compact()
	}
	return val, nil
}

func applyCompound(op token.Kind, cur, val value.Value) (value.Value, error) {
	switch op {
	case token.PLUSEQ:
		return value.Add(cur, val)
	case token.MINUSEQ:
		return value.Sub(cur, val)
	case token.STAREQ:
		return value.Mul(cur, val)
	case token.SLASHEQ:
		return value.Div(cur, val)
	case token.PERCENTEQ:
		return value.Mod(cur, val)
	case token.AMPEQ:
		return value.BitAnd(cur, val)
	case token.PIPEEQ:
		return value.BitOr(cur, val)
	case token.CARETEQ:
		return value.BitXor(cur, val)
	case token.SHLEQ:
		return value.Shl(cur, val)
	case token.SHREQ:
		return value.Shr(cur, val)
	}
	return val, nil
}

func (in *Interpreter) evalIncrement(n *ast.Increment, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	cur, err := in.Evaluate(n.Operand, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	delta := value.Int(1)
	var next value.Value
	var opErr error
	if n.Op == token.INC {
		next, opErr = value.Add(cur, delta)
	} else {
		next, opErr = value.Sub(cur, delta)
	}
	if opErr != nil {
		throwOpError(ctx, opErr, n.Pos().Line, n.Pos().Column)
		return value.None, nil
	}
	if err := in.assignTo(n.Operand, next, env, ctx); err != nil || ctx.HasThrow {
		return value.None, err
	}
	if n.IsPrefix {
		return next, nil
	}
	return cur, nil
}

// assignTo writes next into the lvalue expression target (Var,
// ArrayIndex, or Property), used by ++/-- which operate on an
// arbitrary lvalue rather than a bare name.
func (in *Interpreter) assignTo(target ast.Expr, next value.Value, env *runtime.Environment, ctx *runtime.ExecutionContext) error {
	switch t := target.(type) {
	case *ast.Var:
		if err := env.Assign(t.Name, next); err != nil {
			ctx.SetThrow(value.StringValue(err.Error()), t.Pos().Line, t.Pos().Column)
		}
		return nil
	case *ast.ArrayIndex:
		coll, err := in.Evaluate(t.Collection, env, ctx)
		if err != nil || ctx.HasThrow {
			return err
		}
		idx, err := in.Evaluate(t.Index, env, ctx)
		if err != nil || ctx.HasThrow {
			return err
		}
		return in.writeIndex(coll, idx, next, t.Pos().Line, t.Pos().Column, ctx)
	case *ast.Property:
		obj, err := in.Evaluate(t.Object, env, ctx)
		if err != nil || ctx.HasThrow {
			return err
		}
		return in.writeProperty(obj, t.Name, next, t.Pos().Line, t.Pos().Column, ctx)
	}
	return runtimeErrorf(target.Pos().Line, target.Pos().Column, "invalid assignment target")
}

func (in *Interpreter) evalArrayIndex(n *ast.ArrayIndex, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	coll, err := in.Evaluate(n.Collection, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	idx, err := in.Evaluate(n.Index, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	return in.readIndex(coll, idx, n.Pos().Line, n.Pos().Column, ctx)
}

func (in *Interpreter) readIndex(coll, idx value.Value, line, col int, ctx *runtime.ExecutionContext) (value.Value, error) {
	switch c := coll.(type) {
	case value.ArrayValue:
		i, ok := idx.(value.IntValue)
		if !ok {
			ctx.SetThrow(value.StringValue("Array index must be an integer"), line, col)
			return value.None, nil
		}
		items := *c.Items
		n := int64(i)
		if n < 0 || n >= int64(len(items)) {
			ctx.SetThrow(value.StringValue("Array index out of bounds"), line, col)
			return value.None, nil
		}
		return items[n], nil
	case value.DictValue:
		key, ok := idx.(value.StringValue)
		if !ok {
			ctx.SetThrow(value.StringValue("Dict key must be a string"), line, col)
			return value.None, nil
		}
		v, ok := c.M.Get(string(key))
		if !ok {
			return value.None, nil
		}
		return v, nil
	case value.StringValue:
		i, ok := idx.(value.IntValue)
		if !ok {
			ctx.SetThrow(value.StringValue("String index must be an integer"), line, col)
			return value.None, nil
		}
		runes := []rune(string(c))
		n := int64(i)
		if n < 0 {
			n += int64(len(runes))
		}
		if n < 0 || n >= int64(len(runes)) {
			ctx.SetThrow(value.StringValue("String index out of bounds"), line, col)
			return value.None, nil
		}
		return value.StringValue(string(runes[n])), nil
	}
	ctx.SetThrow(value.StringValue("Value of type "+coll.Kind().String()+" is not indexable"), line, col)
	return value.None, nil
}

func (in *Interpreter) writeIndex(coll, idx, val value.Value, line, col int, ctx *runtime.ExecutionContext) error {
	switch c := coll.(type) {
	case value.ArrayValue:
		i, ok := idx.(value.IntValue)
		if !ok {
			ctx.SetThrow(value.StringValue("Array index must be an integer"), line, col)
			return nil
		}
		items := *c.Items
		n := int64(i)
		if n < 0 || n >= int64(len(items)) {
			ctx.SetThrow(value.StringValue("Array index out of bounds"), line, col)
			return nil
		}
		items[n] = val
		return nil
	case value.DictValue:
		key, ok := idx.(value.StringValue)
		if !ok {
			ctx.SetThrow(value.StringValue("Dict key must be a string"), line, col)
			return nil
		}
		c.M.Set(string(key), val)
		return nil
	case value.StringValue:
		ctx.SetThrow(value.StringValue("Cannot assign to string index: strings are immutable"), line, col)
		return nil
	}
	ctx.SetThrow(value.StringValue("Value of type "+coll.Kind().String()+" does not support index assignment"), line, col)
	return nil
}

func (in *Interpreter) evalArrayAssign(n *ast.ArrayAssign, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	coll, err := in.Evaluate(n.Collection, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	idx, err := in.Evaluate(n.Index, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	val, err := in.Evaluate(n.Val, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	if err := in.writeIndex(coll, idx, val, n.Pos().Line, n.Pos().Column, ctx); err != nil || ctx.HasThrow {
		return value.None, err
	}
	return val, nil
}

func (in *Interpreter) evalProperty(n *ast.Property, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	obj, err := in.Evaluate(n.Object, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	return in.readProperty(obj, n.Name, n.Pos().Line, n.Pos().Column, ctx)
}

// readProperty resolves `object.name` outside of call position. A
// method hit does not return the raw Function: it returns a bound
// dispatcher (a BuiltinFunction closure over the receiver) that
// re-resolves the target by (name, arity) at call time, so overloads
// and extensions registered after the read still dispatch correctly.
func (in *Interpreter) readProperty(obj value.Value, name string, line, col int, ctx *runtime.ExecutionContext) (value.Value, error) {
	switch o := obj.(type) {
	case value.ModuleValue:
		v, ok := o.Exports.Get(name)
		if !ok {
			return value.None, nil
		}
		return v, nil
	case value.DictValue:
		if o.IsInstance() && name != "__class" {
			if in.hasInstanceMethod(o, name) {
				return in.boundDispatcher(obj, name), nil
			}
		}
		if v, ok := o.M.Get(name); ok {
			return v, nil
		}
		switch name {
		case "len":
			return value.Int(int64(o.M.Len())), nil
		case "keys":
			return dictKeys(o), nil
		}
		if in.hasExtension("dict", name) || in.hasBuiltinMethod("dict", name) {
			return in.boundDispatcher(obj, name), nil
		}
		return value.None, nil
	case value.ArrayValue:
		if name == "len" {
			return value.Int(int64(len(*o.Items))), nil
		}
		if in.hasExtension("array", name) || in.hasBuiltinMethod("array", name) {
			return in.boundDispatcher(obj, name), nil
		}
		return value.None, nil
	case value.StringValue:
		if name == "len" {
			return value.Int(int64(len([]rune(string(o))))), nil
		}
		if in.hasExtension("string", name) || in.hasBuiltinMethod("string", name) {
			return in.boundDispatcher(obj, name), nil
		}
		return value.None, nil
	default:
		kind := obj.Kind().String()
		if in.hasExtension(kind, name) || in.hasBuiltinMethod(kind, name) {
			return in.boundDispatcher(obj, name), nil
		}
		return value.None, nil
	}
}

// hasInstanceMethod reports whether name is a method on the instance's
// class or any ancestor, or an extension registered on one of them.
func (in *Interpreter) hasInstanceMethod(d value.DictValue, name string) bool {
	if _, ok := in.Classes.AnyOverload(d.ClassName(), name); ok {
		return true
	}
	cls := d.ClassName()
	for depth := 0; depth < 256 && cls != ""; depth++ {
		if _, ok := in.Extensions.Lookup(cls, name); ok {
			return true
		}
		cls = in.Classes.ParentOf(cls)
	}
	return false
}

func (in *Interpreter) hasExtension(target, name string) bool {
	if _, ok := in.Extensions.Lookup(target, name); ok {
		return true
	}
	_, ok := in.Extensions.Lookup("any", name)
	return ok
}

func (in *Interpreter) writeProperty(obj value.Value, name string, val value.Value, line, col int, ctx *runtime.ExecutionContext) error {
	switch d := obj.(type) {
	case value.ModuleValue:
		ctx.SetThrow(value.StringValue("Cannot assign property on module (immutable)"), line, col)
		return nil
	case value.DictValue:
		d.M.Set(name, val)
		return nil
	}
	ctx.SetThrow(value.StringValue("Value of type "+obj.Kind().String()+" does not support property assignment"), line, col)
	return nil
}

func (in *Interpreter) evalPropertyAssign(n *ast.PropertyAssign, env *runtime.Environment, ctx *runtime.ExecutionContext) (value.Value, error) {
	obj, err := in.Evaluate(n.Object, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	val, err := in.Evaluate(n.Val, env, ctx)
	if err != nil || ctx.HasThrow {
		return value.None, err
	}
	if err := in.writeProperty(obj, n.Name, val, n.Pos().Line, n.Pos().Column, ctx); err != nil || ctx.HasThrow {
		return value.None, err
	}
	return val, nil
}
