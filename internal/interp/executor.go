package interp

import (
	"github.com/cwbudde/go-bob/internal/ast"
	"github.com/cwbudde/go-bob/internal/runtime"
	"github.com/cwbudde/go-bob/internal/value"
)

// execStmt is the statement visitor. It returns a non-nil error only
// for conditions the language has no catchable representation for;
// everything else (explicit throw, runtime faults, return/break/
// continue) is signaled through ctx and observed by callers via the
// ExecutionContext fields.
func (in *Interpreter) execStmt(s ast.Stmt, env *runtime.Environment, ctx *runtime.ExecutionContext) error {
	switch n := s.(type) {
	case *ast.Block:
		return in.execBlock(n, runtime.NewEnclosedEnvironment(env), ctx)

	case *ast.ExprStmt:
		_, err := in.Evaluate(n.X, env, ctx)
		return err

	case *ast.VarDecl:
		var v value.Value = value.None
		if n.Init != nil {
			var err error
			v, err = in.Evaluate(n.Init, env, ctx)
			if err != nil || ctx.HasThrow {
				return err
			}
		}
		env.Define(n.Name, v)
		return nil

	case *ast.FuncDecl:
		fn := &value.FunctionValue{Name: n.Name, Params: n.Params, Body: n.Body, Closure: env}
		in.Functions.Define(n.Name, len(n.Params), fn)
		env.Define(n.Name, fn)
		return nil

	case *ast.Return:
		var v value.Value = value.None
		if n.Val != nil {
			var err error
			v, err = in.evalExpr(n.Val, env, ctx)
			if err != nil || ctx.HasThrow {
				return err
			}
		}
		ctx.HasReturn = true
		ctx.ReturnValue = v
		return nil

	case *ast.If:
		cond, err := in.Evaluate(n.Cond, env, ctx)
		if err != nil || ctx.HasThrow {
			return err
		}
		if value.Truthy(cond) {
			return in.execStmt(n.Then, env, ctx)
		}
		if n.Else != nil {
			return in.execStmt(n.Else, env, ctx)
		}
		return nil

	case *ast.While:
		for {
			cond, err := in.Evaluate(n.Cond, env, ctx)
			if err != nil || ctx.HasThrow {
				return err
			}
			if !value.Truthy(cond) {
				return nil
			}
			if err := in.execStmt(n.Body, env, ctx); err != nil {
				return err
			}
			if ctx.HasThrow || ctx.HasReturn {
				return nil
			}
			if ctx.ShouldBreak {
				ctx.ClearLoopSignals()
				return nil
			}
			ctx.ClearLoopSignals()
		}

	case *ast.DoWhile:
		for {
			if err := in.execStmt(n.Body, env, ctx); err != nil {
				return err
			}
			if ctx.HasThrow || ctx.HasReturn {
				return nil
			}
			if ctx.ShouldBreak {
				ctx.ClearLoopSignals()
				return nil
			}
			ctx.ClearLoopSignals()
			cond, err := in.Evaluate(n.Cond, env, ctx)
			if err != nil || ctx.HasThrow {
				return err
			}
			if !value.Truthy(cond) {
				return nil
			}
		}

	case *ast.For:
		loopEnv := runtime.NewEnclosedEnvironment(env)
		if n.Init != nil {
			if err := in.execStmt(n.Init, loopEnv, ctx); err != nil || ctx.HasThrow {
				return err
			}
		}
		for {
			if n.Cond != nil {
				cond, err := in.Evaluate(n.Cond, loopEnv, ctx)
				if err != nil || ctx.HasThrow {
					return err
				}
				if !value.Truthy(cond) {
					return nil
				}
			}
			if err := in.execStmt(n.Body, loopEnv, ctx); err != nil {
				return err
			}
			if ctx.HasThrow || ctx.HasReturn {
				return nil
			}
			if ctx.ShouldBreak {
				ctx.ClearLoopSignals()
				return nil
			}
			ctx.ClearLoopSignals()
			if n.Post != nil {
				if err := in.execStmt(n.Post, loopEnv, ctx); err != nil || ctx.HasThrow {
					return err
				}
			}
		}

	case *ast.Foreach:
		coll, err := in.Evaluate(n.Coll, env, ctx)
		if err != nil || ctx.HasThrow {
			return err
		}
		loopEnv := runtime.NewEnclosedEnvironment(env)
		switch c := coll.(type) {
		case value.ArrayValue:
			for _, item := range *c.Items {
				loopEnv.Define(n.Name, item)
				if err := in.execStmt(n.Body, loopEnv, ctx); err != nil {
					return err
				}
				if ctx.HasThrow || ctx.HasReturn {
					return nil
				}
				if ctx.ShouldBreak {
					ctx.ClearLoopSignals()
					return nil
				}
				ctx.ClearLoopSignals()
			}
			return nil
		case value.DictValue:
			stop := false
			c.M.Range(func(k string, _ value.Value) bool {
				loopEnv.Define(n.Name, value.StringValue(k))
				if err2 := in.execStmt(n.Body, loopEnv, ctx); err2 != nil {
					err = err2
					stop = true
					return false
				}
				if ctx.HasThrow || ctx.HasReturn {
					stop = true
					return false
				}
				if ctx.ShouldBreak {
					ctx.ClearLoopSignals()
					stop = true
					return false
				}
				ctx.ClearLoopSignals()
				return true
			})
			_ = stop
			return err
		case value.StringValue:
			for _, r := range string(c) {
				loopEnv.Define(n.Name, value.StringValue(string(r)))
				if err := in.execStmt(n.Body, loopEnv, ctx); err != nil {
					return err
				}
				if ctx.HasThrow || ctx.HasReturn {
					return nil
				}
				if ctx.ShouldBreak {
					ctx.ClearLoopSignals()
					return nil
				}
				ctx.ClearLoopSignals()
			}
			return nil
		}
		ctx.SetThrow(value.StringValue("Value of type "+coll.Kind().String()+" is not iterable"), n.Pos().Line, n.Pos().Column)
		return nil

	case *ast.Break:
		ctx.ShouldBreak = true
		return nil

	case *ast.Continue:
		ctx.ShouldContinue = true
		return nil

	case *ast.Class:
		return in.execClass(n, env)

	case *ast.Extension:
		return in.execExtension(n, env)

	case *ast.Try:
		return in.execTry(n, env, ctx)

	case *ast.Throw:
		v, err := in.Evaluate(n.Val, env, ctx)
		if err != nil || ctx.HasThrow {
			return err
		}
		ctx.SetThrow(v, n.Pos().Line, n.Pos().Column)
		return nil

	case *ast.Import:
		return in.execImport(n, env, ctx)

	case *ast.FromImport:
		return in.execFromImport(n, env, ctx)
	}
	return runtimeErrorf(s.Pos().Line, s.Pos().Column, "unsupported statement node %T", s)
}

func (in *Interpreter) execBlock(b *ast.Block, env *runtime.Environment, ctx *runtime.ExecutionContext) error {
	for _, s := range b.Stmts {
		if err := in.execStmt(s, env, ctx); err != nil {
			return err
		}
		if ctx.Signaled() {
			return nil
		}
	}
	return nil
}

// execTry implements try/catch/finally: the reporter's
// try-depth is incremented for the duration of the try block so
// ReportError defers to the single-slot last-error instead of printing,
// the catch block (if present) clears the throw and binds catchVar,
// and finally always runs, even when a return/break/continue/throw is
// in flight, without swallowing that signal unless finally itself
// raises a new one.
func (in *Interpreter) execTry(n *ast.Try, env *runtime.Environment, ctx *runtime.ExecutionContext) error {
	if in.Reporter != nil {
		in.Reporter.EnterTry()
	}
	err := in.execBlock(n.TryBlock, runtime.NewEnclosedEnvironment(env), ctx)
	if in.Reporter != nil {
		in.Reporter.ExitTry()
	}
	if err != nil {
		return err
	}

	if ctx.HasThrow && n.CatchBlock != nil {
		caught := ctx.ThrownValue
		ctx.ClearThrow()
		if in.Reporter != nil {
			in.Reporter.ClearLastError()
		}
		catchEnv := runtime.NewEnclosedEnvironment(env)
		catchEnv.Define(n.CatchVar, caught)
		if err := in.execBlock(n.CatchBlock, catchEnv, ctx); err != nil {
			return err
		}
	}

	if n.FinallyBlock != nil {
		saved := *ctx
		ctx.HasReturn, ctx.ShouldBreak, ctx.ShouldContinue, ctx.HasThrow = false, false, false, false
		if err := in.execBlock(n.FinallyBlock, runtime.NewEnclosedEnvironment(env), ctx); err != nil {
			return err
		}
		if !ctx.Signaled() {
			*ctx = saved
		}
	}
	return nil
}
