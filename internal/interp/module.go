package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/go-bob/internal/ast"
	"github.com/cwbudde/go-bob/internal/diag"
	"github.com/cwbudde/go-bob/internal/lexer"
	"github.com/cwbudde/go-bob/internal/parser"
	"github.com/cwbudde/go-bob/internal/runtime"
	"github.com/cwbudde/go-bob/internal/value"
)

// PushImporterDir/PopImporterDir track the directory of the module
// currently executing, so a relative import resolves against the
// importing file rather than the process's working directory.
func (in *Interpreter) PushImporterDir(dir string) { in.importerDir = append(in.importerDir, dir) }
func (in *Interpreter) PopImporterDir() {
	if len(in.importerDir) > 0 {
		in.importerDir = in.importerDir[:len(in.importerDir)-1]
	}
}

func (in *Interpreter) currentImporterDir() string {
	if len(in.importerDir) == 0 {
		return "."
	}
	return in.importerDir[len(in.importerDir)-1]
}

func (in *Interpreter) execImport(n *ast.Import, env *runtime.Environment, ctx *runtime.ExecutionContext) error {
	mod, err := in.loadModule(n.Name, n.Pos().Line, n.Pos().Column, ctx)
	if err != nil || ctx.HasThrow {
		return err
	}
	name := n.Name
	if n.Alias != "" {
		name = n.Alias
	}
	env.Define(name, mod)
	return nil
}

func (in *Interpreter) execFromImport(n *ast.FromImport, env *runtime.Environment, ctx *runtime.ExecutionContext) error {
	mod, err := in.loadModule(n.Module, n.Pos().Line, n.Pos().Column, ctx)
	if err != nil || ctx.HasThrow {
		return err
	}
	mv, ok := mod.(value.ModuleValue)
	if !ok {
		ctx.SetThrow(value.StringValue(n.Module+" did not resolve to a module"), n.Pos().Line, n.Pos().Column)
		return nil
	}
	if n.All {
		mv.Exports.Range(func(k string, v value.Value) bool {
			env.Define(k, v)
			return true
		})
		return nil
	}
	for _, item := range n.Items {
		v, found := mv.Exports.Get(item.Name)
		if !found {
			ctx.SetThrow(value.StringValue("Name not found in module: "+item.Name), n.Pos().Line, n.Pos().Column)
			return nil
		}
		target := item.Name
		if item.Alias != "" {
			target = item.Alias
		}
		env.Define(target, v)
	}
	return nil
}

// loadModule resolves an import specifier to a cached or freshly built
// ModuleValue, preferring file or builtin modules per the configured
// ModulePolicy. A module that throws mid-execution
// is never cached, so a later import retries it from scratch.
func (in *Interpreter) loadModule(spec string, line, col int, ctx *runtime.ExecutionContext) (value.Value, error) {
	path, fileExists := in.resolveFilePath(spec)
	builder, builtinExists := in.lookupBuiltin(spec)

	tryFile := fileExists && in.policy.AllowFileImports
	tryBuiltin := builtinExists && in.policy.AllowBuiltinImports

	order := []string{}
	if in.policy.PreferFileOverBuiltin {
		if tryFile {
			order = append(order, "file")
		}
		if tryBuiltin {
			order = append(order, "builtin")
		}
	} else {
		if tryBuiltin {
			order = append(order, "builtin")
		}
		if tryFile {
			order = append(order, "file")
		}
	}

	for _, kind := range order {
		switch kind {
		case "builtin":
			cacheKey := "builtin:" + spec
			if v, ok := in.moduleCache[cacheKey]; ok {
				return v, nil
			}
			b := value.NewOrderedMap()
			builder(&ModuleBuilder{exports: b})
			mod := value.ModuleValue{Name: spec, Exports: b}
			in.moduleCache[cacheKey] = mod
			return mod, nil
		case "file":
			cacheKey := "file:" + path
			if v, ok := in.moduleCache[cacheKey]; ok {
				return v, nil
			}
			mod, err := in.loadFileModule(spec, path, ctx)
			if err != nil {
				return value.None, err
			}
			if ctx.HasThrow {
				return value.None, nil
			}
			in.moduleCache[cacheKey] = mod
			return mod, nil
		}
	}
	if fileExists && !in.policy.AllowFileImports {
		ctx.SetThrow(value.StringValue("File imports are disabled"), line, col)
		return value.None, nil
	}
	ctx.SetThrow(value.StringValue("Module not found: "+spec), line, col)
	return value.None, nil
}

func (in *Interpreter) lookupBuiltin(name string) (func(*ModuleBuilder), bool) {
	b, ok := in.builtins[name]
	if !ok {
		return nil, false
	}
	if in.policy.BuiltinDenyList != nil && in.policy.BuiltinDenyList[name] {
		return nil, false
	}
	if in.policy.BuiltinAllowList != nil && !in.policy.BuiltinAllowList[name] {
		return nil, false
	}
	return b, true
}

func (in *Interpreter) resolveFilePath(spec string) (string, bool) {
	name := spec
	if !strings.HasSuffix(name, ".bob") {
		name += ".bob"
	}
	candidate := name
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(in.currentImporterDir(), name)
	}
	if abs, err := filepath.Abs(candidate); err == nil {
		if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
			return abs, true
		}
	}
	for _, dir := range in.policy.SearchPaths {
		candidate := filepath.Join(dir, name)
		if abs, err := filepath.Abs(candidate); err == nil {
			if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
				return abs, true
			}
		}
	}
	return "", false
}

func (in *Interpreter) loadFileModule(spec, path string, ctx *runtime.ExecutionContext) (value.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return value.None, &diag.Error{Kind: "Import Error", Message: fmt.Sprintf("Could not open module file: %s", path)}
	}
	p := parser.New(lexer.New(string(src)))
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return value.None, &diag.Error{Kind: "Parse Error", Message: fmt.Sprintf("in module %s: %v", spec, errs[0])}
	}

	if in.Reporter != nil {
		in.Reporter.PushSource(string(src), path)
		defer in.Reporter.PopSource()
	}
	in.PushImporterDir(filepath.Dir(path))
	defer in.PopImporterDir()

	// The module body runs in a child of the global scope so it can
	// reach the StdLib; exports snapshot only the module's own frame.
	modEnv := runtime.NewEnclosedEnvironment(in.Global)
	modCtx := runtime.NewExecutionContext(false)
	for _, s := range stmts {
		if err := in.execStmt(s, modEnv, modCtx); err != nil {
			return value.None, err
		}
		if modCtx.HasThrow {
			ctx.SetThrowWithKind(modCtx.ThrownValue, modCtx.ThrowKind, modCtx.ThrowLine, modCtx.ThrowColumn)
			return value.None, nil
		}
	}
	return value.ModuleValue{Name: spec, Exports: value.NewOrderedMapFrom(modEnv.Bindings())}, nil
}
