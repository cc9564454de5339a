// Package bob is the host-embedding API: a thin façade over
// internal/interp that wires up the
// default StdLib globals and builtin modules, and exposes
// string/file evaluation entry points for both the CLI (cmd/bob) and
// any Go program embedding the interpreter.
package bob

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/go-bob/internal/ast"
	"github.com/cwbudde/go-bob/internal/diag"
	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/lexer"
	"github.com/cwbudde/go-bob/internal/modules"
	"github.com/cwbudde/go-bob/internal/parser"
	"github.com/cwbudde/go-bob/internal/stdlib"
	"github.com/cwbudde/go-bob/internal/value"
)

// Interpreter is the embeddable handle onto a running bob program: a
// core interp.Interpreter plus the default reporter installed by New.
type Interpreter struct {
	core     *interp.Interpreter
	reporter *diag.DefaultReporter
}

// New builds an Interpreter with the StdLib globals and all builtin
// modules installed, and a DefaultReporter writing to stderr.
func New() *Interpreter {
	core := interp.New()
	reporter := diag.NewDefaultReporter(func(s string) { fmt.Fprint(os.Stderr, s) })
	core.SetErrorReporter(reporter)

	stdlib.Install(core)
	modules.InstallAll(core)

	return &Interpreter{core: core, reporter: reporter}
}

// SetNoColor toggles ANSI color in rendered diagnostics.
func (in *Interpreter) SetNoColor(noColor bool) {
	in.reporter.NoColor = noColor
}

// SetArgv forwards the process argv and executable path to the
// `sys` builtin module.
func (in *Interpreter) SetArgv(args []string, executablePath string) {
	in.core.SetArgv(args, executablePath)
}

// SetModulePolicy configures file-import resolution.
func (in *Interpreter) SetModulePolicy(allowFiles, preferFiles bool, searchPaths []string) {
	in.core.SetModulePolicy(allowFiles, preferFiles, searchPaths)
}

// SetBuiltinModulePolicy toggles whether `import` may resolve to a
// builtin module at all.
func (in *Interpreter) SetBuiltinModulePolicy(allow bool) {
	in.core.SetBuiltinModulePolicy(allow)
}

// SetBuiltinModuleAllowList/DenyList restrict which builtin module
// names an `import` may resolve to.
func (in *Interpreter) SetBuiltinModuleAllowList(names ...string) {
	in.core.SetBuiltinModuleAllowList(names...)
}

func (in *Interpreter) SetBuiltinModuleDenyList(names ...string) {
	in.core.SetBuiltinModuleDenyList(names...)
}

// RegisterModule registers a host-provided builtin module.
func (in *Interpreter) RegisterModule(name string, builder func(*interp.ModuleBuilder)) {
	in.core.RegisterModule(name, builder)
}

// SetErrorReporter overrides the default reporter, e.g. to capture
// diagnostics instead of writing them to stderr.
func (in *Interpreter) SetErrorReporter(r diag.Reporter) {
	in.core.SetErrorReporter(r)
}

// Core exposes the underlying interp.Interpreter for callers that need
// direct access to the Global environment or registries.
func (in *Interpreter) Core() *interp.Interpreter { return in.core }

// EvalString lexes, parses and interprets code, attributing
// diagnostics to fileName.
func (in *Interpreter) EvalString(code, fileName string) (value.Value, error) {
	in.core.PushSource(code, fileName)
	defer in.core.PopSource()

	stmts, err := parse(code, fileName, in.core)
	if err != nil {
		return value.None, err
	}
	if err := in.core.Interpret(stmts); err != nil {
		return value.None, err
	}
	return value.None, nil
}

// EvalFile reads path and evaluates it as bob source. Relative imports
// inside the file resolve against the file's own directory.
func (in *Interpreter) EvalFile(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.None, err
	}
	in.core.PushImporterDir(filepath.Dir(path))
	defer in.core.PopImporterDir()
	return in.EvalString(string(data), path)
}

func parse(code, fileName string, core *interp.Interpreter) ([]ast.Stmt, error) {
	p := parser.New(lexer.New(code))
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		if core.Reporter != nil {
			core.Reporter.ReportError(0, 0, "Parse Error", errs[0].Error(), "", false)
		}
		return nil, &diag.Error{Kind: "Parse Error", Message: errs[0].Error()}
	}
	return stmts, nil
}
