package parser

import (
	"testing"

	"github.com/cwbudde/go-bob/internal/ast"
	"github.com/cwbudde/go-bob/internal/lexer"
	"github.com/cwbudde/go-bob/internal/token"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	p := New(lexer.New(src))
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return stmts
}

func TestParseArithmeticPrecedence(t *testing.T) {
	stmts := parse(t, `print(a + b * 4);`)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", stmts[0])
	}
	call, ok := es.X.(*ast.Call)
	if !ok {
		t.Fatalf("expected Call, got %T", es.X)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(call.Args))
	}
	bin, ok := call.Args[0].(*ast.Binary)
	if !ok {
		t.Fatalf("expected Binary, got %T", call.Args[0])
	}
	if bin.Op != token.PLUS {
		t.Fatalf("expected top-level op PLUS, got %s", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != token.STAR {
		t.Fatalf("expected right side to be a STAR binary, got %T", bin.Right)
	}
}

func TestParseVarDecl(t *testing.T) {
	stmts := parse(t, `var x = 10;`)
	v, ok := stmts[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %T", stmts[0])
	}
	if v.Name != "x" {
		t.Fatalf("expected name x, got %s", v.Name)
	}
	lit, ok := v.Init.(*ast.Literal)
	if !ok || lit.Value != "10" {
		t.Fatalf("expected literal 10, got %#v", v.Init)
	}
}

func TestParseFuncDeclAndTailCall(t *testing.T) {
	stmts := parse(t, `func fact(n, acc) { return fact(n - 1, acc * n); }`)
	fd, ok := stmts[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", stmts[0])
	}
	if fd.Name != "fact" || len(fd.Params) != 2 {
		t.Fatalf("unexpected FuncDecl shape: %+v", fd)
	}
	ret, ok := fd.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", fd.Body[0])
	}
	call, ok := ret.Val.(*ast.Call)
	if !ok {
		t.Fatalf("expected Call in tail position, got %T", ret.Val)
	}
	if !call.IsTailCall {
		t.Fatal("expected IsTailCall to be set for a call in return position")
	}
}

func TestParseIfElse(t *testing.T) {
	stmts := parse(t, `if (x > 0) { y = 1; } else { y = 2; }`)
	ifs, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", stmts[0])
	}
	if ifs.Else == nil {
		t.Fatal("expected an else branch")
	}
}

func TestParseClassWithInheritance(t *testing.T) {
	stmts := parse(t, `
		class Animal {
			var name = "";
			func init(name) { this.name = name; }
			func speak() { return "..."; }
		}
		class Dog extends Animal {
			func speak() { return "Woof"; }
		}
	`)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 class decls, got %d", len(stmts))
	}
	dog, ok := stmts[1].(*ast.Class)
	if !ok {
		t.Fatalf("expected Class, got %T", stmts[1])
	}
	if dog.Name != "Dog" || dog.Parent != "Animal" {
		t.Fatalf("unexpected Dog class shape: %+v", dog)
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	stmts := parse(t, `
		try {
			throw "boom";
		} catch (e) {
			print(e);
		} finally {
			print("done");
		}
	`)
	try, ok := stmts[0].(*ast.Try)
	if !ok {
		t.Fatalf("expected Try, got %T", stmts[0])
	}
	if try.CatchVar != "e" || try.CatchBlock == nil || try.FinallyBlock == nil {
		t.Fatalf("unexpected Try shape: %+v", try)
	}
}

func TestParseArrayAndDictLiterals(t *testing.T) {
	stmts := parse(t, `var a = [1, 2, 3]; var d = {"x": 1, "y": 2};`)
	av := stmts[0].(*ast.VarDecl)
	arr, ok := av.Init.(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("unexpected array literal: %#v", av.Init)
	}
	dv := stmts[1].(*ast.VarDecl)
	dict, ok := dv.Init.(*ast.DictLiteral)
	if !ok || len(dict.Entries) != 2 {
		t.Fatalf("unexpected dict literal: %#v", dv.Init)
	}
}

func TestParseForeach(t *testing.T) {
	stmts := parse(t, `foreach (item in items) { print(item); }`)
	fe, ok := stmts[0].(*ast.Foreach)
	if !ok {
		t.Fatalf("expected Foreach, got %T", stmts[0])
	}
	if fe.Name != "item" {
		t.Fatalf("expected loop var item, got %s", fe.Name)
	}
}

func TestParseImportForms(t *testing.T) {
	stmts := parse(t, `import math; from json import parse as parseJSON;`)
	imp, ok := stmts[0].(*ast.Import)
	if !ok || imp.Name != "math" {
		t.Fatalf("unexpected Import: %#v", stmts[0])
	}
	fromImp, ok := stmts[1].(*ast.FromImport)
	if !ok || fromImp.Module != "json" {
		t.Fatalf("unexpected FromImport: %#v", stmts[1])
	}
}
