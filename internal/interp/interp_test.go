package interp

import (
	"testing"

	"github.com/cwbudde/go-bob/internal/diag"
	"github.com/cwbudde/go-bob/internal/lexer"
	"github.com/cwbudde/go-bob/internal/parser"
	"github.com/cwbudde/go-bob/internal/value"
)

func run(t *testing.T, src string) *Interpreter {
	t.Helper()
	in := New()
	p := parser.New(lexer.New(src))
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if err := in.Interpret(stmts); err != nil {
		t.Fatalf("interpret error: %v", err)
	}
	return in
}

func mustGet(t *testing.T, in *Interpreter, name string) value.Value {
	t.Helper()
	v, ok := in.Global.Get(name)
	if !ok {
		t.Fatalf("expected global %q to be defined", name)
	}
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	in := run(t, `var result = 2 + 3 * 4;`)
	v := mustGet(t, in, "result")
	if v != value.Int(14) {
		t.Fatalf("result = %v, want 14", v)
	}
}

func TestIfElseBranching(t *testing.T) {
	in := run(t, `
		var x = 5;
		var result = 0;
		if (x > 3) { result = 1; } else { result = 2; }
	`)
	if mustGet(t, in, "result") != value.Int(1) {
		t.Fatalf("expected then-branch to run")
	}
}

func TestWhileLoopAndBreak(t *testing.T) {
	in := run(t, `
		var i = 0;
		var sum = 0;
		while (true) {
			if (i >= 5) { break; }
			sum = sum + i;
			i = i + 1;
		}
	`)
	if mustGet(t, in, "sum") != value.Int(10) {
		t.Fatalf("sum = %v, want 10", mustGet(t, in, "sum"))
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	in := run(t, `
		func add(a, b) { return a + b; }
		var result = add(3, 4);
	`)
	if mustGet(t, in, "result") != value.Int(7) {
		t.Fatalf("result = %v, want 7", mustGet(t, in, "result"))
	}
}

func TestTailCallRecursionDoesNotOverflow(t *testing.T) {
	in := run(t, `
		func loop(n, acc) {
			if (n == 0) { return acc; }
			return loop(n - 1, acc + 1);
		}
		var result = loop(100000, 0);
	`)
	if mustGet(t, in, "result") != value.Int(100000) {
		t.Fatalf("result = %v, want 100000", mustGet(t, in, "result"))
	}
}

func TestThrowInsideTailCallIsCatchable(t *testing.T) {
	in := run(t, `
		func descend(n) {
			if (n == 0) { throw "bottom"; }
			return descend(n - 1);
		}
		var caught = "";
		try {
			descend(50);
		} catch (e) {
			caught = e;
		}
	`)
	if mustGet(t, in, "caught") != value.StringValue("bottom") {
		t.Fatalf("caught = %v, want bottom", mustGet(t, in, "caught"))
	}
}

func TestClosureCapture(t *testing.T) {
	in := run(t, `
		func makeCounter() {
			var count = 0;
			func increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		var counter = makeCounter();
		var a = counter();
		var b = counter();
	`)
	if mustGet(t, in, "a") != value.Int(1) {
		t.Fatalf("a = %v, want 1", mustGet(t, in, "a"))
	}
	if mustGet(t, in, "b") != value.Int(2) {
		t.Fatalf("b = %v, want 2", mustGet(t, in, "b"))
	}
}

func TestClassSingleInheritanceAndOverride(t *testing.T) {
	in := run(t, `
		class Animal {
			var name = "";
			func init(name) { this.name = name; }
			func speak() { return "..."; }
		}
		class Dog extends Animal {
			func speak() { return "Woof"; }
		}
		var a = Animal("Rex");
		var d = Dog("Fido");
		var animalSound = a.speak();
		var dogSound = d.speak();
		var dogName = d.name;
	`)
	if mustGet(t, in, "animalSound") != value.StringValue("...") {
		t.Fatalf("animalSound = %v", mustGet(t, in, "animalSound"))
	}
	if mustGet(t, in, "dogSound") != value.StringValue("Woof") {
		t.Fatalf("dogSound = %v", mustGet(t, in, "dogSound"))
	}
	if mustGet(t, in, "dogName") != value.StringValue("Fido") {
		t.Fatalf("dogName = %v", mustGet(t, in, "dogName"))
	}
}

func TestTryCatchClearsThrow(t *testing.T) {
	in := run(t, `
		var caught = "";
		try {
			throw "boom";
		} catch (e) {
			caught = e;
		}
		var after = "reached";
	`)
	if mustGet(t, in, "caught") != value.StringValue("boom") {
		t.Fatalf("caught = %v, want boom", mustGet(t, in, "caught"))
	}
	if mustGet(t, in, "after") != value.StringValue("reached") {
		t.Fatal("expected execution to continue after a caught throw")
	}
}

func TestUncaughtThrowReturnsError(t *testing.T) {
	in := New()
	p := parser.New(lexer.New(`throw "fatal";`))
	stmts := p.ParseProgram()
	err := in.Interpret(stmts)
	if err == nil {
		t.Fatal("expected an error from an uncaught throw")
	}
}

func TestArrayIndexReadAndWrite(t *testing.T) {
	in := run(t, `
		var arr = [1, 2, 3];
		arr[1] = 20;
		var second = arr[1];
	`)
	if mustGet(t, in, "second") != value.Int(20) {
		t.Fatalf("second = %v, want 20", mustGet(t, in, "second"))
	}
}

func TestArrayNegativeIndexThrows(t *testing.T) {
	in := run(t, `
		var caught = "";
		try {
			var arr = [1, 2, 3];
			var x = arr[-1];
		} catch (e) {
			caught = e;
		}
	`)
	if mustGet(t, in, "caught") != value.StringValue("Array index out of bounds") {
		t.Fatalf("caught = %v", mustGet(t, in, "caught"))
	}
}

func TestDictMissingKeyIsNone(t *testing.T) {
	in := run(t, `
		var d = {"a": 1};
		var missing = d["b"];
		d["b"] = 2;
		var present = d["b"];
	`)
	if mustGet(t, in, "missing") != value.None {
		t.Fatalf("missing = %v, want none", mustGet(t, in, "missing"))
	}
	if mustGet(t, in, "present") != value.Int(2) {
		t.Fatalf("present = %v, want 2", mustGet(t, in, "present"))
	}
}

func TestDictKeysMethodAndLenProperty(t *testing.T) {
	in := run(t, `
		var d = {"a": 1};
		d["b"] = 2;
		var count = d.keys().len;
	`)
	if mustGet(t, in, "count") != value.Int(2) {
		t.Fatalf("count = %v, want 2", mustGet(t, in, "count"))
	}
}

func TestBuiltinMethodsOnDict(t *testing.T) {
	in := run(t, `
		var d = {"x": 10, "y": 20};
		var size = d.len();
		var firstKey = d.keys()[0];
		var firstValue = d.values()[0];
		var hasX = d.has("x");
		var hasZ = d.has("z");
	`)
	if mustGet(t, in, "size") != value.Int(2) {
		t.Fatalf("size = %v, want 2", mustGet(t, in, "size"))
	}
	if mustGet(t, in, "firstKey") != value.StringValue("x") {
		t.Fatalf("firstKey = %v, want x", mustGet(t, in, "firstKey"))
	}
	if mustGet(t, in, "firstValue") != value.Int(10) {
		t.Fatalf("firstValue = %v, want 10", mustGet(t, in, "firstValue"))
	}
	if mustGet(t, in, "hasX") != value.True {
		t.Fatal("expected d.has(\"x\") to be true")
	}
	if mustGet(t, in, "hasZ") != value.False {
		t.Fatal("expected d.has(\"z\") to be false")
	}
}

func TestBuiltinMethodsOnArray(t *testing.T) {
	in := run(t, `
		var arr = [1, 2];
		arr.push(3);
		var afterPush = arr.len;
		var popped = arr.pop();
		var afterPop = arr.len();
	`)
	if mustGet(t, in, "afterPush") != value.Int(3) {
		t.Fatalf("afterPush = %v, want 3", mustGet(t, in, "afterPush"))
	}
	if mustGet(t, in, "popped") != value.Int(3) {
		t.Fatalf("popped = %v, want 3", mustGet(t, in, "popped"))
	}
	if mustGet(t, in, "afterPop") != value.Int(2) {
		t.Fatalf("afterPop = %v, want 2", mustGet(t, in, "afterPop"))
	}
}

func TestLenPropertyOnString(t *testing.T) {
	in := run(t, `
		var n = "hello".len;
		var m = "hello".len();
	`)
	if mustGet(t, in, "n") != value.Int(5) {
		t.Fatalf("n = %v, want 5", mustGet(t, in, "n"))
	}
	if mustGet(t, in, "m") != value.Int(5) {
		t.Fatalf("m = %v, want 5", mustGet(t, in, "m"))
	}
}

func TestDictFieldShadowsBuiltinLen(t *testing.T) {
	in := run(t, `
		var d = {"len": 42};
		var stored = d.len;
	`)
	if mustGet(t, in, "stored") != value.Int(42) {
		t.Fatalf("stored = %v, want the stored field to win", mustGet(t, in, "stored"))
	}
}

func TestDivisionByZeroKindSurvivesUncaught(t *testing.T) {
	in := New()
	p := parser.New(lexer.New(`var x = 1 / 0;`))
	stmts := p.ParseProgram()
	err := in.Interpret(stmts)
	if err == nil {
		t.Fatal("expected an error from division by zero")
	}
	de, ok := err.(*diag.Error)
	if !ok {
		t.Fatalf("expected *diag.Error, got %T", err)
	}
	if de.Kind != "Division by Zero" {
		t.Fatalf("Kind = %q, want Division by Zero", de.Kind)
	}
}

func TestLogicalOperatorsReturnDecidingOperand(t *testing.T) {
	in := run(t, `
		var a = 0 and "never";
		var b = 1 and "right";
		var c = 0 or "fallback";
		var d = "left" or "never";
	`)
	if mustGet(t, in, "a") != value.Int(0) {
		t.Fatalf("a = %v, want 0", mustGet(t, in, "a"))
	}
	if mustGet(t, in, "b") != value.StringValue("right") {
		t.Fatalf("b = %v, want right", mustGet(t, in, "b"))
	}
	if mustGet(t, in, "c") != value.StringValue("fallback") {
		t.Fatalf("c = %v, want fallback", mustGet(t, in, "c"))
	}
	if mustGet(t, in, "d") != value.StringValue("left") {
		t.Fatalf("d = %v, want left", mustGet(t, in, "d"))
	}
}

func TestSuperDispatch(t *testing.T) {
	in := run(t, `
		class A {
			func greet() { return "a"; }
		}
		class B extends A {
			func greet() { return "b-" + super.greet(); }
		}
		var result = B().greet();
	`)
	if mustGet(t, in, "result") != value.StringValue("b-a") {
		t.Fatalf("result = %v, want b-a", mustGet(t, in, "result"))
	}
}

func TestFinallyAlwaysRuns(t *testing.T) {
	in := run(t, `
		var order = "";
		try {
			throw "x";
		} catch (e) {
			order = order + "got " + e;
		} finally {
			order = order + ", done";
		}
	`)
	if mustGet(t, in, "order") != value.StringValue("got x, done") {
		t.Fatalf("order = %v", mustGet(t, in, "order"))
	}
}

func TestFinallySupersedesPendingReturn(t *testing.T) {
	in := run(t, `
		func f() {
			try {
				return "from-try";
			} finally {
				return "from-finally";
			}
		}
		var result = f();
	`)
	if mustGet(t, in, "result") != value.StringValue("from-finally") {
		t.Fatalf("result = %v, want from-finally", mustGet(t, in, "result"))
	}
}

func TestExtensionMethodOnString(t *testing.T) {
	in := run(t, `
		extension string {
			func shout() { return this + "!"; }
		}
		var result = "hey".shout();
	`)
	if mustGet(t, in, "result") != value.StringValue("hey!") {
		t.Fatalf("result = %v, want hey!", mustGet(t, in, "result"))
	}
}

func TestBoundMethodReference(t *testing.T) {
	in := run(t, `
		class Counter {
			var n = 0;
			func bump() { this.n = this.n + 1; return this.n; }
		}
		var c = Counter();
		var bump = c.bump;
		bump();
		var result = bump();
	`)
	if mustGet(t, in, "result") != value.Int(2) {
		t.Fatalf("result = %v, want 2", mustGet(t, in, "result"))
	}
}

func TestModulePropertyReadMissingIsNone(t *testing.T) {
	in := New()
	in.RegisterModule("m", func(b *ModuleBuilder) {
		b.Val("x", value.Int(1))
	})
	p := parser.New(lexer.New(`
		import m;
		var missing = m.nope;
	`))
	stmts := p.ParseProgram()
	if err := in.Interpret(stmts); err != nil {
		t.Fatalf("interpret error: %v", err)
	}
	if mustGet(t, in, "missing") != value.None {
		t.Fatalf("missing = %v, want none", mustGet(t, in, "missing"))
	}
}

func TestModulePropertyAssignThrows(t *testing.T) {
	in := New()
	in.RegisterModule("m", func(b *ModuleBuilder) {
		b.Val("x", value.Int(1))
	})
	p := parser.New(lexer.New(`
		var caught = "";
		import m;
		try {
			m.x = 2;
		} catch (e) {
			caught = e;
		}
	`))
	stmts := p.ParseProgram()
	if err := in.Interpret(stmts); err != nil {
		t.Fatalf("interpret error: %v", err)
	}
	if mustGet(t, in, "caught") != value.StringValue("Cannot assign property on module (immutable)") {
		t.Fatalf("caught = %v", mustGet(t, in, "caught"))
	}
}

func TestIntegerOverflowPromotesToBigInt(t *testing.T) {
	in := run(t, `
		var big = 9223372036854775807 + 1;
	`)
	v := mustGet(t, in, "big")
	if v.Kind() != value.KindBigInt {
		t.Fatalf("big has kind %v, want bigint", v.Kind())
	}
}

func TestForeachOverDictIteratesKeys(t *testing.T) {
	in := run(t, `
		var d = {"a": 1, "b": 2};
		var joined = "";
		foreach (k in d) {
			joined = joined + k;
		}
	`)
	if mustGet(t, in, "joined") != value.StringValue("ab") {
		t.Fatalf("joined = %v, want ab (insertion order)", mustGet(t, in, "joined"))
	}
}

func TestModuleRegisterAndImport(t *testing.T) {
	in := New()
	in.RegisterModule("greet", func(b *ModuleBuilder) {
		b.Fn("hello", func(args []value.Value, line, col int) (value.Value, error) {
			return value.StringValue("hello, " + value.AsString(args[0])), nil
		})
	})
	p := parser.New(lexer.New(`
		import greet;
		var result = greet.hello("world");
	`))
	stmts := p.ParseProgram()
	if err := in.Interpret(stmts); err != nil {
		t.Fatalf("interpret error: %v", err)
	}
	if mustGet(t, in, "result") != value.StringValue("hello, world") {
		t.Fatalf("result = %v", mustGet(t, in, "result"))
	}
}
