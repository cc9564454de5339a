package modules

import (
	"testing"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/lexer"
	"github.com/cwbudde/go-bob/internal/parser"
	"github.com/cwbudde/go-bob/internal/value"
)

func run(t *testing.T, src string) *interp.Interpreter {
	t.Helper()
	in := interp.New()
	InstallAll(in)
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

func mustGet(t *testing.T, in *interp.Interpreter, name string) value.Value {
	t.Helper()
	v, ok := in.Global.Get(name)
	if !ok {
		t.Fatalf("expected global %q to be defined", name)
	}
	return v
}

func TestMathModule(t *testing.T) {
	in := run(t, `
		import math;
		var root = math.sqrt(16.0);
		var floored = math.floor(3.7);
		var powed = math.pow(2.0, 10.0);
		var pi = math.pi;
	`)
	if mustGet(t, in, "root") != value.NumberValue(4) {
		t.Fatalf("root = %v, want 4", mustGet(t, in, "root"))
	}
	if mustGet(t, in, "floored") != value.NumberValue(3) {
		t.Fatalf("floored = %v, want 3", mustGet(t, in, "floored"))
	}
	if mustGet(t, in, "powed") != value.NumberValue(1024) {
		t.Fatalf("powed = %v, want 1024", mustGet(t, in, "powed"))
	}
	pi := mustGet(t, in, "pi")
	if f, ok := pi.(value.NumberValue); !ok || f < 3.14 || f > 3.15 {
		t.Fatalf("pi = %v", pi)
	}
}

func TestRandomModuleSeedIsDeterministic(t *testing.T) {
	in := run(t, `
		import random;
		random.seed(42);
		var a = random.int(0, 1000);
		random.seed(42);
		var b = random.int(0, 1000);
		var inRange = a >= 0 and a <= 1000;
	`)
	if mustGet(t, in, "a") != mustGet(t, in, "b") {
		t.Fatalf("same seed produced different values: %v vs %v",
			mustGet(t, in, "a"), mustGet(t, in, "b"))
	}
	if mustGet(t, in, "inRange") != value.True {
		t.Fatal("expected random.int result within requested range")
	}
}

func TestPathModule(t *testing.T) {
	in := run(t, `
		import path;
		var joined = path.join("a", "b", "c.bob");
		var base = path.base(joined);
		var ext = path.ext(joined);
	`)
	if mustGet(t, in, "base") != value.StringValue("c.bob") {
		t.Fatalf("base = %v, want c.bob", mustGet(t, in, "base"))
	}
	if mustGet(t, in, "ext") != value.StringValue(".bob") {
		t.Fatalf("ext = %v, want .bob", mustGet(t, in, "ext"))
	}
}

func TestBase64RoundTrip(t *testing.T) {
	in := run(t, `
		import base64;
		var encoded = base64.encode("hello, bob");
		var decoded = base64.decode(encoded);
	`)
	if mustGet(t, in, "encoded") != value.StringValue("aGVsbG8sIGJvYg==") {
		t.Fatalf("encoded = %v", mustGet(t, in, "encoded"))
	}
	if mustGet(t, in, "decoded") != value.StringValue("hello, bob") {
		t.Fatalf("decoded = %v", mustGet(t, in, "decoded"))
	}
}

func TestTimeModuleMonotonic(t *testing.T) {
	in := run(t, `
		import time;
		var first = time.monotonic();
		var second = time.monotonic();
		var ordered = second >= first;
	`)
	if mustGet(t, in, "ordered") != value.True {
		t.Fatal("expected monotonic clock to be non-decreasing")
	}
}

func TestSysModuleArgv(t *testing.T) {
	in := interp.New()
	InstallAll(in)
	in.SetArgv([]string{"bob", "script.bob"}, "/usr/bin/bob")

	p := parser.New(lexer.New(`
		import sys;
		var argc = sys.argv();
		var exe = sys.executablePath();
	`))
	stmts := p.ParseProgram()
	if err := in.Interpret(stmts); err != nil {
		t.Fatalf("interpret error: %v", err)
	}
	argv, ok := mustGet(t, in, "argc").(value.ArrayValue)
	if !ok || len(*argv.Items) != 2 {
		t.Fatalf("argv = %v, want 2-element array", mustGet(t, in, "argc"))
	}
	if mustGet(t, in, "exe") != value.StringValue("/usr/bin/bob") {
		t.Fatalf("exe = %v", mustGet(t, in, "exe"))
	}
}

func TestJSONParse(t *testing.T) {
	in := run(t, `
		import json;
		var doc = json.parse("{\"name\": \"bob\", \"tags\": [1, 2], \"ok\": true}");
		var name = doc["name"];
		var firstTag = doc["tags"][0];
		var ok = doc["ok"];
	`)
	if mustGet(t, in, "name") != value.StringValue("bob") {
		t.Fatalf("name = %v, want bob", mustGet(t, in, "name"))
	}
	if mustGet(t, in, "firstTag") != value.NumberValue(1) {
		t.Fatalf("firstTag = %v, want 1", mustGet(t, in, "firstTag"))
	}
	if mustGet(t, in, "ok") != value.True {
		t.Fatal("expected ok to be true")
	}
}

func TestJSONStringify(t *testing.T) {
	in := run(t, `
		import json;
		var text = json.stringify({"a": 1, "b": [true, none]});
	`)
	if mustGet(t, in, "text") != value.StringValue(`{"a":1,"b":[true,null]}`) {
		t.Fatalf("text = %v", mustGet(t, in, "text"))
	}
}

func TestJSONParseInvalidIsCatchable(t *testing.T) {
	in := run(t, `
		import json;
		var caught = "";
		try {
			json.parse("{not json");
		} catch (e) {
			caught = e;
		}
	`)
	if mustGet(t, in, "caught") == value.StringValue("") {
		t.Fatal("expected invalid JSON to throw")
	}
}

func TestBuiltinModuleDenyList(t *testing.T) {
	in := interp.New()
	InstallAll(in)
	in.SetBuiltinModuleDenyList("math")

	p := parser.New(lexer.New(`
		var caught = "";
		try {
			import math;
		} catch (e) {
			caught = e;
		}
	`))
	stmts := p.ParseProgram()
	if err := in.Interpret(stmts); err != nil {
		t.Fatalf("interpret error: %v", err)
	}
	if mustGet(t, in, "caught") != value.StringValue("Module not found: math") {
		t.Fatalf("caught = %v", mustGet(t, in, "caught"))
	}
}

func TestModuleCacheHit(t *testing.T) {
	in := run(t, `
		import math;
		import math as m2;
		var same = math.pi == m2.pi;
	`)
	if mustGet(t, in, "same") != value.True {
		t.Fatal("expected repeated imports to observe the same module")
	}
	if len(in.ModuleCacheSnapshot()) != 1 {
		t.Fatalf("cache = %v, want exactly one entry", in.ModuleCacheSnapshot())
	}
}
