package interp

import (
	"bytes"
	"testing"

	"github.com/corplang/mp/internal/parser"
	"github.com/corplang/mp/pkg/token"
)

func mustExec(t *testing.T, i *Interpreter, src string) *ModuleNamespace {
	t.Helper()
	prog, errs := parser.Parse(src, "t.mp")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	ns, err := i.Execute(prog)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	return ns
}

func TestFunctionCallPositionalNamedAndDefaultArgs(t *testing.T) {
	i := New(&bytes.Buffer{})
	src := `
fn greet(name, greeting = "hello") {
	return greeting + " " + name
}
var a = greet("Ada")
var b = greet("Lin", greeting: "hi")
`
	ns := mustExec(t, i, src)
	if got := ns.Vars["a"].String(); got != "hello Ada" {
		t.Errorf("a = %q, want %q", got, "hello Ada")
	}
	if got := ns.Vars["b"].String(); got != "hi Lin" {
		t.Errorf("b = %q, want %q", got, "hi Lin")
	}
}

func TestFunctionCallTooManyPositionalArgsErrors(t *testing.T) {
	i := New(&bytes.Buffer{})
	prog, errs := parser.Parse(`fn f(a) { return a } var x = f(1, 2)`, "t.mp")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if _, err := i.Execute(prog); err == nil {
		t.Fatal("expected an error binding too many positional arguments")
	}
}

func TestClassInheritanceAndSuperConstructor(t *testing.T) {
	i := New(&bytes.Buffer{})
	src := `
class Animal {
	var sound = "..."
	fn Animal(sound) { this.sound = sound }
	fn speak() { return this.sound }
}
class Dog extends Animal {
	fn Dog() { super("woof") }
}
var d = new Dog()
var noise = d.speak()
`
	ns := mustExec(t, i, src)
	if got := ns.Vars["noise"].String(); got != "woof" {
		t.Errorf("noise = %q, want %q", got, "woof")
	}
}

func TestAsyncAwaitMemoizesAwaitable(t *testing.T) {
	i := New(&bytes.Buffer{})
	src := `
var calls = 0
async fn inc() {
	calls = calls + 1
	return calls
}
async fn run() {
	var a = inc()
	var first = await a
	var second = await a
	return first + second
}
`
	prog, errs := parser.Parse(src, "t.mp")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	ns, err := i.Execute(prog)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	runFn, ok := ns.Vars["run"]
	if !ok {
		t.Fatal("run not defined")
	}
	ctx := i.NewModuleContext("t.mp")
	aw, err := i.callFunction(ctx, runFn.(*Function), nil, token.Position{})
	if err != nil {
		t.Fatalf("calling run: %v", err)
	}
	result, err := i.runAwaitable(aw.(*Awaitable))
	if err != nil {
		t.Fatalf("awaiting run: %v", err)
	}
	if got := result.String(); got != "2" {
		t.Errorf("result = %s, want 2 (1 + 1, inc runs exactly once)", got)
	}
}

func TestCallingAsyncFunctionFromNonAsyncContextErrors(t *testing.T) {
	i := New(&bytes.Buffer{})
	src := `
async fn inc() {
	return 1
}
var x = inc()
`
	prog, errs := parser.Parse(src, "t.mp")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if _, err := i.Execute(prog); err == nil {
		t.Fatal("expected calling an async function from non-async top-level code to error")
	}
}

func TestContractRequiresFailureRaisesAssertionError(t *testing.T) {
	i := New(&bytes.Buffer{})
	src := `
contract divide {
	require b != 0 : "b must not be zero"
}
fn divide(a, b) { return a }
var x = divide(1, 0)
`
	prog, errs := parser.Parse(src, "t.mp")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if _, err := i.Execute(prog); err == nil {
		t.Fatal("expected a requires-violation error")
	}
}

func TestTryCatchThrow(t *testing.T) {
	i := New(&bytes.Buffer{})
	src := `
var result = "unset"
try {
	throw "boom"
} catch (e: any) {
	result = "caught"
}
`
	ns := mustExec(t, i, src)
	if got := ns.Vars["result"].String(); got != "caught" {
		t.Errorf("result = %q, want %q", got, "caught")
	}
}

func TestJSONNativeRoundTrip(t *testing.T) {
	i := New(&bytes.Buffer{})
	i.Security = PermissiveSecurityPolicy{}
	src := `var doc = __native__("json.parse", "{\"a\": 1, \"b\": [1, 2, 3]}")`
	ns := mustExec(t, i, src)
	m, ok := ns.Vars["doc"].(*Map)
	if !ok {
		t.Fatalf("doc = %T, want *Map", ns.Vars["doc"])
	}
	a, ok := m.Get("a")
	if !ok || a.String() != "1" {
		t.Errorf("doc.a = %v, want 1", a)
	}
	list, ok := m.Get("b")
	if !ok {
		t.Fatalf("doc.b missing")
	}
	if l, ok := list.(*List); !ok || len(l.Elements) != 3 {
		t.Errorf("doc.b = %v, want a 3-element list", list)
	}
}

func TestJSONNativeDeniedByDefaultSecurity(t *testing.T) {
	i := New(&bytes.Buffer{})
	src := `var doc = __native__("json.parse", "{}")`
	prog, errs := parser.Parse(src, "t.mp")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if _, err := i.Execute(prog); err == nil {
		t.Fatal("expected __native__ to be denied under DefaultSecurityPolicy")
	}
}
