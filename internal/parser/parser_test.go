package parser

import (
	"testing"

	"github.com/corplang/mp/internal/ast"
)

func checkErrors(t *testing.T, errs []*SyntaxException) {
	t.Helper()
	if len(errs) == 0 {
		return
	}
	for _, e := range errs {
		t.Errorf("parser error: %v", e)
	}
	t.FailNow()
}

func TestParseVarDecl(t *testing.T) {
	prog, errs := Parse(`var x = 1 + 2`, "t.mp")
	checkErrors(t, errs)
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("statement is %T, want *ast.VarDecl", prog.Statements[0])
	}
	if decl.Name != "x" {
		t.Errorf("name = %q, want x", decl.Name)
	}
	bin, ok := decl.Value.(*ast.BinaryOp)
	if !ok || bin.Op != "+" {
		t.Fatalf("value = %#v, want BinaryOp(+)", decl.Value)
	}
}

func TestParseFunctionDecl(t *testing.T) {
	prog, errs := Parse(`fn add(a, b: int) { return a + b }`, "t.mp")
	checkErrors(t, errs)
	fn, ok := prog.Statements[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("statement is %T, want *ast.FunctionDecl", prog.Statements[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v", fn)
	}
	if fn.Params[1].Type == nil || fn.Params[1].Type.Name != "int" {
		t.Errorf("param type = %+v", fn.Params[1].Type)
	}
}

func TestParseAsyncFunctionAndAwait(t *testing.T) {
	prog, errs := Parse(`async fn g() { return await f() }`, "t.mp")
	checkErrors(t, errs)
	fn := prog.Statements[0].(*ast.FunctionDecl)
	if !fn.IsAsync {
		t.Fatal("expected IsAsync=true")
	}
	ret := fn.Body.Statements[0].(*ast.Return)
	if _, ok := ret.Value.(*ast.Await); !ok {
		t.Fatalf("return value = %T, want *ast.Await", ret.Value)
	}
}

func TestParseClassWithVisibilityAndConstructor(t *testing.T) {
	src := `
class A {
	private var secret = 1
	fn A() { this.secret = 2 }
	fn peek() { return this.secret }
}`
	prog, errs := Parse(src, "t.mp")
	checkErrors(t, errs)
	cls := prog.Statements[0].(*ast.ClassDecl)
	if cls.Name != "A" || len(cls.Fields) != 1 || len(cls.Methods) != 2 {
		t.Fatalf("class = %+v", cls)
	}
	if cls.Fields[0].Visibility != ast.Private {
		t.Errorf("field visibility = %v, want Private", cls.Fields[0].Visibility)
	}
	if !cls.Methods[0].IsConstructor {
		t.Errorf("expected first method to be constructor")
	}
}

func TestParseClassExtends(t *testing.T) {
	prog, errs := Parse(`class Dog extends Animal { }`, "t.mp")
	checkErrors(t, errs)
	cls := prog.Statements[0].(*ast.ClassDecl)
	if cls.Parent != "Animal" {
		t.Errorf("parent = %q, want Animal", cls.Parent)
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	src := `try { throw E() } catch (e: Exception) { print(e) } finally { return 2 }`
	prog, errs := Parse(src, "t.mp")
	checkErrors(t, errs)
	tr := prog.Statements[0].(*ast.Try)
	if len(tr.Catches) != 1 || tr.Catches[0].Name != "e" || tr.Catches[0].Type.Name != "Exception" {
		t.Fatalf("try = %+v", tr)
	}
	if tr.Finally == nil {
		t.Fatal("expected finally block")
	}
}

func TestParseTryRequiresCatchOrFinally(t *testing.T) {
	_, errs := Parse(`try { print(1) }`, "t.mp")
	if len(errs) == 0 {
		t.Fatal("expected a syntax error for try without catch/finally")
	}
}

func TestParseForThreePart(t *testing.T) {
	prog, errs := Parse(`for (var i = 0; i < 10; i = i + 1) { print(i) }`, "t.mp")
	checkErrors(t, errs)
	f, ok := prog.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("statement is %T, want *ast.For", prog.Statements[0])
	}
	if f.Init == nil || f.Cond == nil || f.Update == nil {
		t.Fatalf("for = %+v", f)
	}
}

func TestParseForIn(t *testing.T) {
	prog, errs := Parse(`for (k in obj) { print(k) }`, "t.mp")
	checkErrors(t, errs)
	if _, ok := prog.Statements[0].(*ast.ForIn); !ok {
		t.Fatalf("statement is %T, want *ast.ForIn", prog.Statements[0])
	}
}

func TestParseForOf(t *testing.T) {
	prog, errs := Parse(`for (v of obj) { print(v) }`, "t.mp")
	checkErrors(t, errs)
	if _, ok := prog.Statements[0].(*ast.ForOf); !ok {
		t.Fatalf("statement is %T, want *ast.ForOf", prog.Statements[0])
	}
}

func TestParseWithStatement(t *testing.T) {
	prog, errs := Parse(`with (open("f") as f) { print(f) }`, "t.mp")
	checkErrors(t, errs)
	w := prog.Statements[0].(*ast.With)
	if len(w.Items) != 1 || w.Items[0].As != "f" {
		t.Fatalf("with = %+v", w)
	}
}

func TestParseNamedArguments(t *testing.T) {
	prog, errs := Parse(`f(1, name: 2, other = 3)`, "t.mp")
	checkErrors(t, errs)
	stmt := prog.Statements[0].(*ast.ExprStatement)
	call := stmt.Expr.(*ast.FunctionCall)
	if len(call.Args) != 3 {
		t.Fatalf("args = %+v", call.Args)
	}
	if call.Args[0].Name != "" || call.Args[1].Name != "name" || call.Args[2].Name != "other" {
		t.Fatalf("args = %+v", call.Args)
	}
}

func TestParseGenericIdentifierVsComparison(t *testing.T) {
	prog, errs := Parse(`var a = List<int>`, "t.mp")
	checkErrors(t, errs)
	decl := prog.Statements[0].(*ast.VarDecl)
	if _, ok := decl.Value.(*ast.GenericIdentifier); !ok {
		t.Fatalf("value = %T, want *ast.GenericIdentifier", decl.Value)
	}

	prog2, errs2 := Parse(`var b = a < c`, "t.mp")
	checkErrors(t, errs2)
	decl2 := prog2.Statements[0].(*ast.VarDecl)
	bin, ok := decl2.Value.(*ast.BinaryOp)
	if !ok || bin.Op != "<" {
		t.Fatalf("value = %#v, want BinaryOp(<)", decl2.Value)
	}
}

func TestParseFString(t *testing.T) {
	prog, errs := Parse(`var s = f"hello {name}!"`, "t.mp")
	checkErrors(t, errs)
	decl := prog.Statements[0].(*ast.VarDecl)
	interp, ok := decl.Value.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("value = %T, want *ast.InterpolatedString", decl.Value)
	}
	if len(interp.Exprs) != 1 || len(interp.Parts) != 2 {
		t.Fatalf("interp = %+v", interp)
	}
	if _, ok := interp.Exprs[0].(*ast.Identifier); !ok {
		t.Fatalf("placeholder = %T, want *ast.Identifier", interp.Exprs[0])
	}
}

func TestParseJSONObjectLiteral(t *testing.T) {
	prog, errs := Parse(`var cfg = {"a": 1, "b": [1, 2, 3]}`, "t.mp")
	checkErrors(t, errs)
	decl := prog.Statements[0].(*ast.VarDecl)
	obj, ok := decl.Value.(*ast.JsonObject)
	if !ok {
		t.Fatalf("value = %T, want *ast.JsonObject", decl.Value)
	}
	if len(obj.Keys) != 2 || obj.Keys[0] != "a" || obj.Keys[1] != "b" {
		t.Fatalf("keys = %+v", obj.Keys)
	}
	if _, ok := obj.Values[1].(*ast.JsonArray); !ok {
		t.Fatalf("b = %T, want *ast.JsonArray", obj.Values[1])
	}
}

func TestParseReturnOutsideFunctionIsStillParsed(t *testing.T) {
	// The parser itself never rejects a bare `return`; only the interpreter
	// enforces "Return statement outside of function" at execution time.
	prog, errs := Parse(`return 1`, "t.mp")
	checkErrors(t, errs)
	if _, ok := prog.Statements[0].(*ast.Return); !ok {
		t.Fatalf("statement is %T, want *ast.Return", prog.Statements[0])
	}
}

func TestParseEnumDecl(t *testing.T) {
	prog, errs := Parse(`enum Color { Red, Green, Blue = 10 }`, "t.mp")
	checkErrors(t, errs)
	e := prog.Statements[0].(*ast.EnumDecl)
	if len(e.Members) != 3 || e.Members[2].Value == nil {
		t.Fatalf("enum = %+v", e)
	}
}

func TestParseFromImport(t *testing.T) {
	prog, errs := Parse(`from core.io import open, close as shut`, "t.mp")
	checkErrors(t, errs)
	fi := prog.Statements[0].(*ast.FromImportDecl)
	if fi.Module != "core.io" || len(fi.Names) != 2 || fi.Names[1].Alias != "shut" {
		t.Fatalf("from-import = %+v", fi)
	}
}
