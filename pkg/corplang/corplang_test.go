package corplang

import (
	"bytes"
	"strings"
	"testing"

	"github.com/corplang/mp/internal/interp"
	"github.com/gkampitakis/go-snaps/snaps"
)

func TestLexReturnsTokensAndNoErrors(t *testing.T) {
	toks, errs := Lex(`var x = 1 + 2`, "t.mp")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	if len(toks) == 0 {
		t.Fatal("expected at least one token")
	}
}

func TestParseBestEffortReturnsASTAlongsideSyntaxErrors(t *testing.T) {
	prog, err := Parse(`var x = `, "t.mp")
	if err == nil {
		t.Fatal("expected a *ParseError for incomplete source")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("err = %T, want *ParseError", err)
	}
	if prog == nil {
		t.Fatal("expected a best-effort AST even on syntax error")
	}
}

func TestRuntimeRunExecutesAndExportsNamespace(t *testing.T) {
	var out bytes.Buffer
	rt, err := NewRuntime(Options{Output: &out})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	ns, err := rt.Run(`var greeting = "hi"`, "t.mp")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := ns.Vars["greeting"].String(); got != "hi" {
		t.Errorf("greeting = %q, want %q", got, "hi")
	}
}

func TestRuntimeRunSurfacesParseErrorWithoutExecuting(t *testing.T) {
	rt, err := NewRuntime(Options{})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	if _, err := rt.Run(`fn (`, "t.mp"); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestFormatErrorSingleLineForNonException(t *testing.T) {
	rt, err := NewRuntime(Options{})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	_, runErr := rt.Run(`fn (`, "t.mp")
	if runErr == nil {
		t.Fatal("expected a parse error")
	}
	formatted := FormatError(runErr, "")
	if formatted == "" {
		t.Error("expected a non-empty formatted message")
	}
	if strings.Contains(formatted, "\n") {
		t.Errorf("formatted = %q, want a single line", formatted)
	}
}

func TestFormatErrorExceptionDiagnosticsSnapshot(t *testing.T) {
	source := `var doc = __native__("json.parse", "not json")`
	rt, err := NewRuntime(Options{Security: interp.PermissiveSecurityPolicy{}})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	_, runErr := rt.Run(source, "native.mp")
	if runErr == nil {
		t.Fatal("expected a json.parse TypeError")
	}
	snaps.MatchSnapshot(t, FormatError(runErr, source))
}
