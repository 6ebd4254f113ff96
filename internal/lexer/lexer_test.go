package lexer

import (
	"testing"

	"github.com/corplang/mp/pkg/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestNextTokenOperatorsAndKeywords(t *testing.T) {
	input := `var x = 1 + 2
fn add(a, b) { return a + b }`

	toks, errs := Tokenize(input, "<test>")
	if len(errs) != 0 {
		t.Fatalf("unexpected lexer errors: %v", errs)
	}

	want := []token.Kind{
		token.VAR, token.IDENT, token.ASSIGN, token.NUMBER, token.PLUS, token.NUMBER, token.NEWLINE,
		token.FN, token.IDENT, token.LPAREN, token.IDENT, token.COMMA, token.IDENT, token.RPAREN,
		token.LBRACE, token.RETURN, token.IDENT, token.PLUS, token.IDENT, token.RBRACE, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %d want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestStringEscapes(t *testing.T) {
	toks, errs := Tokenize(`"a\nb\tc"`, "<test>")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Kind != token.STRING {
		t.Fatalf("expected STRING, got %s", toks[0].Kind)
	}
	if toks[0].Text != "a\nb\tc" {
		t.Fatalf("unexpected decoded text: %q", toks[0].Text)
	}
}

func TestTripleQuotedDocstring(t *testing.T) {
	toks, _ := Tokenize(`"""hello
world"""`, "<test>")
	if toks[0].Kind != token.DOCSTRING {
		t.Fatalf("expected DOCSTRING, got %s", toks[0].Kind)
	}
}

func TestFStringToken(t *testing.T) {
	toks, _ := Tokenize(`f"hi {name}!"`, "<test>")
	if toks[0].Kind != token.FSTRING {
		t.Fatalf("expected FSTRING, got %s", toks[0].Kind)
	}
	if toks[0].Text != "hi {name}!" {
		t.Fatalf("unexpected fstring text: %q", toks[0].Text)
	}
}

func TestJSONBlobHeuristic(t *testing.T) {
	toks, _ := Tokenize(`var cfg = {"a": 1, "b": [1, 2, 3]}`, "<test>")
	var sawObject bool
	for _, tk := range toks {
		if tk.Kind == token.OBJECT {
			sawObject = true
		}
	}
	if !sawObject {
		t.Fatalf("expected a JSON OBJECT token, got kinds %v", kinds(toks))
	}
}

func TestIndexAccessIsNotJSON(t *testing.T) {
	toks, _ := Tokenize(`a[0]`, "<test>")
	want := []token.Kind{token.IDENT, token.LBRACK, token.NUMBER, token.RBRACK, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestBlockOpenerIsNotJSON(t *testing.T) {
	toks, _ := Tokenize(`if (x) { return 1 }`, "<test>")
	var sawObject bool
	for _, tk := range toks {
		if tk.Kind == token.OBJECT {
			sawObject = true
		}
	}
	if sawObject {
		t.Fatalf("did not expect a JSON OBJECT token in a block, got %v", kinds(toks))
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	_, errs := Tokenize(`"abc`, "<test>")
	if len(errs) == 0 {
		t.Fatalf("expected an error for unterminated string")
	}
}

func TestNumberLiteralWithExponent(t *testing.T) {
	toks, errs := Tokenize(`1.5e10`, "<test>")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Kind != token.NUMBER || toks[0].Text != "1.5e10" {
		t.Fatalf("got %#v", toks[0])
	}
}

func TestUnicodeIdentifier(t *testing.T) {
	toks, errs := Tokenize(`var Δ = 1`, "<test>")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[1].Kind != token.IDENT || toks[1].Text != "Δ" {
		t.Fatalf("got %#v", toks[1])
	}
}
