package ast

import (
	"testing"

	"github.com/corplang/mp/pkg/token"
)

func TestAttachSetsParent(t *testing.T) {
	prog := NewProgram("a.mp")
	id := NewIdentifier(token.Position{Line: 1, Column: 1}, "a.mp", "x")
	call := &FunctionCall{base: newBase(token.Position{Line: 1, Column: 1}, "a.mp"), Callee: id}

	Attach(call, id)

	if id.Parent() != Node(call) {
		t.Fatalf("expected identifier's parent to be the call expression")
	}
	if call.File() != "a.mp" {
		t.Fatalf("file not propagated")
	}
	_ = prog
}

func TestLiteralAndBlockStrings(t *testing.T) {
	lit := &Literal{base: newBase(token.Position{}, "x"), Kind: IntLiteral, Raw: "42", IVal: 42}
	if lit.String() != "42" {
		t.Fatalf("got %q", lit.String())
	}

	block := NewBlock(token.Position{}, "x")
	block.Statements = append(block.Statements, &ExprStatement{base: newBase(token.Position{}, "x"), Expr: lit})
	if len(block.Statements) != 1 {
		t.Fatalf("expected 1 statement")
	}
}
