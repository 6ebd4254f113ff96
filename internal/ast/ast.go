// Package ast defines the tagged-variant syntax tree produced by the parser
// and walked by the interpreter. Every node carries its source position, the
// file it came from, and a (diagnostics-only) back-reference to its parent.
package ast

import "github.com/corplang/mp/pkg/token"

// Node is implemented by every AST variant.
type Node interface {
	Pos() token.Position
	File() string
	Parent() Node
	SetParent(Node)
	String() string
}

// Expr is implemented by every expression variant.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement variant.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is implemented by every declaration variant. Declarations are also
// statements: they can appear anywhere a statement can.
type Decl interface {
	Stmt
	declNode()
}

// base is embedded by every concrete node to supply the common Node fields
// without repeating them. It is never used on its own.
type base struct {
	pos    token.Position
	file   string
	parent Node
}

func (b *base) Pos() token.Position { return b.pos }
func (b *base) File() string        { return b.file }
func (b *base) Parent() Node        { return b.parent }
func (b *base) SetParent(p Node)    { b.parent = p }

func newBase(pos token.Position, file string) base {
	return base{pos: pos, file: file}
}

// TypeExpr is a parsed type annotation: a name, optional generic arguments,
// and optional union members (A | B | C).
type TypeExpr struct {
	Name     string
	Generics []*TypeExpr
	Union    []*TypeExpr
	Nullable bool
}

func (t *TypeExpr) String() string {
	if t == nil {
		return ""
	}
	s := t.Name
	if len(t.Generics) > 0 {
		s += "<"
		for i, g := range t.Generics {
			if i > 0 {
				s += ", "
			}
			s += g.String()
		}
		s += ">"
	}
	for _, u := range t.Union {
		s += " | " + u.String()
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

// Program is the root of every parsed source file: an ordered sequence of
// top-level statements plus an optional leading docstring.
type Program struct {
	base
	Docstring  string
	Statements []Stmt
	FilePath   string
}

func NewProgram(file string) *Program {
	return &Program{base: newBase(token.Position{Line: 1, Column: 1}, file), FilePath: file}
}

func (p *Program) String() string {
	s := ""
	for _, st := range p.Statements {
		s += st.String() + "\n"
	}
	return s
}

// Attach records parent as the diagnostics-only back-reference for each of
// children. Parent links exist purely so the diagnostics formatter can
// recover an enclosing statement/function name when printing a frame; they
// are never used for ownership or traversal during evaluation. The parser
// calls this as it adds each statement to a program or block and each member
// to a class, rather than in a separate tree walk; expression nodes are not
// attached.
func Attach(parent Node, children ...Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.SetParent(parent)
	}
}
