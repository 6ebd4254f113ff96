package ast

import "github.com/corplang/mp/pkg/token"

func (*Identifier) exprNode()          {}
func (*GenericIdentifier) exprNode()   {}
func (*Literal) exprNode()             {}
func (*NullLiteral) exprNode()         {}
func (*BinaryOp) exprNode()            {}
func (*UnaryOp) exprNode()             {}
func (*Ternary) exprNode()             {}
func (*Assignment) exprNode()          {}
func (*FunctionCall) exprNode()        {}
func (*PropertyAccess) exprNode()      {}
func (*IndexAccess) exprNode()         {}
func (*NewExpression) exprNode()       {}
func (*ThisExpression) exprNode()      {}
func (*SuperExpression) exprNode()     {}
func (*LambdaExpression) exprNode()    {}
func (*Await) exprNode()               {}
func (*InterpolatedString) exprNode()  {}
func (*JsonObject) exprNode()          {}
func (*JsonArray) exprNode()           {}

// Identifier is a bare name reference.
type Identifier struct {
	base
	Name string
}

func NewIdentifier(pos token.Position, file, name string) *Identifier {
	return &Identifier{base: newBase(pos, file), Name: name}
}
func (n *Identifier) String() string { return n.Name }

// GenericIdentifier is a name followed by <T, U, ...> type arguments, used
// both as an expression (constructing a generic instance) and within type
// annotations.
type GenericIdentifier struct {
	base
	Name string
	Args []*TypeExpr
}

func (n *GenericIdentifier) String() string {
	s := n.Name + "<"
	for i, a := range n.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ">"
}

// LiteralKind distinguishes the primitive literal kinds.
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	StringLiteral
	BoolLiteral
)

// Literal is a primitive literal: int, float, string or boolean.
type Literal struct {
	base
	Kind  LiteralKind
	Raw   string
	IVal  int64
	FVal  float64
	SVal  string
	BVal  bool
}

func (n *Literal) String() string { return n.Raw }

// NullLiteral is the `null`/`None` literal.
type NullLiteral struct{ base }

func (n *NullLiteral) String() string { return "null" }

// BinaryOp is a left-to-right binary expression, including `in`.
type BinaryOp struct {
	base
	Op    string
	Left  Expr
	Right Expr
}

func (n *BinaryOp) String() string { return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")" }

// UnaryOp is a prefix unary expression: -x, not x, !x.
type UnaryOp struct {
	base
	Op      string
	Operand Expr
}

func (n *UnaryOp) String() string { return "(" + n.Op + n.Operand.String() + ")" }

// Ternary is `cond ? then : else`.
type Ternary struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

func (n *Ternary) String() string {
	return "(" + n.Cond.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

// AssignTarget is implemented by expressions legal on the left of `=`:
// Identifier, PropertyAccess, IndexAccess.
type AssignTarget interface {
	Expr
	assignTarget()
}

func (*Identifier) assignTarget()     {}
func (*PropertyAccess) assignTarget() {}
func (*IndexAccess) assignTarget()    {}

// Assignment is `target op= value` (op is "=" for plain `=`, the only form
// the parser produces).
type Assignment struct {
	base
	Target AssignTarget
	Op     string
	Value  Expr
}

func (n *Assignment) String() string { return n.Target.String() + " = " + n.Value.String() }

// Arg is one call argument: positional when Name == "".
type Arg struct {
	Name  string
	Value Expr
}

// FunctionCall is `callee(args...)`.
type FunctionCall struct {
	base
	Callee Expr
	Args   []Arg
}

func (n *FunctionCall) String() string {
	s := n.Callee.String() + "("
	for i, a := range n.Args {
		if i > 0 {
			s += ", "
		}
		if a.Name != "" {
			s += a.Name + ": "
		}
		s += a.Value.String()
	}
	return s + ")"
}

// PropertyAccess is `object.name` (or `object?.name` when Optional).
type PropertyAccess struct {
	base
	Object   Expr
	Name     string
	Optional bool
}

func (n *PropertyAccess) String() string { return n.Object.String() + "." + n.Name }

// IndexAccess is `object[index]`.
type IndexAccess struct {
	base
	Object Expr
	Index  Expr
}

func (n *IndexAccess) String() string { return n.Object.String() + "[" + n.Index.String() + "]" }

// NewExpression is `new ClassName(args...)`.
type NewExpression struct {
	base
	ClassName string
	Args      []Arg
}

func (n *NewExpression) String() string { return "new " + n.ClassName + "(...)" }

// ThisExpression is `this`.
type ThisExpression struct{ base }

func (n *ThisExpression) String() string { return "this" }

// SuperExpression is `super`, used both bare (as a callable constructor
// reference) and as the receiver of a property/method access.
type SuperExpression struct{ base }

func (n *SuperExpression) String() string { return "super" }

// Param is one function/method/lambda parameter.
type Param struct {
	Name     string
	Type     *TypeExpr
	Default  Expr
	IsKwargs bool
}

// LambdaExpression is an inline, block-bodied function value:
// `fn(params) { ...block... }`.
type LambdaExpression struct {
	base
	Params  []Param
	Body    []Stmt
	IsAsync bool
}

func (n *LambdaExpression) String() string { return "lambda(...)" }

// Await is `await expr`, legal only inside an async function body.
type Await struct {
	base
	Value Expr
}

func (n *Await) String() string { return "await " + n.Value.String() }

// InterpolatedString is an f-string: alternating static text parts and
// nested expression placeholders, Parts[i] corresponds to Exprs[i] for
// i < len(Exprs), with one extra trailing static part.
type InterpolatedString struct {
	base
	Parts []string
	Exprs []Expr
}

func (n *InterpolatedString) String() string { return "f\"...\"" }

// JsonObject is a `{...}` literal captured whole by the lexer's JSON-blob
// heuristic and re-parsed into a map of expression entries.
type JsonObject struct {
	base
	Keys   []string
	Values []Expr
}

func (n *JsonObject) String() string { return "{...}" }

// JsonArray is a `[...]` literal captured whole by the lexer's JSON-blob
// heuristic and re-parsed into an ordered list of expression entries.
type JsonArray struct {
	base
	Elements []Expr
}

func (n *JsonArray) String() string { return "[...]" }

func NewIntLiteral(pos token.Position, file, raw string, v int64) *Literal {
	return &Literal{base: newBase(pos, file), Kind: IntLiteral, Raw: raw, IVal: v}
}

func NewFloatLiteral(pos token.Position, file, raw string, v float64) *Literal {
	return &Literal{base: newBase(pos, file), Kind: FloatLiteral, Raw: raw, FVal: v}
}

func NewStringLiteral(pos token.Position, file, raw, v string) *Literal {
	return &Literal{base: newBase(pos, file), Kind: StringLiteral, Raw: raw, SVal: v}
}

func NewBoolLiteral(pos token.Position, file string, v bool) *Literal {
	raw := "false"
	if v {
		raw = "true"
	}
	return &Literal{base: newBase(pos, file), Kind: BoolLiteral, Raw: raw, BVal: v}
}

func NewNullLiteral(pos token.Position, file string) *NullLiteral {
	return &NullLiteral{base: newBase(pos, file)}
}

func NewGenericIdentifier(pos token.Position, file, name string) *GenericIdentifier {
	return &GenericIdentifier{base: newBase(pos, file), Name: name}
}

func NewBinaryOp(pos token.Position, file, op string, l, r Expr) *BinaryOp {
	return &BinaryOp{base: newBase(pos, file), Op: op, Left: l, Right: r}
}

func NewUnaryOp(pos token.Position, file, op string, operand Expr) *UnaryOp {
	return &UnaryOp{base: newBase(pos, file), Op: op, Operand: operand}
}

func NewTernary(pos token.Position, file string, cond, then, els Expr) *Ternary {
	return &Ternary{base: newBase(pos, file), Cond: cond, Then: then, Else: els}
}

func NewAssignment(pos token.Position, file string, target AssignTarget, op string, value Expr) *Assignment {
	return &Assignment{base: newBase(pos, file), Target: target, Op: op, Value: value}
}

func NewFunctionCall(pos token.Position, file string, callee Expr) *FunctionCall {
	return &FunctionCall{base: newBase(pos, file), Callee: callee}
}

func NewPropertyAccess(pos token.Position, file string, object Expr, name string) *PropertyAccess {
	return &PropertyAccess{base: newBase(pos, file), Object: object, Name: name}
}

func NewIndexAccess(pos token.Position, file string, object, index Expr) *IndexAccess {
	return &IndexAccess{base: newBase(pos, file), Object: object, Index: index}
}

func NewNewExpression(pos token.Position, file, className string) *NewExpression {
	return &NewExpression{base: newBase(pos, file), ClassName: className}
}

func NewThisExpression(pos token.Position, file string) *ThisExpression {
	return &ThisExpression{base: newBase(pos, file)}
}

func NewSuperExpression(pos token.Position, file string) *SuperExpression {
	return &SuperExpression{base: newBase(pos, file)}
}

func NewLambdaExpression(pos token.Position, file string) *LambdaExpression {
	return &LambdaExpression{base: newBase(pos, file)}
}

func NewAwait(pos token.Position, file string, v Expr) *Await {
	return &Await{base: newBase(pos, file), Value: v}
}

func NewInterpolatedString(pos token.Position, file string) *InterpolatedString {
	return &InterpolatedString{base: newBase(pos, file)}
}

func NewJsonObject(pos token.Position, file string) *JsonObject {
	return &JsonObject{base: newBase(pos, file)}
}

func NewJsonArray(pos token.Position, file string) *JsonArray {
	return &JsonArray{base: newBase(pos, file)}
}
