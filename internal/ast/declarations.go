package ast

import "github.com/corplang/mp/pkg/token"

func (*VarDecl) stmtNode()       {}
func (*VarDecl) declNode()       {}
func (*FunctionDecl) stmtNode()  {}
func (*FunctionDecl) declNode()  {}
func (*MethodDecl) stmtNode()    {}
func (*MethodDecl) declNode()    {}
func (*FieldDecl) stmtNode()     {}
func (*FieldDecl) declNode()     {}
func (*ClassDecl) stmtNode()     {}
func (*ClassDecl) declNode()     {}
func (*InterfaceDecl) stmtNode() {}
func (*InterfaceDecl) declNode() {}
func (*ContractDecl) stmtNode()  {}
func (*ContractDecl) declNode()  {}
func (*EnumDecl) stmtNode()      {}
func (*EnumDecl) declNode()      {}
func (*ImportDecl) stmtNode()    {}
func (*ImportDecl) declNode()    {}
func (*FromImportDecl) stmtNode() {}
func (*FromImportDecl) declNode() {}

// Visibility is the access-modifier of a class member.
type Visibility int

const (
	Public Visibility = iota
	Private
	Protected
)

// VarDecl is `var name[: Type] = value`.
type VarDecl struct {
	base
	Name  string
	Type  *TypeExpr
	Value Expr // nil when uninitialized
}

func (n *VarDecl) String() string { return "var " + n.Name }

// FunctionDecl is a top-level or nested `fn`/`async fn` declaration.
type FunctionDecl struct {
	base
	Name       string
	Params     []Param
	ReturnType *TypeExpr
	Body       *Block
	IsAsync    bool
}

func (n *FunctionDecl) String() string { return "fn " + n.Name + "(...)" }

// MethodDecl is a class method, constructor, or static method.
type MethodDecl struct {
	base
	Name        string
	Params      []Param
	ReturnType  *TypeExpr
	Body        *Block
	IsAsync     bool
	IsStatic    bool
	IsAbstract  bool
	Visibility  Visibility
	IsConstructor bool
}

func (n *MethodDecl) String() string { return "method " + n.Name + "(...)" }

// FieldDecl is an instance or static field declaration inside a class body.
type FieldDecl struct {
	base
	Name       string
	Type       *TypeExpr
	Default    Expr // nil when uninitialized
	IsStatic   bool
	Visibility Visibility
}

func (n *FieldDecl) String() string { return "field " + n.Name }

// ClassDecl is a class declaration: fields, methods, an optional parent and
// implemented interfaces.
type ClassDecl struct {
	base
	Name       string
	Parent     string // "" when no `extends`
	Implements []string
	Fields     []*FieldDecl
	Methods    []*MethodDecl
	IsAbstract bool
}

func (n *ClassDecl) String() string { return "class " + n.Name }

// InterfaceMember is one method signature declared by an interface.
type InterfaceMember struct {
	Name       string
	Params     []Param
	ReturnType *TypeExpr
}

// InterfaceDecl declares a set of method signatures a class may implement.
type InterfaceDecl struct {
	base
	Name    string
	Extends []string
	Members []InterfaceMember
}

func (n *InterfaceDecl) String() string { return "interface " + n.Name }

// Condition is one precondition/postcondition clause of a `contract` block:
// `require/ensure (test) [: message]`.
type Condition struct {
	Test    Expr
	Message Expr // nil when no custom message
}

// ContractDecl attaches design-by-contract pre/postconditions to a function
// or method named Target.
type ContractDecl struct {
	base
	Target      string
	Requires    []Condition
	Ensures     []Condition
	Invariants  []Condition
}

func (n *ContractDecl) String() string { return "contract " + n.Target }

// EnumMember is one `Name[= value]` entry of an enum.
type EnumMember struct {
	Name  string
	Value Expr // nil for auto-numbered members
}

// EnumDecl declares a closed set of named members.
type EnumDecl struct {
	base
	Name    string
	Members []EnumMember
}

func (n *EnumDecl) String() string { return "enum " + n.Name }

// ImportDecl is `import name[.sub] [as alias]`.
type ImportDecl struct {
	base
	Path  string
	Alias string // "" when no `as`
}

func (n *ImportDecl) String() string { return "import " + n.Path }

// ImportedName is one `name [as alias]` entry of a `from ... import` clause.
type ImportedName struct {
	Name  string
	Alias string
}

// FromImportDecl is `from module import a, b as c`.
type FromImportDecl struct {
	base
	Module string
	Names  []ImportedName
}

func (n *FromImportDecl) String() string { return "from " + n.Module + " import ..." }

func NewVarDecl(pos token.Position, file, name string) *VarDecl {
	return &VarDecl{base: newBase(pos, file), Name: name}
}

func NewFunctionDecl(pos token.Position, file, name string) *FunctionDecl {
	return &FunctionDecl{base: newBase(pos, file), Name: name}
}

func NewMethodDecl(pos token.Position, file, name string) *MethodDecl {
	return &MethodDecl{base: newBase(pos, file), Name: name}
}

func NewFieldDecl(pos token.Position, file, name string) *FieldDecl {
	return &FieldDecl{base: newBase(pos, file), Name: name}
}

func NewClassDecl(pos token.Position, file, name string) *ClassDecl {
	return &ClassDecl{base: newBase(pos, file), Name: name}
}

func NewInterfaceDecl(pos token.Position, file, name string) *InterfaceDecl {
	return &InterfaceDecl{base: newBase(pos, file), Name: name}
}

func NewContractDecl(pos token.Position, file, target string) *ContractDecl {
	return &ContractDecl{base: newBase(pos, file), Target: target}
}

func NewEnumDecl(pos token.Position, file, name string) *EnumDecl {
	return &EnumDecl{base: newBase(pos, file), Name: name}
}

func NewImportDecl(pos token.Position, file, path string) *ImportDecl {
	return &ImportDecl{base: newBase(pos, file), Path: path}
}

func NewFromImportDecl(pos token.Position, file, module string) *FromImportDecl {
	return &FromImportDecl{base: newBase(pos, file), Module: module}
}
