package interp

import (
	"fmt"

	"github.com/corplang/mp/internal/ast"
)

// Class is a class value: its own fields/methods plus a link to its parent
// for method-resolution-order walks and super() dispatch.
type Class struct {
	Name       string
	Parent     *Class
	Implements []string
	Fields     []*ast.FieldDecl
	Methods    map[string]*ast.MethodDecl
	DeclEnv    *Environment // environment in effect where the class was declared

	StaticFields map[string]Value
}

func NewClass(name string, declEnv *Environment) *Class {
	return &Class{
		Name:         name,
		Methods:      make(map[string]*ast.MethodDecl),
		StaticFields: make(map[string]Value),
		DeclEnv:      declEnv,
	}
}

func (*Class) Type() string     { return "class" }
func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }

// FindMethod walks this class then its ancestors for a method named name,
// returning the method and the class that declared it (needed for super()
// and for private-member scope checks).
func (c *Class) FindMethod(name string) (*ast.MethodDecl, *Class) {
	for cur := c; cur != nil; cur = cur.Parent {
		if m, ok := cur.Methods[name]; ok {
			return m, cur
		}
	}
	return nil, nil
}

// FindField walks this class then its ancestors for a field declaration
// named name (used for default-value evaluation and visibility checks).
func (c *Class) FindField(name string) (*ast.FieldDecl, *Class) {
	for cur := c; cur != nil; cur = cur.Parent {
		for _, f := range cur.Fields {
			if f.Name == name {
				return f, cur
			}
		}
	}
	return nil, nil
}

// IsSubclassOf reports whether c is name or descends from a class named
// name, used by catch-clause type matching's parent-chain walk.
func (c *Class) IsSubclassOf(name string) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur.Name == name {
			return true
		}
	}
	return false
}

// Instance is an object created by `new ClassName(...)`.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value)}
}

func (*Instance) Type() string { return "instance" }
func (i *Instance) String() string {
	return fmt.Sprintf("<%s instance>", i.Class.Name)
}

// Get reads a field, walking outward only through Go map lookup (fields are
// flat on the instance — inherited fields are initialized onto the same
// instance at construction time, not shadowed per-class).
func (i *Instance) Get(name string) (Value, bool) {
	v, ok := i.Fields[name]
	return v, ok
}

func (i *Instance) Set(name string, v Value) {
	i.Fields[name] = v
}

// CanAccess implements spec invariant 5: a private member is accessible
// only when the executing context's scope owner is the declaring class, or
// the instance being accessed is the current instance.
func CanAccess(vis ast.Visibility, declaringClass *Class, target *Instance, ctx *ExecContext) bool {
	if vis == ast.Public {
		return true
	}
	if ctx == nil {
		return false
	}
	if ctx.CurrentInstance == target {
		return true
	}
	if vis == ast.Private {
		return ctx.CurrentScopeOwner == declaringClass.Name
	}
	// Protected: accessible from the declaring class or any subclass scope.
	if ctx.CurrentScopeOwner == "" {
		return false
	}
	for cur := declaringClass; cur != nil; cur = cur.Parent {
		if cur.Name == ctx.CurrentScopeOwner {
			return true
		}
	}
	return false
}

// ModuleNamespace is the exported-variables snapshot of an executed module,
// per spec invariant 7.
type ModuleNamespace struct {
	Name string
	Vars map[string]Value
}

func (*ModuleNamespace) Type() string     { return "module" }
func (m *ModuleNamespace) String() string { return fmt.Sprintf("<module %s>", m.Name) }

// EnumType is the type value of an `enum` declaration; EnumValue instances
// reference it by name so printing/equality stays stable across copies.
type EnumType struct {
	Name    string
	Members []string
	Values  map[string]Value
}

func (*EnumType) Type() string     { return "enum" }
func (e *EnumType) String() string { return fmt.Sprintf("<enum %s>", e.Name) }

// EnumValue is one member of an EnumType.
type EnumValue struct {
	Enum    *EnumType
	Member  string
	Ordinal Value
}

func (*EnumValue) Type() string     { return "enum value" }
func (v *EnumValue) String() string { return v.Enum.Name + "." + v.Member }
