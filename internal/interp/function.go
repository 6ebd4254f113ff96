package interp

import (
	"fmt"

	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/pkg/token"
)

// Function is a callable value: a user-defined function, lambda, or a class
// method bound to a target instance. ClosureEnv is the environment in
// effect where the function was declared, per spec invariant 3 — not where
// it is later called.
type Function struct {
	Name       string
	Params     []ast.Param
	Body       []ast.Stmt
	ClosureEnv *Environment
	IsAsync    bool

	// Set only for methods: the instance this is bound to, and the class
	// that declared the method body (used by super()).
	BoundThis      *Instance
	DeclaringClass *Class
}

func (*Function) Type() string { return "function" }

func (f *Function) String() string {
	if f.Name == "" {
		return "<lambda>"
	}
	return fmt.Sprintf("<function %s>", f.Name)
}

// Bind returns a copy of the method bound to the given instance and
// declaring class, used when a method is looked up off an instance.
func (f *Function) Bind(this *Instance, declaring *Class) *Function {
	bound := *f
	bound.BoundThis = this
	bound.DeclaringClass = declaring
	return &bound
}

// NativeFunction wraps a Go function as a Corplang callable, used for
// builtins (print, len, range, ...) and the __native__ escape hatch.
type NativeFunction struct {
	Name string
	Fn   func(i *Interpreter, args []Value) (Value, error)
}

func (*NativeFunction) Type() string     { return "function" }
func (n *NativeFunction) String() string { return fmt.Sprintf("<builtin %s>", n.Name) }

// Awaitable is a deferred computation captured when an async function is
// called synchronously: the call does not run until driven by `await`.
// Args holds the call's arguments for display/introspection; preparedCtx is
// the already-bound call context (parameters bound, closure/this resolved)
// that runBody executes the first time this awaitable is driven.
type Awaitable struct {
	Fn   *Function
	Args []Value

	preparedCtx *ExecContext
	pos         token.Position

	settled bool
	result  Value
	err     error
}

func (*Awaitable) Type() string     { return "awaitable" }
func (a *Awaitable) String() string { return fmt.Sprintf("<awaitable %s>", a.Fn.String()) }
