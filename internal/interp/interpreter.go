package interp

import (
	"io"
	"reflect"

	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/internal/corperr"
)

// ModuleLoader resolves `import`/`from ... import` to a module's exported
// namespace. internal/loader implements this; Interpreter depends only on
// the interface to avoid an import cycle (the loader itself executes
// module bodies through an Interpreter).
type ModuleLoader interface {
	ImportModule(name, currentFile string) (*ModuleNamespace, error)
}

// StmtExecutor and ExprExecutor are the dispatch-table entries a host can
// install via RegisterStmtExecutor/RegisterExprExecutor, matching spec §6's
// `register_executor(variant, executor)` entry point. Builtin node types
// are handled directly by execStmt/evalExpr's type switch; the registry is
// consulted first so a host can override or add variants without forking
// the interpreter.
type StmtExecutor func(ctx *ExecContext, stmt ast.Stmt) (Value, controlSignal, error)
type ExprExecutor func(ctx *ExecContext, expr ast.Expr) (Value, error)

// Interpreter holds all process-lifetime interpreter state: the global
// environment, the call stack, registered classes/enums/functions, and the
// pluggable collaborators (security policy, memory budget, module loader,
// tracer).
type Interpreter struct {
	Global    *Environment
	CallStack *CallStack
	Output    io.Writer

	Classes    map[string]*Class
	Enums      map[string]*EnumType
	Functions  map[string]*ast.FunctionDecl
	Interfaces map[string]*ast.InterfaceDecl
	Contracts  map[string]*ast.ContractDecl

	Security SecurityPolicy
	Memory   *MemoryBudget
	Loader   ModuleLoader
	Tracer   *Tracer
	Observe  ObservabilityCallback

	// NativeRegistry backs the __native__ escape hatch: New seeds it with a
	// small built-in surface (the json.* round-trip helpers), and an
	// embedding host can add its own dotted-path callables before running
	// untrusted scripts that are allowed to use it. Either way, a call still
	// goes through SecurityPolicy.AllowNative first.
	NativeRegistry map[string]func(i *Interpreter, args []Value) (Value, error)

	// ShowInternalDiagnostics gates whether host tracebacks appear in
	// formatted diagnostics, per spec §4.5.
	ShowInternalDiagnostics bool

	stmtExecutors map[reflect.Type]StmtExecutor
	exprExecutors map[reflect.Type]ExprExecutor
}

// New creates an Interpreter with a fresh global environment seeded with
// the builtin functions (print, len, range, ...).
func New(output io.Writer) *Interpreter {
	i := &Interpreter{
		Global:         NewEnvironment(),
		CallStack:      NewCallStack(),
		Output:         output,
		Classes:        make(map[string]*Class),
		Enums:          make(map[string]*EnumType),
		Functions:      make(map[string]*ast.FunctionDecl),
		Interfaces:     make(map[string]*ast.InterfaceDecl),
		Contracts:      make(map[string]*ast.ContractDecl),
		Security:       NewDefaultSecurityPolicy(),
		NativeRegistry: make(map[string]func(i *Interpreter, args []Value) (Value, error)),
		stmtExecutors:  make(map[reflect.Type]StmtExecutor),
		exprExecutors:  make(map[reflect.Type]ExprExecutor),
	}
	registerBuiltins(i)
	registerJSONNatives(i)
	return i
}

// RegisterStmtExecutor installs or overrides the executor for a statement
// variant, keyed by the Go type of exemplar (pass a nil-valued pointer of
// the node type, e.g. (*ast.If)(nil)).
func (i *Interpreter) RegisterStmtExecutor(exemplar ast.Stmt, fn StmtExecutor) {
	i.stmtExecutors[reflect.TypeOf(exemplar)] = fn
}

// RegisterExprExecutor installs or overrides the executor for an
// expression variant.
func (i *Interpreter) RegisterExprExecutor(exemplar ast.Expr, fn ExprExecutor) {
	i.exprExecutors[reflect.TypeOf(exemplar)] = fn
}

// NewModuleContext builds the root ExecContext for a module: its
// environment is enclosed by the interpreter's global environment, per
// spec invariant 2.
func (i *Interpreter) NewModuleContext(file string) *ExecContext {
	return &ExecContext{
		Interp:      i,
		Env:         NewEnclosedEnvironment(i.Global),
		CurrentFile: file,
	}
}

// Execute runs a program's top-level statements in a fresh module context
// and returns the module's exported namespace (spec invariant 7): a
// snapshot of the module environment's variables after completion.
func (i *Interpreter) Execute(prog *ast.Program) (*ModuleNamespace, error) {
	ctx := i.NewModuleContext(prog.File())
	if _, sig, err := i.execStatements(ctx, prog.Statements); err != nil {
		return nil, err
	} else if sig.kind == signalReturn {
		// A bare top-level `return` is a parser-accepted, interpreter-rejected
		// construct: spec's "Return statement outside of function".
		return nil, RaiseError(ctx, corperr.SyntaxError, "Return statement outside of function")
	}
	return &ModuleNamespace{Name: prog.File(), Vars: ctx.Env.Snapshot()}, nil
}
