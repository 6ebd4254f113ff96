// Package corplang is the public, embeddable facade over the Corplang
// lexer/parser/interpreter: parse source, execute it, import modules, and
// register custom AST-node executors, without reaching into any internal
// package directly. This is the only surface the CLI (cmd/corplang) and any
// embedding host are meant to use.
package corplang

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/internal/corperr"
	"github.com/corplang/mp/internal/interp"
	"github.com/corplang/mp/internal/lexer"
	"github.com/corplang/mp/internal/loader"
	"github.com/corplang/mp/internal/parser"
	"github.com/corplang/mp/pkg/token"
)

// Lex tokenizes source without parsing, for the CLI's `lex` subcommand and
// any other tooling that wants a raw token stream.
func Lex(source, file string) ([]token.Token, []error) {
	toks, errs := lexer.Tokenize(source, file)
	wrapped := make([]error, len(errs))
	for i, e := range errs {
		wrapped[i] = e
	}
	return toks, wrapped
}

// ParseError wraps the syntax errors produced by a failed Parse call.
type ParseError struct {
	Errors []error
}

func (e *ParseError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Parse tokenizes then parses source, returning the AST. A non-nil
// *ParseError is returned alongside a best-effort AST when the source
// contains syntax errors, per spec's "parsing proceeds best-effort" rule.
func Parse(source, file string) (*ast.Program, error) {
	prog, syntaxErrs := parser.Parse(source, file)
	if len(syntaxErrs) == 0 {
		return prog, nil
	}
	wrapped := make([]error, len(syntaxErrs))
	for i, e := range syntaxErrs {
		wrapped[i] = e
	}
	return prog, &ParseError{Errors: wrapped}
}

// Options configures a Runtime.
type Options struct {
	// Output receives everything print/sout write; defaults to os.Stdout.
	Output io.Writer

	// StdlibManifestPath, StdlibRoot, and SearchPaths configure the module
	// loader's resolution order (spec §4.4); all optional.
	StdlibManifestPath string
	StdlibRoot         string
	SearchPaths        []string

	// Security gates __native__ and restricted stdlib imports. Defaults to
	// interp.NewDefaultSecurityPolicy() (native calls denied).
	Security interp.SecurityPolicy

	// ShowInternalDiagnostics exposes host-origin error causes in formatted
	// diagnostics; off by default per spec §4.5.
	ShowInternalDiagnostics bool

	// Trace, if non-nil, receives a frame push/pop trace with pretty-printed
	// locals (CORPLANG_DEBUG in the CLI). Off by default.
	Trace io.Writer

	// MemoryBudget, if non-nil, caps list/map literal element counts; unset
	// means unlimited.
	MemoryBudget *interp.MemoryBudget
}

// Runtime bundles an Interpreter with its module loader, ready to execute
// programs and format their diagnostics.
type Runtime struct {
	Interp *interp.Interpreter
	Loader *loader.Loader
}

// NewRuntime builds a Runtime per opts, wiring the interpreter and loader
// to one another (they hold mutual references: the loader executes module
// bodies through the interpreter, the interpreter imports through the
// loader).
func NewRuntime(opts Options) (*Runtime, error) {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	i := interp.New(output)
	if opts.Security != nil {
		i.Security = opts.Security
	}
	i.ShowInternalDiagnostics = opts.ShowInternalDiagnostics
	if opts.Trace != nil {
		i.Tracer = interp.NewTracer(opts.Trace)
	}
	if opts.MemoryBudget != nil {
		i.Memory = opts.MemoryBudget
	}

	var manifest *loader.Manifest
	if opts.StdlibManifestPath != "" {
		m, err := loader.LoadManifest(opts.StdlibManifestPath)
		if err != nil {
			return nil, err
		}
		manifest = m
	}

	ld := loader.New(manifest, opts.StdlibRoot, opts.SearchPaths)
	ld.Interp = i
	i.Loader = ld

	return &Runtime{Interp: i, Loader: ld}, nil
}

// Execute runs a parsed program and returns its exported namespace.
func (r *Runtime) Execute(prog *ast.Program) (*interp.ModuleNamespace, error) {
	return r.Interp.Execute(prog)
}

// Run parses then executes source in one step, the common case for the CLI
// and tests.
func (r *Runtime) Run(source, file string) (*interp.ModuleNamespace, error) {
	prog, err := Parse(source, file)
	if err != nil {
		return nil, err
	}
	return r.Execute(prog)
}

// ImportModule exposes the loader directly, matching spec §6's
// import_module(name, current_file) entry point.
func (r *Runtime) ImportModule(name, currentFile string) (*interp.ModuleNamespace, error) {
	return r.Interp.Loader.ImportModule(name, currentFile)
}

// RegisterStmtExecutor and RegisterExprExecutor expose spec §6's
// register_executor(variant, executor) entry point for each node kind.
func (r *Runtime) RegisterStmtExecutor(exemplar ast.Stmt, fn interp.StmtExecutor) {
	r.Interp.RegisterStmtExecutor(exemplar, fn)
}

func (r *Runtime) RegisterExprExecutor(exemplar ast.Expr, fn interp.ExprExecutor) {
	r.Interp.RegisterExprExecutor(exemplar, fn)
}

// FormatError renders err as a user-facing diagnostic, source snippets
// included, following spec §4.5's 5-part layout. Non-Exception errors
// (including *ParseError) are rendered as a single line.
func FormatError(err error, source string) string {
	if exc, ok := err.(*corperr.Exception); ok {
		return exc.Format(corperr.FormatOptions{Source: source})
	}
	if thrown, ok := err.(*interp.ThrownValue); ok {
		return fmt.Sprintf("uncaught %s", thrown.Error())
	}
	return err.Error()
}
