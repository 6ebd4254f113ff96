package corperr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/corplang/mp/pkg/token"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Exception is a language-level runtime exception: a classified Kind, a
// message, the stack trace captured at the point of raise, and (for
// InternalRuntimeError) the wrapped host error. It implements error so it
// can travel as a normal Go error up the interpreter's call chain, mirroring
// the teacher's CompilerError implementing the error interface.
type Exception struct {
	Kind    Kind
	Message string
	File    string
	Pos     token.Position
	Stack   StackTrace
	Cause   error // set only for InternalRuntimeError

	// Locals is a flat name->value-string snapshot of the frame where the
	// exception was raised, used by the diagnostics formatter's "variables
	// summary" line. Values are pre-rendered strings so corperr never needs
	// to import the interpreter's value model.
	Locals map[string]string
}

// New constructs an Exception with an empty stack trace.
func New(kind Kind, pos token.Position, file, message string) *Exception {
	return &Exception{Kind: kind, Message: message, File: file, Pos: pos, Stack: NewStackTrace()}
}

// Wrap classifies a host error as InternalRuntimeError, preserving it as Cause.
func Wrap(pos token.Position, file string, cause error) *Exception {
	return &Exception{
		Kind:    InternalRuntimeError,
		Message: cause.Error(),
		File:    file,
		Pos:     pos,
		Stack:   NewStackTrace(),
		Cause:   cause,
	}
}

// Error implements the error interface with a single-line summary; full
// multi-part diagnostics are produced by Format/FormatAll instead.
func (e *Exception) Error() string {
	return fmt.Sprintf("%s: %s at %s:%d:%d", e.Kind, e.Message, e.File, e.Pos.Line, e.Pos.Column)
}

// Unwrap exposes the wrapped host error, if any, to errors.Is/errors.As.
func (e *Exception) Unwrap() error { return e.Cause }

// PushFrame records a call-stack frame, oldest-first, matching the
// teacher's StackTrace ordering convention.
func (e *Exception) PushFrame(function, file string, pos token.Position) {
	e.Stack = append(e.Stack, StackFrame{Function: function, File: file, Pos: pos})
}

// FormatOptions controls how much detail Format renders.
type FormatOptions struct {
	// Source is the originating .mp source text, used for the per-frame
	// snippet line. If empty, snippets are omitted.
	Source string
	// ShowInternalDiagnostics gates the optional 5th section: the host
	// traceback/cause, never shown by default (spec's
	// show_internal_diagnostics flag).
	ShowInternalDiagnostics bool
}

// Format renders the 5-part diagnostics layout:
//  1. Error<Kind>: message
//  2. most-recent-first frame list, each with a source snippet + caret
//  3. a root-cause block naming the deepest frame
//  4. a kind-specific suggestion
//  5. (optional) the wrapped host error, only when requested
//
// This generalizes the teacher's CompilerError.Format/FormatWithContext
// (header + source snippet + caret + message) to a multi-frame exception.
func (e *Exception) Format(opts FormatOptions) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %s\n", e.Kind, e.Message)

	frames := e.Stack.Reverse()
	for _, f := range frames {
		fmt.Fprintf(&sb, "  at %s (%s:%d:%d)\n", f.Function, f.File, f.Pos.Line, f.Pos.Column)
		if snippet := sourceLine(opts.Source, f.Pos.Line); snippet != "" {
			fmt.Fprintf(&sb, "    %4d | %s\n", f.Pos.Line, snippet)
			sb.WriteString("         | ")
			sb.WriteString(strings.Repeat(" ", max0(f.Pos.Column-1)))
			sb.WriteString("^\n")
		}
	}
	if len(e.Locals) > 0 {
		sb.WriteString("  locals: ")
		sb.WriteString(formatLocals(e.Locals))
		sb.WriteString("\n")
	}

	if root := e.Stack.Bottom(); root != nil {
		fmt.Fprintf(&sb, "root cause: %s at %s:%d:%d\n", root.Function, root.File, root.Pos.Line, root.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "root cause: %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	}

	if s := e.Kind.Suggestion(); s != "" {
		fmt.Fprintf(&sb, "suggestion: %s\n", s)
	}

	if opts.ShowInternalDiagnostics && e.Cause != nil {
		fmt.Fprintf(&sb, "host cause: %v\n", e.Cause)
	}

	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// formatLocals renders the "variables summary" line, one entry per local in
// sorted-name order for deterministic output. A local whose pre-rendered
// string is itself a JSON object/array (a Map/List value originating from a
// JsonObject/JsonArray literal) gets multi-line indented with pretty.Pretty
// instead of staying on the single compact line scalars use.
func formatLocals(locals map[string]string) string {
	names := make([]string, 0, len(locals))
	for k := range locals {
		names = append(names, k)
	}
	sort.Strings(names)

	var sb strings.Builder
	first := true
	for _, k := range names {
		v := locals[k]
		if !first {
			sb.WriteString(", ")
		}
		first = false
		if looksLikeJSONContainer(v) {
			sb.WriteString(k)
			sb.WriteString("=\n")
			sb.Write(pretty.Pretty([]byte(v)))
		} else {
			fmt.Fprintf(&sb, "%s=%s", k, v)
		}
	}
	return sb.String()
}

// looksLikeJSONContainer reports whether v is a valid JSON object or array,
// as opposed to a bare scalar (gjson considers "5" and "\"x\"" valid JSON
// too, but those read fine on the single compact line as-is).
func looksLikeJSONContainer(v string) bool {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return gjson.Valid(trimmed)
}

// FormatAll renders several exceptions one after another, numbered, the way
// the teacher's FormatErrors/FormatErrorsWithContext handle multi-error
// batches.
func FormatAll(excs []*Exception, opts FormatOptions) string {
	if len(excs) == 0 {
		return ""
	}
	if len(excs) == 1 {
		return excs[0].Format(opts)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s):\n\n", len(excs))
	for i, e := range excs {
		fmt.Fprintf(&sb, "[%d of %d]\n", i+1, len(excs))
		sb.WriteString(e.Format(opts))
		if i < len(excs)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
