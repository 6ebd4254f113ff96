package corperr

import (
	"fmt"
	"strings"

	"github.com/corplang/mp/pkg/token"
)

// StackFrame is one call-stack frame: the function executing and where
// execution was at the time the frame was captured or the trace was taken.
type StackFrame struct {
	Pos      token.Position
	Function string
	File     string
}

// String renders "function [file:line:column]", matching the teacher's
// "FunctionName [line: N, column: M]" convention with the file name added.
func (f StackFrame) String() string {
	if f.Pos.Line == 0 {
		return f.Function
	}
	return fmt.Sprintf("%s [%s:%d:%d]", f.Function, f.File, f.Pos.Line, f.Pos.Column)
}

// StackTrace is a call stack, ordered oldest (bottom) to newest (top), the
// same convention the teacher's errors.StackTrace uses.
type StackTrace []StackFrame

// NewStackTrace returns an empty stack trace ready to be appended to.
func NewStackTrace() StackTrace { return make(StackTrace, 0, 8) }

// String renders frames most-recent-first, one per line.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Reverse returns a copy with frames most-recent-first.
func (st StackTrace) Reverse() StackTrace {
	out := make(StackTrace, len(st))
	for i, f := range st {
		out[len(st)-1-i] = f
	}
	return out
}

// Top returns the most recently pushed frame, or nil if the trace is empty.
func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

// Bottom returns the oldest frame, or nil if the trace is empty.
func (st StackTrace) Bottom() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[0]
}

// Depth reports the number of frames currently on the trace.
func (st StackTrace) Depth() int { return len(st) }
