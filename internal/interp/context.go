package interp

import (
	"github.com/corplang/mp/internal/corperr"
	"github.com/corplang/mp/pkg/token"
)

// ExecContext is spawned per call/block, per spec §3's "Environments/
// contexts: created on function entry/block entry, released when the
// enclosing call returns". It threads the pieces of state that change at
// a call boundary without affecting lexical scoping directly (scoping is
// carried by Env's own outer chain instead).
type ExecContext struct {
	Interp            *Interpreter
	Env               *Environment
	CurrentFile       string
	IsAsync           bool
	CurrentScopeOwner string // declaring class name when inside a method body
	CurrentInstance   *Instance
	Parent            *ExecContext
}

// Child spawns a new block-scoped context sharing everything except the
// environment, which becomes an enclosed child of env.
func (c *ExecContext) Child(env *Environment) *ExecContext {
	child := *c
	child.Env = env
	child.Parent = c
	return &child
}

// CallStack is the interpreter's live call stack, pushed on function/method
// entry and popped on exit regardless of outcome (including via throw),
// mirroring the teacher's runtime.callstack frame discipline.
type CallStack struct {
	frames []corperr.StackFrame
}

func NewCallStack() *CallStack { return &CallStack{} }

func (cs *CallStack) Push(function, file string, pos token.Position) {
	cs.frames = append(cs.frames, corperr.StackFrame{Function: function, File: file, Pos: pos})
}

func (cs *CallStack) Pop() {
	if len(cs.frames) > 0 {
		cs.frames = cs.frames[:len(cs.frames)-1]
	}
}

// Snapshot returns a sanitized copy of the current frames, oldest-first,
// suitable for attaching to a raised exception.
func (cs *CallStack) Snapshot() corperr.StackTrace {
	out := make(corperr.StackTrace, len(cs.frames))
	copy(out, cs.frames)
	return out
}

func (cs *CallStack) Depth() int { return len(cs.frames) }
