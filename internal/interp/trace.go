package interp

import (
	"fmt"
	"io"

	"github.com/corplang/mp/internal/ast"
	"github.com/kr/pretty"
)

// ObservabilityCallback is the type of the single optional hook the Python
// original exposed as ExecutionContext.observability_callback (see
// SPEC_FULL.md §4). The Interpreter stores one in its Observe field, but the
// interpreter itself never calls it; frame tracing goes through Tracer.
type ObservabilityCallback func(event string, node ast.Node)

// Tracer writes a human-readable trace of frame pushes/pops and, on push,
// a pretty-printed snapshot of the new frame's locals. It is gated by
// CORPLANG_DEBUG the same way the teacher gates lexer/parser tracing with a
// boolean flag plus fmt.Fprintf(os.Stderr, ...) — no structured logging
// library, because the teacher doesn't reach for one either.
type Tracer struct {
	w io.Writer
}

func NewTracer(w io.Writer) *Tracer { return &Tracer{w: w} }

func (t *Tracer) onPush(function, file string, env *Environment) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "--> %s (%s)\n", function, file)
	if locals := env.Snapshot(); len(locals) > 0 {
		fmt.Fprintf(t.w, "%# v\n", pretty.Formatter(locals))
	}
}

func (t *Tracer) onPop(function string) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "<-- %s\n", function)
}
