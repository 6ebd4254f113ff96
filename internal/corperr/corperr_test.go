package corperr

import (
	"strings"
	"testing"

	"github.com/corplang/mp/pkg/token"
)

func TestStackFrameString(t *testing.T) {
	tests := []struct {
		name     string
		frame    StackFrame
		expected string
	}{
		{
			name:     "frame with position",
			frame:    StackFrame{Function: "add", File: "t.mp", Pos: token.Position{Line: 10, Column: 5}},
			expected: "add [t.mp:10:5]",
		},
		{
			name:     "frame without position",
			frame:    StackFrame{Function: "add", File: "t.mp"},
			expected: "add",
		},
		{
			name:     "method frame",
			frame:    StackFrame{Function: "Dog.bark", File: "t.mp", Pos: token.Position{Line: 42, Column: 15}},
			expected: "Dog.bark [t.mp:42:15]",
		},
	}
	for _, tt := range tests {
		if got := tt.frame.String(); got != tt.expected {
			t.Errorf("%s: got %q want %q", tt.name, got, tt.expected)
		}
	}
}

func TestStackTraceOrdering(t *testing.T) {
	st := NewStackTrace()
	st = append(st, StackFrame{Function: "main"}, StackFrame{Function: "f"}, StackFrame{Function: "g"})
	if st.Bottom().Function != "main" {
		t.Errorf("bottom = %q, want main", st.Bottom().Function)
	}
	if st.Top().Function != "g" {
		t.Errorf("top = %q, want g", st.Top().Function)
	}
	rendered := st.String()
	if !strings.HasPrefix(rendered, "g") {
		t.Errorf("String() should list most-recent-first, got %q", rendered)
	}
}

func TestExceptionFormatIncludesFiveParts(t *testing.T) {
	e := New(ReferenceError, token.Position{Line: 2, Column: 3}, "t.mp", "undefined variable 'x'")
	e.PushFrame("main", "t.mp", token.Position{Line: 2, Column: 3})
	out := e.Format(FormatOptions{Source: "var y = 1\nprint(x)\n"})
	if !strings.HasPrefix(out, "ReferenceError: undefined variable 'x'") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "at main") {
		t.Errorf("missing frame list: %q", out)
	}
	if !strings.Contains(out, "root cause:") {
		t.Errorf("missing root-cause block: %q", out)
	}
	if !strings.Contains(out, "suggestion:") {
		t.Errorf("missing suggestion: %q", out)
	}
	if strings.Contains(out, "host cause:") {
		t.Errorf("host cause should be hidden by default: %q", out)
	}
}

func TestWrapClassifiesInternalRuntimeError(t *testing.T) {
	hostErr := strings.NewReader("") // a concrete host-side object, not itself an error
	_ = hostErr
	e := Wrap(token.Position{Line: 1, Column: 1}, "t.mp", &Exception{Kind: RuntimeError, Message: "disk full"})
	if e.Kind != InternalRuntimeError {
		t.Errorf("kind = %v, want InternalRuntimeError", e.Kind)
	}
	out := e.Format(FormatOptions{ShowInternalDiagnostics: true})
	if !strings.Contains(out, "host cause:") {
		t.Errorf("expected host cause section when ShowInternalDiagnostics is set: %q", out)
	}
}

func TestFormatAllNumbersMultipleExceptions(t *testing.T) {
	e1 := New(TypeError, token.Position{Line: 1, Column: 1}, "t.mp", "bad type")
	e2 := New(SyntaxError, token.Position{Line: 2, Column: 1}, "t.mp", "bad token")
	out := FormatAll([]*Exception{e1, e2}, FormatOptions{})
	if !strings.Contains(out, "2 error(s)") || !strings.Contains(out, "[1 of 2]") || !strings.Contains(out, "[2 of 2]") {
		t.Fatalf("unexpected batch format: %q", out)
	}
}
