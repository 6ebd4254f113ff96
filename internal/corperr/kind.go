// Package corperr implements Corplang's runtime error taxonomy, language-level
// stack traces, and the diagnostics formatter, in the shape of the teacher's
// internal/errors package (CompilerError + StackTrace) generalized to a
// closed set of runtime error kinds instead of a single compiler error type.
package corperr

// Kind is one of the closed set of runtime error classifications.
type Kind int

const (
	TypeError Kind = iota
	ReferenceError
	SyntaxError
	SecurityError
	ResourceError
	MemoryError
	IOError
	TimeoutError
	ConcurrencyError
	AssertionError
	RuntimeError
	InternalRuntimeError
)

func (k Kind) String() string {
	switch k {
	case TypeError:
		return "TypeError"
	case ReferenceError:
		return "ReferenceError"
	case SyntaxError:
		return "SyntaxError"
	case SecurityError:
		return "SecurityError"
	case ResourceError:
		return "ResourceError"
	case MemoryError:
		return "MemoryError"
	case IOError:
		return "IOError"
	case TimeoutError:
		return "TimeoutError"
	case ConcurrencyError:
		return "ConcurrencyError"
	case AssertionError:
		return "AssertionError"
	case RuntimeError:
		return "RuntimeError"
	case InternalRuntimeError:
		return "InternalRuntimeError"
	default:
		return "RuntimeError"
	}
}

// suggestions holds a short, kind-specific remediation hint used by the
// diagnostics formatter's suggestion line.
var suggestions = map[Kind]string{
	TypeError:            "check the operand/argument types at the call site",
	ReferenceError:       "check the name is declared and in scope before use",
	SyntaxError:          "check the construct against the language grammar",
	SecurityError:        "check the module's security policy or member visibility",
	ResourceError:        "check resource limits and that managers are released via 'with'",
	MemoryError:          "check for unbounded growth of lists/maps",
	IOError:              "check the underlying file/network operation",
	TimeoutError:         "check whether the operation should be retried or cancelled",
	ConcurrencyError:     "check for a conflicting concurrent host operation",
	AssertionError:       "check the failed assertion's condition",
	RuntimeError:         "re-run with CORPLANG_DEBUG=1 for more detail",
	InternalRuntimeError: "this is a host-origin failure; set show_internal_diagnostics to see the cause",
}

// Suggestion returns the kind-specific remediation hint shown by the
// diagnostics formatter, or "" if none is registered.
func (k Kind) Suggestion() string {
	return suggestions[k]
}
