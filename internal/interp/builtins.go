package interp

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/corplang/mp/internal/corperr"
	"github.com/corplang/mp/pkg/token"
)

// registerBuiltins seeds the interpreter's global environment with the
// builtin functions visible to user programs: print, sout, type, typeOf,
// len, range, waitSeconds, str, input, __native__, genericOf.
func registerBuiltins(i *Interpreter) {
	define := func(name string, fn func(i *Interpreter, args []Value) (Value, error)) {
		i.Global.Define(name, &NativeFunction{Name: name, Fn: fn})
	}

	define("print", builtinPrint)
	define("sout", builtinPrint)
	define("type", builtinType)
	define("typeOf", builtinType)
	define("len", builtinLen)
	define("range", builtinRange)
	define("waitSeconds", builtinWaitSeconds)
	define("str", builtinStr)
	define("input", builtinInput)
	define("genericOf", builtinGenericOf)
	define("__native__", builtinNative)
}

func builtinPrint(i *Interpreter, args []Value) (Value, error) {
	parts := make([]string, len(args))
	for idx, a := range args {
		parts[idx] = a.String()
	}
	fmt.Fprintln(i.Output, strings.Join(parts, " "))
	return NullValue, nil
}

func builtinType(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("type() takes exactly one argument, got %d", len(args))
	}
	return String(args[0].Type()), nil
}

func builtinLen(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len() takes exactly one argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case *List:
		return Int(len(v.Elements)), nil
	case *Map:
		return Int(v.Len()), nil
	case String:
		return Int(len([]rune(string(v)))), nil
	default:
		return nil, fmt.Errorf("value of type %s has no len()", v.Type())
	}
}

// builtinRange returns a materialized list, matching the for-in/for-of
// iteration protocol's eager-list model elsewhere in the interpreter.
func builtinRange(i *Interpreter, args []Value) (Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		n, ok := args[0].(Int)
		if !ok {
			return nil, fmt.Errorf("range() expects int arguments")
		}
		stop = int64(n)
	case 2:
		a, ok1 := args[0].(Int)
		b, ok2 := args[1].(Int)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("range() expects int arguments")
		}
		start, stop = int64(a), int64(b)
	case 3:
		a, ok1 := args[0].(Int)
		b, ok2 := args[1].(Int)
		c, ok3 := args[2].(Int)
		if !ok1 || !ok2 || !ok3 {
			return nil, fmt.Errorf("range() expects int arguments")
		}
		start, stop, step = int64(a), int64(b), int64(c)
		if step == 0 {
			return nil, fmt.Errorf("range() step must not be zero")
		}
	default:
		return nil, fmt.Errorf("range() takes 1 to 3 arguments, got %d", len(args))
	}

	var elems []Value
	if step > 0 {
		for v := start; v < stop; v += step {
			elems = append(elems, Int(v))
		}
	} else {
		for v := start; v > stop; v += step {
			elems = append(elems, Int(v))
		}
	}
	return NewList(elems), nil
}

// builtinWaitSeconds checks its argument count and returns null at once
// without waiting: the interpreter has no cooperative scheduler or timer of
// its own (await simply drives an already-prepared call to completion
// synchronously).
func builtinWaitSeconds(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("waitSeconds() takes exactly one argument, got %d", len(args))
	}
	return NullValue, nil
}

func builtinStr(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str() takes exactly one argument, got %d", len(args))
	}
	return String(args[0].String()), nil
}

// builtinInput implements input(prompt?, expected_type?, raise?). Without a
// terminal, non-interactive input is drawn from MF_INPUTS (pipe-separated),
// one value per call, matching the CLI's non-interactive test mode.
func builtinInput(i *Interpreter, args []Value) (Value, error) {
	var prompt, expectedType string
	raise := false
	if len(args) > 0 {
		if s, ok := args[0].(String); ok {
			prompt = string(s)
		}
	}
	if len(args) > 1 {
		if s, ok := args[1].(String); ok {
			expectedType = string(s)
		}
	}
	if len(args) > 2 {
		raise = Truthy(args[2])
	}

	raw, err := readInputLine(prompt)
	if err != nil {
		if raise {
			return nil, corperr.New(corperr.IOError, token.Position{}, "", err.Error())
		}
		return NullValue, nil
	}

	v, convErr := coerceInput(raw, expectedType)
	if convErr != nil {
		if raise {
			return nil, corperr.New(corperr.TypeError, token.Position{}, "", convErr.Error())
		}
		return NullValue, nil
	}
	return v, nil
}

var mfInputsQueue []string
var mfInputsLoaded bool

func readInputLine(prompt string) (string, error) {
	if raw, ok := os.LookupEnv("MF_INPUTS"); ok {
		if !mfInputsLoaded {
			mfInputsQueue = strings.Split(raw, "|")
			mfInputsLoaded = true
		}
		if len(mfInputsQueue) == 0 {
			return "", fmt.Errorf("MF_INPUTS exhausted")
		}
		next := mfInputsQueue[0]
		mfInputsQueue = mfInputsQueue[1:]
		return next, nil
	}

	if prompt != "" {
		fmt.Fprint(os.Stdout, prompt)
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func coerceInput(raw, expectedType string) (Value, error) {
	switch expectedType {
	case "", "string", "str":
		return String(raw), nil
	case "int":
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected an int, got %q", raw)
		}
		return Int(n), nil
	case "float":
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("expected a float, got %q", raw)
		}
		return Float(f), nil
	case "bool":
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("expected a bool, got %q", raw)
		}
		return Bool(b), nil
	default:
		return nil, fmt.Errorf("unknown expected_type %q", expectedType)
	}
}

// builtinGenericOf reports the declaring class name of an instance, the
// name of a class value itself, or the enum name for an enum value —
// used for reflective dispatch in generic host code.
func builtinGenericOf(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("genericOf() takes exactly one argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case *Instance:
		return String(v.Class.Name), nil
	case *Class:
		return String(v.Name), nil
	case *EnumValue:
		return String(v.Enum.Name), nil
	default:
		return String(v.Type()), nil
	}
}

// builtinNative is the host escape hatch: it resolves a dotted path against
// a registry the embedding host populates, gated by SecurityPolicy so a
// sandboxed embedding can deny it outright.
func builtinNative(i *Interpreter, args []Value) (Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("__native__() requires a dotted path as its first argument")
	}
	path, ok := args[0].(String)
	if !ok {
		return nil, fmt.Errorf("__native__() path must be a string")
	}
	if i.Security == nil || !i.Security.AllowNative(string(path)) {
		return nil, corperr.New(corperr.SecurityError, token.Position{}, "", fmt.Sprintf("native call to %q is not permitted by the current security policy", path))
	}
	fn, ok := i.NativeRegistry[string(path)]
	if !ok {
		return nil, corperr.New(corperr.ReferenceError, token.Position{}, "", fmt.Sprintf("no native binding registered for %q", path))
	}
	return fn(i, args[1:])
}
