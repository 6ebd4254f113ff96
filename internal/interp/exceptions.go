package interp

import (
	"fmt"

	"github.com/corplang/mp/internal/corperr"
)

// signalKind distinguishes the three control-flow signals from ordinary
// errors. Per spec §9's "exceptions for control flow" note, these never
// satisfy Go's error interface — they travel as a third return value
// alongside (Value, error) so a `catch` clause (which only ever sees an
// error value) can never accidentally intercept a break/continue/return.
type signalKind int

const (
	signalNone signalKind = iota
	signalReturn
	signalBreak
	signalContinue
)

// controlSignal is returned by statement execution to unwind to the
// nearest construct that handles it: signalReturn to the enclosing call
// frame, signalBreak/signalContinue to the nearest enclosing loop.
type controlSignal struct {
	kind  signalKind
	value Value // set for signalReturn; nil otherwise
}

var noSignal = controlSignal{}

// ThrownValue is the Go error actually propagated on `throw`: the raised
// language value plus the stack snapshot captured at the point of raise.
// It is distinct from corperr.Exception (which models host/classification
// errors) but both are matched the same way by catch clauses: execTry turns
// a corperr.Exception into an instance of its Kind's builtin exception class.
// A thrown Value may be any value; one that is not an *Instance is matched
// only by an `any` catch.
type ThrownValue struct {
	Value Value
	Stack corperr.StackTrace
}

func (t *ThrownValue) Error() string {
	if inst, ok := t.Value.(*Instance); ok {
		if msg, ok := inst.Get("message"); ok {
			return fmt.Sprintf("%s: %s", inst.Class.Name, msg.String())
		}
		return inst.Class.Name
	}
	return t.Value.String()
}

// exceptionRoot is the synthetic root of every builtin exception class
// hierarchy; a catch clause typed `Exception` or `any` matches everything.
var exceptionRoot = NewClass("Exception", nil)

var builtinExceptionClasses = map[corperr.Kind]*Class{}

// builtinExceptionClass returns (creating once) the synthetic Class used to
// represent a given corperr.Kind as a catchable exception value, parented
// to Exception so `catch (e: Exception)` matches every builtin kind.
func builtinExceptionClass(kind corperr.Kind) *Class {
	if c, ok := builtinExceptionClasses[kind]; ok {
		return c
	}
	c := NewClass(kind.String(), nil)
	c.Parent = exceptionRoot
	builtinExceptionClasses[kind] = c
	return c
}

// RaiseError builds a ThrownValue for an interpreter-detected failure
// (undefined variable, type mismatch, private access, ...), classified by
// corperr.Kind, carrying the current call stack as its snapshot.
func RaiseError(ctx *ExecContext, kind corperr.Kind, message string) *ThrownValue {
	inst := NewInstance(builtinExceptionClass(kind))
	inst.Set("message", String(message))
	return &ThrownValue{Value: inst, Stack: ctx.Interp.CallStack.Snapshot()}
}

// MatchesCatchType reports whether a thrown value's class satisfies a
// catch clause's declared type name, per §7: nominal matching walking the
// parent chain, `any` matching everything.
func MatchesCatchType(v Value, typeName string) bool {
	if typeName == "any" {
		return true
	}
	inst, ok := v.(*Instance)
	if !ok {
		return false
	}
	return inst.Class.IsSubclassOf(typeName)
}
