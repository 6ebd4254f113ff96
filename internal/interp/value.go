// Package interp implements Corplang's tree-walking interpreter: the value
// model, environments, execution contexts, the AST-dispatch executor
// registry, and the call/method/exception protocols, in the shape of the
// teacher's internal/interp package (Value interface + per-type Equals/
// CompareTo/Copy methods, a dispatch-table interpreter core).
package interp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a runtime value. Every Corplang value (null, bool, int, float,
// string, list, map, class, instance, function, module namespace, enum)
// implements this.
type Value interface {
	Type() string
	String() string
}

// Null is Corplang's singleton null value.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }

// NullValue is the single shared null instance; null has no distinguishable
// identities so every site that needs it uses this value.
var NullValue = Null{}

// Bool is a boolean value.
type Bool bool

func (b Bool) Type() string { return "bool" }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int is a 64-bit signed integer value.
type Int int64

func (Int) Type() string     { return "int" }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is a 64-bit floating point value.
type Float float64

func (Float) Type() string { return "float" }
func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}

// String is a text value.
type String string

func (String) Type() string     { return "string" }
func (s String) String() string { return string(s) }

// List is a mutable, reference-semantics sequence of values.
type List struct {
	Elements []Value
}

func NewList(elems []Value) *List { return &List{Elements: elems} }

func (*List) Type() string { return "list" }
func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = reprOf(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Map is a mutable, reference-semantics string-keyed map of values.
// Insertion order is preserved for iteration (for-in/for-of and String()).
type Map struct {
	keys   []string
	values map[string]Value
}

func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

func (*Map) Type() string { return "map" }

func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *Map) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the map's keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Map) Len() int { return len(m.keys) }

func (m *Map) String() string {
	parts := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		parts = append(parts, fmt.Sprintf("%q: %s", k, reprOf(m.values[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// reprOf renders a value the way it would appear nested inside a list/map
// literal's String() — strings get quoted, everything else uses String().
func reprOf(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

// Truthy implements spec's truthiness rule: null and false are false,
// everything else — including 0, "", [] and {} — is true.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(t)
	default:
		return true
	}
}

// Equals implements `==`/`!=`. Numeric cross-type comparison (int vs float)
// compares by numeric value; everything else compares by identity/structure.
func Equals(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return Float(av) == bv
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Int:
			return av == Float(bv)
		case Float:
			return av == bv
		}
		return false
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equals(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Map:
		bv, ok := b.(*Map)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			bval, ok := bv.Get(k)
			if !ok || !Equals(av.values[k], bval) {
				return false
			}
		}
		return true
	case *Instance:
		return a == b
	default:
		return a == b
	}
}

// CompareOrdered implements `<`/`>`/`<=`/`>=`. Per spec §9's documented
// quirk, null coerces to 0 for ordered comparison (but not for ==/!=).
func CompareOrdered(a, b Value) (int, error) {
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1, nil
		case an > bn:
			return 1, nil
		default:
			return 0, nil
		}
	}
	as, aIsStr := a.(String)
	bs, bIsStr := b.(String)
	if aIsStr && bIsStr {
		return strings.Compare(string(as), string(bs)), nil
	}
	return 0, fmt.Errorf("cannot order-compare %s and %s", a.Type(), b.Type())
}

// asNumber coerces int/float/null (per the documented null-as-0 quirk) to a
// float64 for ordered comparison.
func asNumber(v Value) (float64, bool) {
	switch t := v.(type) {
	case Int:
		return float64(t), true
	case Float:
		return float64(t), true
	case Null:
		return 0, true
	default:
		return 0, false
	}
}

// SortStrings sorts a slice of strings in plain lexical order. Nothing in
// the repository calls it; the module loader's listings and "did you mean"
// suggestions sort with natural.Less instead.
func SortStrings(ss []string) {
	sort.Strings(ss)
}
