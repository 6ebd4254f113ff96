package interp

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/internal/corperr"
	"github.com/corplang/mp/pkg/token"
)

// evalExpr dispatches a single expression, consulting the registered
// executor table before falling back to the built-in type switch.
func (i *Interpreter) evalExpr(ctx *ExecContext, expr ast.Expr) (Value, error) {
	if fn, ok := i.exprExecutors[reflect.TypeOf(expr)]; ok {
		return fn(ctx, expr)
	}
	switch n := expr.(type) {
	case *ast.Literal:
		return literalValue(n), nil
	case *ast.NullLiteral:
		return NullValue, nil
	case *ast.Identifier:
		v, ok := ctx.Env.Get(n.Name)
		if !ok {
			return nil, RaiseError(ctx, corperr.ReferenceError, fmt.Sprintf("undefined variable %q", n.Name))
		}
		return v, nil
	case *ast.GenericIdentifier:
		// Generic type arguments are erased at runtime; resolve the bare name.
		v, ok := ctx.Env.Get(n.Name)
		if !ok {
			return nil, RaiseError(ctx, corperr.ReferenceError, fmt.Sprintf("undefined variable %q", n.Name))
		}
		return v, nil
	case *ast.BinaryOp:
		return i.evalBinaryOp(ctx, n)
	case *ast.UnaryOp:
		return i.evalUnaryOp(ctx, n)
	case *ast.Ternary:
		cond, err := i.evalExpr(ctx, n.Cond)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return i.evalExpr(ctx, n.Then)
		}
		return i.evalExpr(ctx, n.Else)
	case *ast.Assignment:
		return i.evalAssignment(ctx, n)
	case *ast.FunctionCall:
		return i.evalFunctionCall(ctx, n)
	case *ast.PropertyAccess:
		return i.evalPropertyAccess(ctx, n)
	case *ast.IndexAccess:
		return i.evalIndexAccess(ctx, n)
	case *ast.NewExpression:
		return i.evalNewExpression(ctx, n)
	case *ast.ThisExpression:
		if ctx.CurrentInstance == nil {
			return nil, RaiseError(ctx, corperr.TypeError, "'this' used outside a method body")
		}
		return ctx.CurrentInstance, nil
	case *ast.SuperExpression:
		return i.evalSuperExpression(ctx, n)
	case *ast.LambdaExpression:
		return &Function{
			Name:       "<lambda>",
			Params:     n.Params,
			Body:       n.Body,
			ClosureEnv: ctx.Env,
			IsAsync:    n.IsAsync,
		}, nil
	case *ast.Await:
		return i.evalAwait(ctx, n)
	case *ast.InterpolatedString:
		return i.evalInterpolatedString(ctx, n)
	case *ast.JsonObject:
		return i.evalJsonObject(ctx, n)
	case *ast.JsonArray:
		return i.evalJsonArray(ctx, n)
	default:
		return nil, corperr.New(corperr.InternalRuntimeError, expr.Pos(), ctx.CurrentFile,
			fmt.Sprintf("unhandled expression variant %T", expr))
	}
}

func literalValue(n *ast.Literal) Value {
	switch n.Kind {
	case ast.IntLiteral:
		return Int(n.IVal)
	case ast.FloatLiteral:
		return Float(n.FVal)
	case ast.StringLiteral:
		return String(n.SVal)
	case ast.BoolLiteral:
		return Bool(n.BVal)
	default:
		return NullValue
	}
}

func (i *Interpreter) evalUnaryOp(ctx *ExecContext, n *ast.UnaryOp) (Value, error) {
	v, err := i.evalExpr(ctx, n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		switch t := v.(type) {
		case Int:
			return -t, nil
		case Float:
			return -t, nil
		default:
			return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("unary '-' requires a number, got %s", v.Type()))
		}
	case "not", "!":
		return Bool(!Truthy(v)), nil
	default:
		return nil, corperr.New(corperr.InternalRuntimeError, n.Pos(), ctx.CurrentFile, fmt.Sprintf("unknown unary operator %q", n.Op))
	}
}

func (i *Interpreter) evalBinaryOp(ctx *ExecContext, n *ast.BinaryOp) (Value, error) {
	switch n.Op {
	case "and":
		left, err := i.evalExpr(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		if !Truthy(left) {
			return left, nil
		}
		return i.evalExpr(ctx, n.Right)
	case "or":
		left, err := i.evalExpr(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		if Truthy(left) {
			return left, nil
		}
		return i.evalExpr(ctx, n.Right)
	}

	left, err := i.evalExpr(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	return applyBinaryOp(ctx, n.Op, left, right)
}

func applyBinaryOp(ctx *ExecContext, op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return Bool(Equals(left, right)), nil
	case "!=":
		return Bool(!Equals(left, right)), nil
	case "<", ">", "<=", ">=":
		cmp, err := CompareOrdered(left, right)
		if err != nil {
			return nil, RaiseError(ctx, corperr.TypeError, err.Error())
		}
		switch op {
		case "<":
			return Bool(cmp < 0), nil
		case ">":
			return Bool(cmp > 0), nil
		case "<=":
			return Bool(cmp <= 0), nil
		default:
			return Bool(cmp >= 0), nil
		}
	case "in":
		return evalIn(ctx, left, right)
	case "+":
		return evalPlus(ctx, left, right)
	case "-", "*", "/", "%":
		return evalArithmetic(ctx, op, left, right)
	default:
		return nil, corperr.New(corperr.InternalRuntimeError, token.Position{}, ctx.CurrentFile, fmt.Sprintf("unknown binary operator %q", op))
	}
}

func evalIn(ctx *ExecContext, left, right Value) (Value, error) {
	switch r := right.(type) {
	case *List:
		for _, e := range r.Elements {
			if Equals(left, e) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case *Map:
		_, ok := r.Get(reprKey(left))
		return Bool(ok), nil
	case String:
		l, ok := left.(String)
		if !ok {
			return nil, RaiseError(ctx, corperr.TypeError, "'in' on a string requires a string operand")
		}
		return Bool(strings.Contains(string(r), string(l))), nil
	default:
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("'in' not supported on %s", right.Type()))
	}
}

func evalPlus(ctx *ExecContext, left, right Value) (Value, error) {
	switch l := left.(type) {
	case String:
		if r, ok := right.(String); ok {
			return l + r, nil
		}
	case *List:
		if r, ok := right.(*List); ok {
			elems := make([]Value, 0, len(l.Elements)+len(r.Elements))
			elems = append(elems, l.Elements...)
			elems = append(elems, r.Elements...)
			return NewList(elems), nil
		}
	}
	if _, ok := left.(Null); ok {
		return nil, RaiseError(ctx, corperr.TypeError, "'+' requires non-null operands")
	}
	if _, ok := right.(Null); ok {
		return nil, RaiseError(ctx, corperr.TypeError, "'+' requires non-null operands")
	}
	ln, lok := numericOperand(left)
	rn, rok := numericOperand(right)
	if !lok || !rok {
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("unsupported operand types for '+': %s and %s", left.Type(), right.Type()))
	}
	if isIntPair(left, right) {
		return Int(int64(ln) + int64(rn)), nil
	}
	return Float(ln + rn), nil
}

func evalArithmetic(ctx *ExecContext, op string, left, right Value) (Value, error) {
	if _, ok := left.(Null); ok {
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("'%s' requires non-null operands", op))
	}
	if _, ok := right.(Null); ok {
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("'%s' requires non-null operands", op))
	}
	ln, lok := numericOperand(left)
	rn, rok := numericOperand(right)
	if !lok || !rok {
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("unsupported operand types for '%s': %s and %s", op, left.Type(), right.Type()))
	}
	intPair := isIntPair(left, right)

	switch op {
	case "-":
		if intPair {
			return Int(int64(ln) - int64(rn)), nil
		}
		return Float(ln - rn), nil
	case "*":
		if intPair {
			return Int(int64(ln) * int64(rn)), nil
		}
		return Float(ln * rn), nil
	case "/":
		if rn == 0 {
			return nil, RaiseError(ctx, corperr.RuntimeError, "division by zero")
		}
		return Float(ln / rn), nil
	case "%":
		if rn == 0 {
			return nil, RaiseError(ctx, corperr.RuntimeError, "modulo by zero")
		}
		if intPair {
			return Int(int64(ln) % int64(rn)), nil
		}
		return Float(math.Mod(ln, rn)), nil
	default:
		return nil, corperr.New(corperr.InternalRuntimeError, token.Position{}, ctx.CurrentFile, fmt.Sprintf("unknown arithmetic operator %q", op))
	}
}

func numericOperand(v Value) (float64, bool) {
	switch t := v.(type) {
	case Int:
		return float64(t), true
	case Float:
		return float64(t), true
	default:
		return 0, false
	}
}

func isIntPair(a, b Value) bool {
	_, aok := a.(Int)
	_, bok := b.(Int)
	return aok && bok
}

func (i *Interpreter) evalAssignment(ctx *ExecContext, n *ast.Assignment) (Value, error) {
	value, err := i.evalExpr(ctx, n.Value)
	if err != nil {
		return nil, err
	}
	switch target := n.Target.(type) {
	case *ast.Identifier:
		if err := ctx.Env.Set(target.Name, value); err != nil {
			return nil, RaiseError(ctx, corperr.ReferenceError, err.Error())
		}
		return value, nil
	case *ast.PropertyAccess:
		obj, err := i.evalExpr(ctx, target.Object)
		if err != nil {
			return nil, err
		}
		if err := i.assignProperty(ctx, obj, target.Name, value); err != nil {
			return nil, err
		}
		return value, nil
	case *ast.IndexAccess:
		obj, err := i.evalExpr(ctx, target.Object)
		if err != nil {
			return nil, err
		}
		idx, err := i.evalExpr(ctx, target.Index)
		if err != nil {
			return nil, err
		}
		if err := i.assignIndex(ctx, obj, idx, value); err != nil {
			return nil, err
		}
		return value, nil
	default:
		return nil, RaiseError(ctx, corperr.SyntaxError, "invalid assignment target")
	}
}

func (i *Interpreter) assignProperty(ctx *ExecContext, obj Value, name string, value Value) error {
	switch o := obj.(type) {
	case *Instance:
		if field, declCls := o.Class.FindField(name); declCls != nil {
			if !CanAccess(field.Visibility, declCls, o, ctx) {
				return RaiseError(ctx, corperr.SecurityError, fmt.Sprintf("cannot access private member %q", name))
			}
		}
		o.Set(name, value)
		return nil
	case *Class:
		o.StaticFields[name] = value
		return nil
	case Null:
		return RaiseError(ctx, corperr.TypeError, fmt.Sprintf("cannot set property %q on null", name))
	default:
		return RaiseError(ctx, corperr.TypeError, fmt.Sprintf("cannot set property %q on value of type %s", name, obj.Type()))
	}
}

func (i *Interpreter) assignIndex(ctx *ExecContext, obj Value, idx Value, value Value) error {
	switch o := obj.(type) {
	case *List:
		n, ok := idx.(Int)
		if !ok {
			return RaiseError(ctx, corperr.TypeError, "list index must be an int")
		}
		if int64(n) < 0 || int(n) >= len(o.Elements) {
			return RaiseError(ctx, corperr.RuntimeError, fmt.Sprintf("index %d out of bounds for list of length %d", n, len(o.Elements)))
		}
		o.Elements[n] = value
		return nil
	case *Map:
		o.Set(reprKey(idx), value)
		return nil
	default:
		return RaiseError(ctx, corperr.TypeError, fmt.Sprintf("cannot index-assign value of type %s", obj.Type()))
	}
}

func (i *Interpreter) evalIndexAccess(ctx *ExecContext, n *ast.IndexAccess) (Value, error) {
	obj, err := i.evalExpr(ctx, n.Object)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalExpr(ctx, n.Index)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *List:
		iv, ok := idx.(Int)
		if !ok {
			return nil, RaiseError(ctx, corperr.TypeError, "list index must be an int")
		}
		if int64(iv) < 0 || int(iv) >= len(o.Elements) {
			return nil, RaiseError(ctx, corperr.RuntimeError, fmt.Sprintf("index %d out of bounds for list of length %d", iv, len(o.Elements)))
		}
		return o.Elements[iv], nil
	case *Map:
		v, ok := o.Get(reprKey(idx))
		if !ok {
			return NullValue, nil
		}
		return v, nil
	case String:
		iv, ok := idx.(Int)
		if !ok {
			return nil, RaiseError(ctx, corperr.TypeError, "string index must be an int")
		}
		runes := []rune(string(o))
		if int64(iv) < 0 || int(iv) >= len(runes) {
			return nil, RaiseError(ctx, corperr.RuntimeError, fmt.Sprintf("index %d out of bounds for string of length %d", iv, len(runes)))
		}
		return String(string(runes[iv])), nil
	default:
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("cannot index value of type %s", obj.Type()))
	}
}

func (i *Interpreter) evalPropertyAccess(ctx *ExecContext, n *ast.PropertyAccess) (Value, error) {
	obj, err := i.evalExpr(ctx, n.Object)
	if err != nil {
		return nil, err
	}
	if n.Optional {
		if _, isNull := obj.(Null); isNull {
			return NullValue, nil
		}
	}
	return i.getProperty(ctx, obj, n.Name)
}

func (i *Interpreter) getProperty(ctx *ExecContext, obj Value, name string) (Value, error) {
	switch o := obj.(type) {
	case *Instance:
		// A field and a method may share a name; property access prefers
		// the field, but obj.name() (a FunctionCall) prefers the method.
		if v, ok := o.Get(name); ok {
			if field, declCls := o.Class.FindField(name); declCls != nil {
				if !CanAccess(field.Visibility, declCls, o, ctx) {
					return nil, RaiseError(ctx, corperr.SecurityError, fmt.Sprintf("cannot access private member %q", name))
				}
			}
			return v, nil
		}
		if method, declCls := o.Class.FindMethod(name); declCls != nil {
			fn := &Function{
				Name:           method.Name,
				Params:         method.Params,
				Body:           method.Body.Statements,
				ClosureEnv:     declCls.DeclEnv,
				IsAsync:        method.IsAsync,
				BoundThis:      o,
				DeclaringClass: declCls,
			}
			return fn, nil
		}
		return nil, RaiseError(ctx, corperr.ReferenceError, fmt.Sprintf("%q has no member %q", o.Class.Name, name))
	case *Class:
		if v, ok := o.StaticFields[name]; ok {
			return v, nil
		}
		if method, declCls := o.FindMethod(name); declCls != nil {
			fn := &Function{
				Name:           method.Name,
				Params:         method.Params,
				Body:           method.Body.Statements,
				ClosureEnv:     declCls.DeclEnv,
				IsAsync:        method.IsAsync,
				DeclaringClass: declCls,
			}
			return fn, nil
		}
		return nil, RaiseError(ctx, corperr.ReferenceError, fmt.Sprintf("class %q has no static member %q", o.Name, name))
	case *ModuleNamespace:
		v, ok := o.Vars[name]
		if !ok {
			return nil, RaiseError(ctx, corperr.ReferenceError, fmt.Sprintf("module %q has no export %q", o.Name, name))
		}
		return v, nil
	case *EnumType:
		v, ok := o.Values[name]
		if !ok {
			return nil, RaiseError(ctx, corperr.ReferenceError, fmt.Sprintf("enum %q has no member %q", o.Name, name))
		}
		return v, nil
	case *superRef:
		if method, declCls := o.Class.FindMethod(name); declCls != nil {
			return &Function{
				Name:           method.Name,
				Params:         method.Params,
				Body:           method.Body.Statements,
				ClosureEnv:     declCls.DeclEnv,
				IsAsync:        method.IsAsync,
				BoundThis:      o.Instance,
				DeclaringClass: declCls,
			}, nil
		}
		return nil, RaiseError(ctx, corperr.ReferenceError, fmt.Sprintf("parent class has no member %q", name))
	case Null:
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("cannot read property %q of null", name))
	default:
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("cannot read property %q of value of type %s", name, obj.Type()))
	}
}

// evalSuperExpression resolves `super` to a superRef bound to the current
// instance and the immediate parent of the executing method's declaring
// class. Bare (uncalled, unaccessed) super has no standalone meaning in the
// language, but returning the reference lets evalFunctionCall and
// getProperty special-case it for `super(...)` and `super.method()`.
func (i *Interpreter) evalSuperExpression(ctx *ExecContext, n *ast.SuperExpression) (Value, error) {
	if ctx.CurrentInstance == nil || ctx.CurrentScopeOwner == "" {
		return nil, RaiseError(ctx, corperr.TypeError, "'super' used outside a class context")
	}
	owner, ok := i.Classes[ctx.CurrentScopeOwner]
	if !ok || owner.Parent == nil {
		return &superRef{Instance: ctx.CurrentInstance, Class: nil}, nil
	}
	return &superRef{Instance: ctx.CurrentInstance, Class: owner.Parent}, nil
}

// superRef is an internal-only value produced by evaluating `super`; it is
// never exposed to user code as a printable value and carries no Type()
// meaning beyond letting evalFunctionCall/getProperty recognize it.
type superRef struct {
	Instance *Instance
	Class    *Class
}

func (*superRef) Type() string     { return "super" }
func (s *superRef) String() string { return "<super>" }

func (i *Interpreter) evalInterpolatedString(ctx *ExecContext, n *ast.InterpolatedString) (Value, error) {
	var sb strings.Builder
	for idx, part := range n.Parts {
		sb.WriteString(part)
		if idx < len(n.Exprs) {
			v, err := i.evalExpr(ctx, n.Exprs[idx])
			if err != nil {
				return nil, err
			}
			sb.WriteString(v.String())
		}
	}
	return String(sb.String()), nil
}

func (i *Interpreter) evalJsonObject(ctx *ExecContext, n *ast.JsonObject) (Value, error) {
	if te := i.Memory.Charge(ctx, int64(len(n.Keys))); te != nil {
		return nil, te
	}
	m := NewMap()
	for idx, key := range n.Keys {
		v, err := i.evalExpr(ctx, n.Values[idx])
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

func (i *Interpreter) evalJsonArray(ctx *ExecContext, n *ast.JsonArray) (Value, error) {
	if te := i.Memory.Charge(ctx, int64(len(n.Elements))); te != nil {
		return nil, te
	}
	elems := make([]Value, len(n.Elements))
	for idx, e := range n.Elements {
		v, err := i.evalExpr(ctx, e)
		if err != nil {
			return nil, err
		}
		elems[idx] = v
	}
	return NewList(elems), nil
}

