package interp

import (
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/internal/corperr"
	"github.com/corplang/mp/pkg/token"
)

// execStatements runs a statement list in order, stopping as soon as a
// control signal (return/break/continue) or an error surfaces. The caller
// decides what the signal means: a block just propagates it, a loop
// intercepts break/continue, Execute rejects a stray return.
func (i *Interpreter) execStatements(ctx *ExecContext, stmts []ast.Stmt) (Value, controlSignal, error) {
	var result Value = NullValue
	for _, stmt := range stmts {
		v, sig, err := i.execStmt(ctx, stmt)
		if err != nil {
			return nil, noSignal, err
		}
		result = v
		if sig.kind != signalNone {
			return result, sig, nil
		}
	}
	return result, noSignal, nil
}

// execStmt dispatches a single statement, consulting the registered
// executor table before falling back to the built-in type switch, per
// spec's "register_executor(variant, executor)" entry point.
func (i *Interpreter) execStmt(ctx *ExecContext, stmt ast.Stmt) (Value, controlSignal, error) {
	if fn, ok := i.stmtExecutors[reflect.TypeOf(stmt)]; ok {
		return fn(ctx, stmt)
	}
	switch n := stmt.(type) {
	case *ast.Block:
		return i.execBlock(ctx, n)
	case *ast.ExprStatement:
		v, err := i.evalExpr(ctx, n.Expr)
		return v, noSignal, err
	case *ast.VarDecl:
		return i.execVarDecl(ctx, n)
	case *ast.FunctionDecl:
		return i.execFunctionDecl(ctx, n)
	case *ast.ClassDecl:
		return i.execClassDecl(ctx, n)
	case *ast.InterfaceDecl:
		i.Interfaces[n.Name] = n
		return NullValue, noSignal, nil
	case *ast.ContractDecl:
		i.Contracts[n.Target] = n
		return NullValue, noSignal, nil
	case *ast.EnumDecl:
		return i.execEnumDecl(ctx, n)
	case *ast.ImportDecl:
		return i.execImportDecl(ctx, n)
	case *ast.FromImportDecl:
		return i.execFromImportDecl(ctx, n)
	case *ast.If:
		return i.execIf(ctx, n)
	case *ast.While:
		return i.execWhile(ctx, n)
	case *ast.For:
		return i.execFor(ctx, n)
	case *ast.ForIn:
		return i.execForIn(ctx, n)
	case *ast.ForOf:
		return i.execForOf(ctx, n)
	case *ast.Loop:
		return i.execLoop(ctx, n)
	case *ast.Return:
		var v Value = NullValue
		if n.Value != nil {
			var err error
			v, err = i.evalExpr(ctx, n.Value)
			if err != nil {
				return nil, noSignal, err
			}
		}
		return v, controlSignal{kind: signalReturn, value: v}, nil
	case *ast.Break:
		return NullValue, controlSignal{kind: signalBreak}, nil
	case *ast.Continue:
		return NullValue, controlSignal{kind: signalContinue}, nil
	case *ast.Try:
		return i.execTry(ctx, n)
	case *ast.Throw:
		return i.execThrow(ctx, n)
	case *ast.With:
		return i.execWith(ctx, n)
	case *ast.Delete:
		return i.execDelete(ctx, n)
	default:
		return nil, noSignal, corperr.New(corperr.InternalRuntimeError, stmt.Pos(), ctx.CurrentFile,
			fmt.Sprintf("unhandled statement variant %T", stmt))
	}
}

func (i *Interpreter) execBlock(ctx *ExecContext, b *ast.Block) (Value, controlSignal, error) {
	child := ctx.Child(NewEnclosedEnvironment(ctx.Env))
	return i.execStatements(child, b.Statements)
}

func (i *Interpreter) execVarDecl(ctx *ExecContext, n *ast.VarDecl) (Value, controlSignal, error) {
	var v Value = NullValue
	if n.Value != nil {
		var err error
		v, err = i.evalExpr(ctx, n.Value)
		if err != nil {
			return nil, noSignal, err
		}
	}
	ctx.Env.Define(n.Name, v)
	return NullValue, noSignal, nil
}

func (i *Interpreter) execFunctionDecl(ctx *ExecContext, n *ast.FunctionDecl) (Value, controlSignal, error) {
	fn := &Function{
		Name:       n.Name,
		Params:     n.Params,
		Body:       n.Body.Statements,
		ClosureEnv: ctx.Env,
		IsAsync:    n.IsAsync,
	}
	ctx.Env.Define(n.Name, fn)
	i.Functions[n.Name] = n
	return NullValue, noSignal, nil
}

func (i *Interpreter) execClassDecl(ctx *ExecContext, n *ast.ClassDecl) (Value, controlSignal, error) {
	class := NewClass(n.Name, ctx.Env)
	class.Implements = n.Implements
	class.Fields = n.Fields
	for _, m := range n.Methods {
		class.Methods[m.Name] = m
	}
	if n.Parent != "" {
		parent, ok := i.Classes[n.Parent]
		if !ok {
			return nil, noSignal, RaiseError(ctx, corperr.ReferenceError,
				fmt.Sprintf("class %q extends unknown class %q", n.Name, n.Parent))
		}
		class.Parent = parent
	}

	classCtx := ctx.Child(ctx.Env)
	classCtx.CurrentScopeOwner = n.Name
	for _, f := range n.Fields {
		if !f.IsStatic {
			continue
		}
		var v Value = NullValue
		if f.Default != nil {
			var err error
			v, err = i.evalExpr(classCtx, f.Default)
			if err != nil {
				return nil, noSignal, err
			}
		}
		class.StaticFields[f.Name] = v
	}

	i.Classes[n.Name] = class
	ctx.Env.Define(n.Name, class)
	return NullValue, noSignal, nil
}

func (i *Interpreter) execEnumDecl(ctx *ExecContext, n *ast.EnumDecl) (Value, controlSignal, error) {
	enum := &EnumType{Name: n.Name, Values: make(map[string]Value)}
	var nextOrdinal int64
	for _, m := range n.Members {
		ordinal := Int(nextOrdinal)
		if m.Value != nil {
			v, err := i.evalExpr(ctx, m.Value)
			if err != nil {
				return nil, noSignal, err
			}
			if iv, ok := v.(Int); ok {
				ordinal = iv
			}
		}
		enum.Members = append(enum.Members, m.Name)
		enum.Values[m.Name] = &EnumValue{Enum: enum, Member: m.Name, Ordinal: ordinal}
		nextOrdinal = int64(ordinal) + 1
	}
	i.Enums[n.Name] = enum
	ctx.Env.Define(n.Name, enum)
	return NullValue, noSignal, nil
}

func (i *Interpreter) execImportDecl(ctx *ExecContext, n *ast.ImportDecl) (Value, controlSignal, error) {
	ns, err := i.importModule(ctx, n.Path)
	if err != nil {
		return nil, noSignal, err
	}
	name := n.Alias
	if name == "" {
		name = lastPathSegment(n.Path)
	}
	ctx.Env.Define(name, ns)
	return NullValue, noSignal, nil
}

func (i *Interpreter) execFromImportDecl(ctx *ExecContext, n *ast.FromImportDecl) (Value, controlSignal, error) {
	ns, err := i.importModule(ctx, n.Module)
	if err != nil {
		return nil, noSignal, err
	}
	for _, imp := range n.Names {
		v, ok := ns.Vars[imp.Name]
		if !ok {
			// Unknown names bind null rather than failing at import time,
			// so downstream use produces the diagnostic.
			v = NullValue
		}
		name := imp.Alias
		if name == "" {
			name = imp.Name
		}
		ctx.Env.Define(name, v)
	}
	return NullValue, noSignal, nil
}

func (i *Interpreter) importModule(ctx *ExecContext, name string) (*ModuleNamespace, error) {
	if i.Loader == nil {
		return nil, RaiseError(ctx, corperr.IOError, fmt.Sprintf("no module loader configured, cannot import %q", name))
	}
	ns, err := i.Loader.ImportModule(name, ctx.CurrentFile)
	if err != nil {
		if _, ok := err.(*ThrownValue); ok {
			return nil, err
		}
		if _, ok := err.(*corperr.Exception); ok {
			return nil, err
		}
		return nil, corperr.Wrap(token.Position{}, ctx.CurrentFile, err)
	}
	return ns, nil
}

// reprKey converts a value used as a map index into the string key Map
// stores internally: strings pass through, everything else uses String().
func reprKey(v Value) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	return v.String()
}

func lastPathSegment(p string) string {
	p = strings.TrimSuffix(p, ".mp")
	p = strings.TrimSuffix(p, ".mf")
	base := path.Base(strings.ReplaceAll(p, ".", "/"))
	return base
}

func (i *Interpreter) execIf(ctx *ExecContext, n *ast.If) (Value, controlSignal, error) {
	cond, err := i.evalExpr(ctx, n.Cond)
	if err != nil {
		return nil, noSignal, err
	}
	if Truthy(cond) {
		return i.execBlock(ctx, n.Then)
	}
	if n.Else != nil {
		return i.execStmt(ctx, n.Else)
	}
	return NullValue, noSignal, nil
}

func (i *Interpreter) execWhile(ctx *ExecContext, n *ast.While) (Value, controlSignal, error) {
	for {
		cond, err := i.evalExpr(ctx, n.Cond)
		if err != nil {
			return nil, noSignal, err
		}
		if !Truthy(cond) {
			return NullValue, noSignal, nil
		}
		_, sig, err := i.execBlock(ctx, n.Body)
		if err != nil {
			return nil, noSignal, err
		}
		switch sig.kind {
		case signalBreak:
			return NullValue, noSignal, nil
		case signalReturn:
			return sig.value, sig, nil
		}
	}
}

func (i *Interpreter) execFor(ctx *ExecContext, n *ast.For) (Value, controlSignal, error) {
	loopCtx := ctx.Child(NewEnclosedEnvironment(ctx.Env))
	if n.Init != nil {
		if _, _, err := i.execStmt(loopCtx, n.Init); err != nil {
			return nil, noSignal, err
		}
	}
	for {
		if n.Cond != nil {
			cond, err := i.evalExpr(loopCtx, n.Cond)
			if err != nil {
				return nil, noSignal, err
			}
			if !Truthy(cond) {
				return NullValue, noSignal, nil
			}
		}
		_, sig, err := i.execBlock(loopCtx, n.Body)
		if err != nil {
			return nil, noSignal, err
		}
		if sig.kind == signalBreak {
			return NullValue, noSignal, nil
		}
		if sig.kind == signalReturn {
			return sig.value, sig, nil
		}
		if n.Update != nil {
			if _, _, err := i.execStmt(loopCtx, n.Update); err != nil {
				return nil, noSignal, err
			}
		}
	}
}

func (i *Interpreter) execLoop(ctx *ExecContext, n *ast.Loop) (Value, controlSignal, error) {
	for {
		_, sig, err := i.execBlock(ctx, n.Body)
		if err != nil {
			return nil, noSignal, err
		}
		if sig.kind == signalBreak {
			return NullValue, noSignal, nil
		}
		if sig.kind == signalReturn {
			return sig.value, sig, nil
		}
	}
}

func (i *Interpreter) execForIn(ctx *ExecContext, n *ast.ForIn) (Value, controlSignal, error) {
	return i.execForEach(ctx, n.Name, n.Iterable, n.Body, true)
}

func (i *Interpreter) execForOf(ctx *ExecContext, n *ast.ForOf) (Value, controlSignal, error) {
	return i.execForEach(ctx, n.Name, n.Iterable, n.Body, false)
}

// execForEach implements both for-in (wantKeys=true: map keys, list elements)
// and for-of (wantKeys=false: map values, list elements).
func (i *Interpreter) execForEach(ctx *ExecContext, name string, iterableExpr ast.Expr, body *ast.Block, wantKeys bool) (Value, controlSignal, error) {
	iterable, err := i.evalExpr(ctx, iterableExpr)
	if err != nil {
		return nil, noSignal, err
	}
	items, err := i.iterate(ctx, iterable, wantKeys)
	if err != nil {
		return nil, noSignal, err
	}
	for _, item := range items {
		iterCtx := ctx.Child(NewEnclosedEnvironment(ctx.Env))
		iterCtx.Env.Define(name, item)
		_, sig, err := i.execBlock(iterCtx, body)
		if err != nil {
			return nil, noSignal, err
		}
		if sig.kind == signalBreak {
			return NullValue, noSignal, nil
		}
		if sig.kind == signalReturn {
			return sig.value, sig, nil
		}
	}
	return NullValue, noSignal, nil
}

// iterate materializes the sequence of values a for-in/for-of walks. For
// instances it drives the __iter__/hasNext/next protocol eagerly; a fully
// lazy iterator is unnecessary since loop bodies never see partial results.
func (i *Interpreter) iterate(ctx *ExecContext, v Value, wantKeys bool) ([]Value, error) {
	switch t := v.(type) {
	case *List:
		return append([]Value(nil), t.Elements...), nil
	case *Map:
		if wantKeys {
			keys := t.Keys()
			out := make([]Value, len(keys))
			for idx, k := range keys {
				out[idx] = String(k)
			}
			return out, nil
		}
		keys := t.Keys()
		out := make([]Value, len(keys))
		for idx, k := range keys {
			val, _ := t.Get(k)
			out[idx] = val
		}
		return out, nil
	case *Instance:
		if _, declCls := t.Class.FindMethod("__iter__"); declCls != nil {
			it, err := i.callMethod(ctx, t, "__iter__", nil)
			if err != nil {
				return nil, err
			}
			itInst, ok := it.(*Instance)
			if !ok {
				return nil, RaiseError(ctx, corperr.TypeError, "__iter__ must return an iterator instance")
			}
			var out []Value
			for {
				hasNext, err := i.callMethod(ctx, itInst, "hasNext", nil)
				if err != nil {
					return nil, err
				}
				if !Truthy(hasNext) {
					break
				}
				next, err := i.callMethod(ctx, itInst, "next", nil)
				if err != nil {
					return nil, err
				}
				out = append(out, next)
			}
			return out, nil
		}
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("value of type %s is not iterable", v.Type()))
	default:
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("value of type %s is not iterable", v.Type()))
	}
}

func (i *Interpreter) execTry(ctx *ExecContext, n *ast.Try) (Value, controlSignal, error) {
	result, sig, err := i.execBlock(ctx, n.Body)

	if err != nil {
		thrown, isThrown := err.(*ThrownValue)
		if exc, ok := err.(*corperr.Exception); ok {
			// Host/classification errors are caught like builtin exceptions
			// of their Kind.
			inst := NewInstance(builtinExceptionClass(exc.Kind))
			inst.Set("message", String(exc.Message))
			thrown, isThrown = &ThrownValue{Value: inst, Stack: exc.Stack}, true
		}
		if isThrown {
			for _, clause := range n.Catches {
				if !MatchesCatchType(thrown.Value, clause.Type.Name) {
					continue
				}
				catchCtx := ctx.Child(NewEnclosedEnvironment(ctx.Env))
				catchCtx.Env.Define(clause.Name, thrown.Value)
				result, sig, err = i.execBlock(catchCtx, clause.Body)
				break
			}
		}
	}

	if n.Finally != nil {
		_, finallySig, finallyErr := i.execBlock(ctx, n.Finally)
		if finallyErr != nil {
			return nil, noSignal, finallyErr
		}
		if finallySig.kind != signalNone {
			// finally's own control flow overrides any pending
			// return/exception from try/catch.
			return finallySig.value, finallySig, nil
		}
	}

	return result, sig, err
}

func (i *Interpreter) execThrow(ctx *ExecContext, n *ast.Throw) (Value, controlSignal, error) {
	v, err := i.evalExpr(ctx, n.Value)
	if err != nil {
		return nil, noSignal, err
	}
	stack := ctx.Interp.CallStack.Snapshot()
	if inst, ok := v.(*Instance); ok {
		inst.Set("stacktrace", stackTraceValue(stack))
	}
	return nil, noSignal, &ThrownValue{Value: v, Stack: stack}
}

func stackTraceValue(st corperr.StackTrace) *List {
	elems := make([]Value, len(st))
	for idx, frame := range st {
		m := NewMap()
		m.Set("file", String(frame.File))
		m.Set("function", String(frame.Function))
		m.Set("line", Int(int64(frame.Pos.Line)))
		m.Set("column", Int(int64(frame.Pos.Column)))
		elems[idx] = m
	}
	return NewList(elems)
}

func (i *Interpreter) execWith(ctx *ExecContext, n *ast.With) (Value, controlSignal, error) {
	withCtx := ctx.Child(NewEnclosedEnvironment(ctx.Env))
	var managers []Value

	for _, item := range n.Items {
		mgr, err := i.evalExpr(withCtx, item.Manager)
		if err != nil {
			return nil, noSignal, i.exitManagers(withCtx, managers, err)
		}
		entered, err := i.enterManager(withCtx, mgr)
		if err != nil {
			return nil, noSignal, i.exitManagers(withCtx, managers, err)
		}
		managers = append(managers, mgr)
		if item.As != "" {
			withCtx.Env.Define(item.As, entered)
		}
	}

	result, sig, bodyErr := i.execBlock(withCtx, n.Body)
	finalErr := i.exitManagers(withCtx, managers, bodyErr)
	if finalErr != nil {
		return nil, noSignal, finalErr
	}
	return result, sig, nil
}

func (i *Interpreter) enterManager(ctx *ExecContext, mgr Value) (Value, error) {
	inst, ok := mgr.(*Instance)
	if !ok {
		return mgr, nil
	}
	name := "__enter__"
	if _, declCls := inst.Class.FindMethod(name); declCls == nil {
		name = "enter"
	}
	return i.callMethod(ctx, inst, name, nil)
}

// exitManagers calls __exit__ on every entered manager in reverse order. If
// bodyErr carries a thrown exception and some __exit__ returns truthy, the
// exception is suppressed for every manager exited afterward.
func (i *Interpreter) exitManagers(ctx *ExecContext, managers []Value, bodyErr error) error {
	thrown, _ := bodyErr.(*ThrownValue)
	active := bodyErr

	for idx := len(managers) - 1; idx >= 0; idx-- {
		inst, ok := managers[idx].(*Instance)
		if !ok {
			continue
		}
		name := "__exit__"
		if _, declCls := inst.Class.FindMethod(name); declCls == nil {
			continue
		}
		var excType, excValue Value = NullValue, NullValue
		if thrown != nil && active != nil {
			excValue = thrown.Value
			if vi, ok := thrown.Value.(*Instance); ok {
				excType = String(vi.Class.Name)
			}
		}
		result, err := i.callMethod(ctx, inst, name, []Value{excType, excValue, NullValue})
		if err != nil {
			return err
		}
		if thrown != nil && active != nil && Truthy(result) {
			active = nil
		}
	}
	return active
}

func (i *Interpreter) execDelete(ctx *ExecContext, n *ast.Delete) (Value, controlSignal, error) {
	switch target := n.Target.(type) {
	case *ast.IndexAccess:
		obj, err := i.evalExpr(ctx, target.Object)
		if err != nil {
			return nil, noSignal, err
		}
		idx, err := i.evalExpr(ctx, target.Index)
		if err != nil {
			return nil, noSignal, err
		}
		m, ok := obj.(*Map)
		if !ok {
			return nil, noSignal, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("cannot delete index from value of type %s", obj.Type()))
		}
		m.Delete(reprKey(idx))
		return NullValue, noSignal, nil
	case *ast.PropertyAccess:
		obj, err := i.evalExpr(ctx, target.Object)
		if err != nil {
			return nil, noSignal, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, noSignal, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("cannot delete property from value of type %s", obj.Type()))
		}
		if field, declCls := inst.Class.FindField(target.Name); declCls != nil {
			if !CanAccess(field.Visibility, declCls, inst, ctx) {
				return nil, noSignal, RaiseError(ctx, corperr.SecurityError, fmt.Sprintf("cannot access private member %q", target.Name))
			}
		}
		delete(inst.Fields, target.Name)
		return NullValue, noSignal, nil
	default:
		return nil, noSignal, RaiseError(ctx, corperr.SyntaxError, "invalid delete target")
	}
}
