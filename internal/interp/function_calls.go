package interp

import (
	"fmt"

	"github.com/corplang/mp/internal/ast"
	"github.com/corplang/mp/internal/corperr"
	"github.com/corplang/mp/pkg/token"
)

// evaluatedArg is a call argument after its expression has been evaluated,
// preserving the name (empty for positional) for the binding step.
type evaluatedArg struct {
	Name  string
	Value Value
}

func argsToValues(args []evaluatedArg) []Value {
	out := make([]Value, len(args))
	for idx, a := range args {
		out[idx] = a.Value
	}
	return out
}

func (i *Interpreter) evalArgs(ctx *ExecContext, argNodes []ast.Arg) ([]evaluatedArg, error) {
	out := make([]evaluatedArg, len(argNodes))
	for idx, a := range argNodes {
		v, err := i.evalExpr(ctx, a.Value)
		if err != nil {
			return nil, err
		}
		out[idx] = evaluatedArg{Name: a.Name, Value: v}
	}
	return out, nil
}

func (i *Interpreter) evalFunctionCall(ctx *ExecContext, n *ast.FunctionCall) (Value, error) {
	if _, ok := n.Callee.(*ast.SuperExpression); ok {
		return i.callSuperConstructor(ctx, n)
	}
	callee, err := i.evalExpr(ctx, n.Callee)
	if err != nil {
		return nil, err
	}
	args, err := i.evalArgs(ctx, n.Args)
	if err != nil {
		return nil, err
	}
	return i.invoke(ctx, callee, args, n.Pos())
}

func (i *Interpreter) invoke(ctx *ExecContext, callee Value, args []evaluatedArg, pos token.Position) (Value, error) {
	switch fn := callee.(type) {
	case *Function:
		if fn.IsAsync && !ctx.IsAsync {
			return nil, RaiseError(ctx, corperr.TypeError,
				fmt.Sprintf("cannot call async function %q from non-async context; use 'await' or mark the caller async", fn.Name))
		}
		return i.callFunction(ctx, fn, args, pos)
	case *NativeFunction:
		return fn.Fn(i, argsToValues(args))
	default:
		return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("value of type %s is not callable", callee.Type()))
	}
}

// callSuperConstructor implements `super(...)`: it invokes the immediate
// parent's constructor bound to the current instance. A parent without a
// constructor makes the call a no-op; `super` outside a class context is a
// runtime type error.
func (i *Interpreter) callSuperConstructor(ctx *ExecContext, n *ast.FunctionCall) (Value, error) {
	if ctx.CurrentInstance == nil || ctx.CurrentScopeOwner == "" {
		return nil, RaiseError(ctx, corperr.TypeError, "'super' used outside a class context")
	}
	owner, ok := i.Classes[ctx.CurrentScopeOwner]
	if !ok || owner.Parent == nil {
		return NullValue, nil
	}
	parent := owner.Parent
	ctor, ok := parent.Methods[parent.Name]
	if !ok || !ctor.IsConstructor {
		return NullValue, nil
	}
	args, err := i.evalArgs(ctx, n.Args)
	if err != nil {
		return nil, err
	}
	fn := &Function{
		Name:           ctor.Name,
		Params:         ctor.Params,
		Body:           ctor.Body.Statements,
		ClosureEnv:     parent.DeclEnv,
		IsAsync:        ctor.IsAsync,
		BoundThis:      ctx.CurrentInstance,
		DeclaringClass: parent,
	}
	return i.callFunction(ctx, fn, args, n.Pos())
}

// callMethod invokes a named method on inst with already-evaluated
// positional arguments; used by the with-statement enter/exit protocol and
// for-in/for-of's __iter__/hasNext/next fallback, where no source-level
// ast.Arg list exists to evaluate.
func (i *Interpreter) callMethod(ctx *ExecContext, inst *Instance, name string, argVals []Value) (Value, error) {
	method, declCls := inst.Class.FindMethod(name)
	if declCls == nil {
		return nil, RaiseError(ctx, corperr.ReferenceError, fmt.Sprintf("%q has no method %q", inst.Class.Name, name))
	}
	fn := &Function{
		Name:           method.Name,
		Params:         method.Params,
		Body:           method.Body.Statements,
		ClosureEnv:     declCls.DeclEnv,
		IsAsync:        method.IsAsync,
		BoundThis:      inst,
		DeclaringClass: declCls,
	}
	args := make([]evaluatedArg, len(argVals))
	for idx, v := range argVals {
		args[idx] = evaluatedArg{Value: v}
	}
	return i.callFunction(ctx, fn, args, token.Position{})
}

// callFunction is the call protocol's entry point. An async function never
// runs its body here: it builds an Awaitable with parameters already bound,
// deferring execution to the point it is driven by `await`.
func (i *Interpreter) callFunction(ctx *ExecContext, fn *Function, args []evaluatedArg, pos token.Position) (Value, error) {
	callCtx, err := i.prepareCall(ctx, fn, args)
	if err != nil {
		return nil, err
	}
	if fn.IsAsync {
		return &Awaitable{Fn: fn, Args: argsToValues(args), preparedCtx: callCtx, pos: pos}, nil
	}
	return i.runBody(callCtx, fn, pos)
}

// prepareCall implements the call protocol's binding steps: positional, then
// named, then defaults (defaults evaluated in the interpreter's root
// context, not the caller's), followed by a fresh environment parented to
// the function's closure and a child context carrying `this`/scope owner
// for method calls.
func (i *Interpreter) prepareCall(ctx *ExecContext, fn *Function, args []evaluatedArg) (*ExecContext, error) {
	bindings, err := i.bindArguments(ctx, fn.Params, args)
	if err != nil {
		return nil, err
	}
	env := NewEnclosedEnvironment(fn.ClosureEnv)
	for name, v := range bindings {
		env.Define(name, v)
	}
	callCtx := &ExecContext{
		Interp:      i,
		Env:         env,
		CurrentFile: ctx.CurrentFile,
		IsAsync:     fn.IsAsync,
		Parent:      ctx,
	}
	if fn.BoundThis != nil {
		callCtx.CurrentInstance = fn.BoundThis
	}
	if fn.DeclaringClass != nil {
		callCtx.CurrentScopeOwner = fn.DeclaringClass.Name
	}
	return callCtx, nil
}

// runBody pushes the call frame, executes the body, pops the frame in a
// deferred block regardless of outcome, and enforces any contract attached
// to the function by name.
func (i *Interpreter) runBody(callCtx *ExecContext, fn *Function, pos token.Position) (Value, error) {
	if err := i.checkRequires(callCtx, fn.Name); err != nil {
		return nil, err
	}

	i.CallStack.Push(fn.Name, callCtx.CurrentFile, pos)
	if i.Tracer != nil {
		i.Tracer.onPush(fn.Name, callCtx.CurrentFile, callCtx.Env)
	}
	defer func() {
		i.CallStack.Pop()
		if i.Tracer != nil {
			i.Tracer.onPop(fn.Name)
		}
	}()

	_, sig, err := i.execStatements(callCtx, fn.Body)
	if err != nil {
		return nil, err
	}
	var retVal Value = NullValue
	if sig.kind == signalReturn {
		retVal = sig.value
	}

	if err := i.checkEnsures(callCtx, fn.Name, retVal); err != nil {
		return nil, err
	}
	return retVal, nil
}

// runAwaitable drives a deferred async call to completion, memoizing the
// result so awaiting the same Awaitable twice runs the body once.
func (i *Interpreter) runAwaitable(aw *Awaitable) (Value, error) {
	if aw.settled {
		return aw.result, aw.err
	}
	aw.result, aw.err = i.runBody(aw.preparedCtx, aw.Fn, aw.pos)
	aw.settled = true
	return aw.result, aw.err
}

// evalAwait drives the awaitable protocol. `await` is only legal inside an
// async function body; a non-Awaitable operand passes through unchanged.
func (i *Interpreter) evalAwait(ctx *ExecContext, n *ast.Await) (Value, error) {
	if !ctx.IsAsync {
		return nil, RaiseError(ctx, corperr.TypeError, "'await' used outside an async function")
	}
	v, err := i.evalExpr(ctx, n.Value)
	if err != nil {
		return nil, err
	}
	aw, ok := v.(*Awaitable)
	if !ok {
		return v, nil
	}
	return i.runAwaitable(aw)
}

// bindArguments implements spec's parameter binding: positional first, then
// named (no duplicates, no unknown names unless a trailing kwargs parameter
// absorbs them), then defaults for anything still unset.
func (i *Interpreter) bindArguments(ctx *ExecContext, params []ast.Param, args []evaluatedArg) (map[string]Value, error) {
	var ordinary []ast.Param
	var kwparam *ast.Param
	for idx := range params {
		if params[idx].IsKwargs {
			kwparam = &params[idx]
			continue
		}
		ordinary = append(ordinary, params[idx])
	}

	var positional []Value
	var named []evaluatedArg
	for _, a := range args {
		if a.Name == "" {
			positional = append(positional, a.Value)
		} else {
			named = append(named, a)
		}
	}

	if len(positional) > len(ordinary) {
		return nil, RaiseError(ctx, corperr.TypeError,
			fmt.Sprintf("too many positional arguments: expected at most %d, got %d", len(ordinary), len(positional)))
	}

	bindings := make(map[string]Value, len(ordinary)+1)
	used := make(map[string]bool, len(ordinary))
	for idx, v := range positional {
		bindings[ordinary[idx].Name] = v
		used[ordinary[idx].Name] = true
	}

	extraNamed := NewMap()
	for _, a := range named {
		matched := false
		for _, p := range ordinary {
			if p.Name != a.Name {
				continue
			}
			if used[a.Name] {
				return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("duplicate argument %q", a.Name))
			}
			bindings[a.Name] = a.Value
			used[a.Name] = true
			matched = true
			break
		}
		if !matched {
			if kwparam == nil {
				return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("unknown named argument %q", a.Name))
			}
			extraNamed.Set(a.Name, a.Value)
		}
	}
	if kwparam != nil {
		bindings[kwparam.Name] = extraNamed
	}

	// Defaults are evaluated in the interpreter's root context, not the
	// caller's, so a default expression can never see caller-local state.
	rootCtx := &ExecContext{Interp: i, Env: i.Global, CurrentFile: ctx.CurrentFile}
	for _, p := range ordinary {
		if used[p.Name] {
			continue
		}
		if p.Default == nil {
			return nil, RaiseError(ctx, corperr.TypeError, fmt.Sprintf("missing required parameter %q", p.Name))
		}
		v, err := i.evalExpr(rootCtx, p.Default)
		if err != nil {
			return nil, err
		}
		bindings[p.Name] = v
	}
	return bindings, nil
}

// checkRequires/checkEnsures enforce a `contract` block attached to a
// function or method by name, per the design-by-contract declarations.
func (i *Interpreter) checkRequires(ctx *ExecContext, fnName string) error {
	contract, ok := i.Contracts[fnName]
	if !ok {
		return nil
	}
	for _, cond := range contract.Requires {
		v, err := i.evalExpr(ctx, cond.Test)
		if err != nil {
			return err
		}
		if !Truthy(v) {
			return RaiseError(ctx, corperr.AssertionError, conditionMessage(ctx, cond, "requirement"))
		}
	}
	return nil
}

func (i *Interpreter) checkEnsures(ctx *ExecContext, fnName string, result Value) error {
	contract, ok := i.Contracts[fnName]
	if !ok {
		return nil
	}
	ctx.Env.Define("result", result)
	for _, cond := range contract.Ensures {
		v, err := i.evalExpr(ctx, cond.Test)
		if err != nil {
			return err
		}
		if !Truthy(v) {
			return RaiseError(ctx, corperr.AssertionError, conditionMessage(ctx, cond, "postcondition"))
		}
	}
	return nil
}

func conditionMessage(ctx *ExecContext, cond ast.Condition, label string) string {
	if cond.Message != nil {
		if v, err := ctx.Interp.evalExpr(ctx, cond.Message); err == nil {
			return v.String()
		}
	}
	return fmt.Sprintf("%s failed: %s", label, cond.Test.String())
}

// evalNewExpression implements `new ClassName(args...)`: field defaults are
// evaluated root-to-leaf across the parent chain, then the most-derived
// class's own constructor (if any) runs bound to the fresh instance.
// Exceptions thrown during either step propagate out of `new` uncaught.
func (i *Interpreter) evalNewExpression(ctx *ExecContext, n *ast.NewExpression) (Value, error) {
	class, ok := i.Classes[n.ClassName]
	if !ok {
		return nil, RaiseError(ctx, corperr.ReferenceError, fmt.Sprintf("unknown class %q", n.ClassName))
	}
	inst := NewInstance(class)
	if err := i.initFields(ctx, inst, class); err != nil {
		return nil, err
	}

	args, err := i.evalArgs(ctx, n.Args)
	if err != nil {
		return nil, err
	}

	if ctor, ok := class.Methods[class.Name]; ok && ctor.IsConstructor {
		fn := &Function{
			Name:           ctor.Name,
			Params:         ctor.Params,
			Body:           ctor.Body.Statements,
			ClosureEnv:     class.DeclEnv,
			IsAsync:        ctor.IsAsync,
			BoundThis:      inst,
			DeclaringClass: class,
		}
		if _, err := i.callFunction(ctx, fn, args, n.Pos()); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// initFields runs field initializers root-to-leaf down the parent chain, so
// a subclass's own field declarations are populated after its ancestors'.
func (i *Interpreter) initFields(ctx *ExecContext, inst *Instance, class *Class) error {
	var chain []*Class
	for c := class; c != nil; c = c.Parent {
		chain = append(chain, c)
	}
	for idx := len(chain) - 1; idx >= 0; idx-- {
		c := chain[idx]
		fieldCtx := ctx.Child(NewEnclosedEnvironment(c.DeclEnv))
		fieldCtx.CurrentInstance = inst
		fieldCtx.CurrentScopeOwner = c.Name
		for _, f := range c.Fields {
			if f.IsStatic {
				continue
			}
			var v Value = NullValue
			if f.Default != nil {
				var err error
				v, err = i.evalExpr(fieldCtx, f.Default)
				if err != nil {
					return err
				}
			}
			inst.Set(f.Name, v)
		}
	}
	return nil
}
