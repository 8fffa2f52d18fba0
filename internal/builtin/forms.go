// Package builtin supplies the add_*_builtins populators named in §4.B:
// AddFormBuiltins registers the special forms the evaluator itself does not
// hard-code (quote, def, fn, macro, if, let/let*, recur, do, not) as Func
// values in the root scope; AddShellBuiltins and AddProcessBuiltins (in
// shell.go and process.go) add the shell- and process-facing commands.
package builtin

import (
	"slsh/internal/environ"
	"slsh/internal/eval"
)

// AddFormBuiltins installs every core special form into env's root scope.
func AddFormBuiltins(env *environ.Environment) {
	env.SetGlobal("quote", environ.Func(formQuote))
	env.SetGlobal("quasiquote", environ.Func(formQuasiquote))
	env.SetGlobal("def", environ.Func(formDef))
	env.SetGlobal("set!", environ.Func(formSet))
	env.SetGlobal("fn", environ.Func(formFn))
	env.SetGlobal("macro", environ.Func(formMacro))
	env.SetGlobal("if", environ.Func(formIf))
	env.SetGlobal("let", environ.Func(formLet))
	env.SetGlobal("let*", environ.Func(formLetStar))
	env.SetGlobal("recur", environ.Func(formRecur))
	env.SetGlobal("do", environ.Func(formDo))
	env.SetGlobal("not", environ.Func(formNot))
}

// formQuote returns its single argument unevaluated.
func formQuote(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) != 1 {
		return nil, &eval.BadArityError{Msg: "quote takes exactly 1 argument"}
	}
	return args[0].Clone(), nil
}

// formQuasiquote walks args[0], evaluating any (unquote x) or
// (unquote-splice x) subform it finds and leaving everything else literal.
func formQuasiquote(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) != 1 {
		return nil, &eval.BadArityError{Msg: "quasiquote takes exactly 1 argument"}
	}
	return quasiEval(env, args[0])
}

func quasiEval(env *environ.Environment, e *environ.Expression) (*environ.Expression, error) {
	if e.Kind != environ.KindList || len(e.List) == 0 {
		return e.Clone(), nil
	}
	if head := e.List[0]; head.Kind == environ.KindSymbol && head.Str == "unquote" && len(e.List) == 2 {
		return eval.Eval(env, e.List[1])
	}
	var out []*environ.Expression
	for _, item := range e.List {
		if item.Kind == environ.KindList && len(item.List) == 2 &&
			item.List[0].Kind == environ.KindSymbol && item.List[0].Str == "unquote-splice" {
			v, err := eval.Eval(env, item.List[1])
			if err != nil {
				return nil, err
			}
			if v.Kind == environ.KindList {
				out = append(out, v.List...)
			} else {
				out = append(out, v)
			}
			continue
		}
		v, err := quasiEval(env, item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return environ.List(out), nil
}

// formDef evaluates args[1] and binds it to the symbol args[0] in the
// innermost scope.
func formDef(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) != 2 || args[0].Kind != environ.KindSymbol {
		return nil, &eval.BadParamShapeError{Msg: "def takes a symbol and a value"}
	}
	v, err := eval.Eval(env, args[1])
	if err != nil {
		return nil, err
	}
	env.Innermost().Set(args[0].Str, v)
	return v, nil
}

// formSet rebinds an existing symbol in whichever scope owns it, failing if
// it was never def'd.
func formSet(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) != 2 || args[0].Kind != environ.KindSymbol {
		return nil, &eval.BadParamShapeError{Msg: "set! takes a symbol and a value"}
	}
	owner := env.GetScope(args[0].Str)
	if owner == nil {
		return nil, &eval.SymbolNotFoundError{Name: args[0].Str}
	}
	v, err := eval.Eval(env, args[1])
	if err != nil {
		return nil, err
	}
	owner.Set(args[0].Str, v)
	return v, nil
}

// formFn builds a Lambda closing over the current innermost scope:
// (fn (params...) body).
func formFn(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) != 2 {
		return nil, &eval.BadArityError{Msg: "fn takes a parameter list and a body"}
	}
	return &environ.Expression{
		Kind: environ.KindLambda,
		Lambda: &environ.Lambda{
			Params:  args[0],
			Body:    args[1],
			Capture: env.Innermost(),
		},
	}, nil
}

// formMacro builds a Macro the same shape as fn but tagged for
// ExpandMacro's non-hygienic, unevaluated-argument convention.
func formMacro(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) != 2 {
		return nil, &eval.BadArityError{Msg: "macro takes a parameter list and a body"}
	}
	return &environ.Expression{
		Kind: environ.KindMacro,
		Macro: &environ.Lambda{
			Params:  args[0],
			Body:    args[1],
			Capture: env.Innermost(),
		},
	}, nil
}

// formIf evaluates the condition and exactly one branch: (if cond then
// else?). A missing else branch yields Nil when the condition is false.
func formIf(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, &eval.BadArityError{Msg: "if takes 2 or 3 arguments"}
	}
	cond, err := eval.Eval(env, args[0])
	if err != nil {
		return nil, err
	}
	if cond.IsTruthy() {
		return eval.Eval(env, args[1])
	}
	if len(args) == 3 {
		return eval.Eval(env, args[2])
	}
	return environ.Nil, nil
}

// formLet pushes a fresh scope, binds every (name value) pair evaluated
// against the OUTER scope (parallel binding), evaluates the body, and pops
// the scope on every exit path per invariant 3.
func formLet(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	return letImpl(env, args, false)
}

// formLetStar is let with sequential binding: each value is evaluated
// against the scope as extended by the bindings before it.
func formLetStar(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	return letImpl(env, args, true)
}

func letImpl(env *environ.Environment, args []*environ.Expression, sequential bool) (result *environ.Expression, err error) {
	if len(args) != 2 || args[0].Kind != environ.KindList {
		return nil, &eval.BadParamShapeError{Msg: "let takes a binding list and a body"}
	}
	for _, pair := range args[0].List {
		if pair.Kind != environ.KindList || len(pair.List) != 2 || pair.List[0].Kind != environ.KindSymbol {
			return nil, &eval.BadParamShapeError{Msg: "let binding must be (name value)"}
		}
	}

	if sequential {
		scope := env.PushScope(env.Innermost())
		defer env.PopScope()
		for _, pair := range args[0].List {
			v, verr := eval.Eval(env, pair.List[1])
			if verr != nil {
				return nil, verr
			}
			scope.Set(pair.List[0].Str, v)
		}
		return eval.Eval(env, args[1])
	}

	// Plain let binds in parallel: every value is evaluated against the
	// scope as it stood before any binding took effect.
	values := make([]*environ.Expression, len(args[0].List))
	for i, pair := range args[0].List {
		v, verr := eval.Eval(env, pair.List[1])
		if verr != nil {
			return nil, verr
		}
		values[i] = v
	}
	scope := env.PushScope(env.Innermost())
	defer env.PopScope()
	for i, pair := range args[0].List {
		scope.Set(pair.List[0].Str, values[i])
	}
	return eval.Eval(env, args[1])
}

// formRecur implements the tail-recur protocol of §4.C.1/§9: it evaluates
// every argument, stashes the count in state.RecurNumArgs, and returns them
// as a List for the enclosing call_lambda loop to rebind. Any further eval
// entry before that loop observes it returns RecurMisuseError.
func formRecur(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	evaluated := make([]*environ.Expression, len(args))
	for i, a := range args {
		v, err := eval.Eval(env, a)
		if err != nil {
			return nil, err
		}
		evaluated[i] = v
	}
	n := len(evaluated)
	env.State.RecurNumArgs = &n
	return environ.List(evaluated), nil
}

// formDo evaluates every argument in order and returns the last result (Nil
// for an empty body).
func formDo(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	var result *environ.Expression = environ.Nil
	for _, a := range args {
		v, err := eval.Eval(env, a)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// formNot evaluates its single argument and returns True/Nil per the
// "Nil is the only false value" convention.
func formNot(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) != 1 {
		return nil, &eval.BadArityError{Msg: "not takes exactly 1 argument"}
	}
	v, err := eval.Eval(env, args[0])
	if err != nil {
		return nil, err
	}
	if v.IsTruthy() {
		return environ.Nil, nil
	}
	return environ.True, nil
}
