// Package eval implements the recursive expression evaluator together with
// the external-command dispatcher and process manager it hands unbound
// forms to. §4 describes these as separate components (C and D) but they
// are mutually recursive — evaluating a pipeline's arguments re-enters
// Eval, and Eval's fallback for an unbound symbol calls into the process
// manager — so they live in one Go package to avoid an import cycle.
package eval

import (
	"fmt"

	"go.uber.org/zap"

	"slsh/internal/environ"
)

// Logger is the structured sink used for warnings that are also ever
// printed to stderr per §7; it defaults to a no-op logger so packages that
// never call SetLogger (tests, mainly) still work.
var Logger = zap.NewNop()

// SetLogger installs the shared logger built by internal/logging.
func SetLogger(l *zap.Logger) {
	if l != nil {
		Logger = l
	}
}

// Eval is the public entry point: it evaluates expression in environment
// with no forced stdin plumbing (data_in == nil).
func Eval(env *environ.Environment, expression *environ.Expression) (*environ.Expression, error) {
	return pipeEval(env, expression, nil)
}

// pipeEval is the §4.C entry point used internally when a pipeline stage
// needs to hand the next stage's realization down as stdin. It owns the
// eval_level increment/decrement required by invariant 5.
func pipeEval(env *environ.Environment, expression *environ.Expression, dataIn *environ.Expression) (*environ.Expression, error) {
	env.State.EvalLevel++
	result, err := internalEval(env, expression, dataIn)
	env.State.EvalLevel--
	return result, err
}

// internalEval dispatches by the variant of expression (§4.C).
func internalEval(env *environ.Environment, expression *environ.Expression, dataIn *environ.Expression) (*environ.Expression, error) {
	if env.State.RecurNumArgs != nil {
		env.State.RecurNumArgs = nil
		return nil, &RecurMisuseError{}
	}

	switch expression.Kind {
	case environ.KindList:
		return evalList(env, expression, dataIn)
	case environ.KindSymbol:
		return evalSymbol(env, expression)
	case environ.KindFunc:
		return environ.Nil, nil
	default:
		return expression.Clone(), nil
	}
}

func evalSymbol(env *environ.Environment, sym *environ.Expression) (*environ.Expression, error) {
	s := sym.Str
	if len(s) > 0 && s[0] == '$' {
		v, _ := env.Get(s)
		return v, nil
	}
	if v, ok := env.Get(s); ok {
		if v.Kind == environ.KindFunc {
			return environ.String(s), nil
		}
		return v.Clone(), nil
	}
	if env.LooseSymbols {
		return environ.String(s), nil
	}
	return nil, &SymbolNotFoundError{Name: s}
}

func evalList(env *environ.Environment, list *environ.Expression, dataIn *environ.Expression) (*environ.Expression, error) {
	if len(list.List) == 0 {
		return environ.Nil, nil
	}
	head, tail := list.List[0], list.List[1:]

	switch head.Kind {
	case environ.KindSymbol:
		return evalCommand(env, head.Str, tail, dataIn)
	case environ.KindList:
		resolved, err := Eval(env, head)
		if err != nil {
			return nil, err
		}
		return invoke(env, resolved, tail, dataIn)
	case environ.KindLambda, environ.KindMacro, environ.KindFunc:
		return invoke(env, head, tail, dataIn)
	default:
		return nil, &BadArgTypeError{Msg: fmt.Sprintf("list head %s is not callable", head.Kind)}
	}
}

// invoke dispatches an already-resolved callable value (used when the head
// of a form was itself a list or was already a Lambda/Macro/Func literal).
func invoke(env *environ.Environment, callable *environ.Expression, tail []*environ.Expression, dataIn *environ.Expression) (*environ.Expression, error) {
	switch callable.Kind {
	case environ.KindFunc:
		return callable.Func(env, tail)
	case environ.KindLambda:
		return CallLambda(env, callable.Lambda, tail)
	case environ.KindMacro:
		return ExpandMacro(env, callable.Macro, tail)
	default:
		return nil, &BadArgTypeError{Msg: "value is not a lambda, macro, or func"}
	}
}

// evalCommand handles the case where the form's head is a bare symbol:
// it consults form_type, looks the symbol up, and falls back to the
// process manager for unbound commands (§4.C).
func evalCommand(env *environ.Environment, command string, tail []*environ.Expression, dataIn *environ.Expression) (*environ.Expression, error) {
	if command == "" {
		return environ.Nil, nil
	}

	lookUp := env.FormType == environ.FormAny || env.FormType == environ.FormOnly
	if lookUp {
		if exp, ok := env.Get(command); ok {
			switch exp.Kind {
			case environ.KindFunc:
				return exp.Func(env, tail)
			case environ.KindLambda:
				return CallLambda(env, exp.Lambda, tail)
			case environ.KindMacro:
				return ExpandMacro(env, exp.Macro, tail)
			default:
				return Eval(env, exp)
			}
		}
	}

	if env.FormType == environ.FormOnly {
		return nil, &FormNotFoundError{Name: command}
	}

	switch command {
	case "nil":
		return environ.Nil, nil
	case "|", "pipe":
		return DoPipe(env, tail, dataIn)
	default:
		return DoCommand(env, command, tail, dataIn)
	}
}
