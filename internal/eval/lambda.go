package eval

import "slsh/internal/environ"

// CallLambda invokes a lambda against unevaluated actual arguments,
// implementing the tail-recur loop of §4.C.1. The scope pushed here is the
// only iteration construct in the language that does not grow the scope
// stack — a `recur` form rebinds in place and the loop below re-enters the
// body without pushing again.
func CallLambda(env *environ.Environment, lambda *environ.Lambda, args []*environ.Expression) (result *environ.Expression, err error) {
	scope := environ.NewScope(lambda.Capture)
	env.CurrentScope = append(env.CurrentScope, scope)
	savedLoose := env.LooseSymbols
	env.LooseSymbols = false
	defer func() {
		env.LooseSymbols = savedLoose
		env.PopScope()
	}()

	if err := setupArgs(env, scope, lambda.Params, args, true); err != nil {
		return nil, err
	}

	names, rest, hasRest, err := paramNames(lambda.Params)
	if err != nil {
		return nil, err
	}

	for {
		result, err = Eval(env, lambda.Body)
		if env.State.RecurNumArgs == nil {
			return result, err
		}
		n := *env.State.RecurNumArgs
		env.State.RecurNumArgs = nil
		if err != nil {
			return nil, err
		}
		if result.Kind != environ.KindList {
			return nil, &RecurArityMismatchError{Expected: len(names), Got: 0}
		}
		newArgs := result.List
		want := len(names)
		if hasRest {
			if len(newArgs) < want {
				return nil, &RecurArityMismatchError{Expected: want, Got: len(newArgs)}
			}
		} else if len(newArgs) != want {
			return nil, &RecurArityMismatchError{Expected: want, Got: len(newArgs)}
		}
		if err := bindArgs(scope, names, rest, hasRest, newArgs); err != nil {
			return nil, err
		}
	}
}
