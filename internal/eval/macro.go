package eval

import "slsh/internal/environ"

// ExpandMacro implements §4.C.2: a fresh, non-hygienic scope captures the
// caller's innermost scope, parameters bind without evaluation, the body
// produces an expansion expression, and that expansion is then evaluated
// back in the caller's environment (after the pushed scope is popped).
func ExpandMacro(env *environ.Environment, macro *environ.Lambda, args []*environ.Expression) (*environ.Expression, error) {
	scope := environ.NewScope(env.Innermost())
	env.CurrentScope = append(env.CurrentScope, scope)

	if err := setupArgs(env, scope, macro.Params, args, false); err != nil {
		env.PopScope()
		return nil, err
	}

	expansion, err := Eval(env, macro.Body)
	env.PopScope()
	if err != nil {
		return nil, err
	}

	// The re-evaluation of the expansion counts at the macro call's level,
	// not one deeper, because Eval always increments — decrement first to
	// cancel the increment the Eval below adds, so the
	// eval_level < 3 heuristic in §4.D.1 sees the call site's depth.
	env.State.EvalLevel--
	result, err := Eval(env, expansion)
	env.State.EvalLevel++
	return result, err
}
