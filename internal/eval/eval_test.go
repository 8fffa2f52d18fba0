package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slsh/internal/environ"
)

func TestEvalLevelReturnsToZeroAtTopLevel(t *testing.T) {
	env := environ.New()
	_, err := Eval(env, environ.Int(1))
	require.NoError(t, err)
	assert.Equal(t, 0, env.State.EvalLevel)
}

func TestEvalSymbolNotFoundByDefault(t *testing.T) {
	env := environ.New()
	_, err := Eval(env, environ.Symbol("undefined-thing"))
	require.Error(t, err)
	assert.IsType(t, &SymbolNotFoundError{}, err)
}

func TestEvalSymbolLooseModeReturnsLiteral(t *testing.T) {
	env := environ.New()
	env.LooseSymbols = true
	v, err := Eval(env, environ.Symbol("bare-word"))
	require.NoError(t, err)
	assert.Equal(t, "bare-word", v.MakeString())
}

func TestEvalDollarSymbolReadsOSEnv(t *testing.T) {
	t.Setenv("SLSH_EVAL_TEST", "value")
	env := environ.New()
	v, err := Eval(env, environ.Symbol("$SLSH_EVAL_TEST"))
	require.NoError(t, err)
	assert.Equal(t, "value", v.Str)
}

func TestEvalEmptyListIsNil(t *testing.T) {
	env := environ.New()
	v, err := Eval(env, environ.List(nil))
	require.NoError(t, err)
	assert.Equal(t, environ.KindNil, v.Kind)
}

func TestRecurOutsideCallLambdaIsMisuse(t *testing.T) {
	env := environ.New()
	env.SetGlobal("recur", environ.Func(func(e *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
		n := len(args)
		e.State.RecurNumArgs = &n
		return environ.List(args), nil
	}))
	_, err := Eval(env, environ.List([]*environ.Expression{environ.Symbol("recur")}))
	require.NoError(t, err)

	// A second, unrelated eval now observes the stale RecurNumArgs flag and
	// must refuse rather than silently treating it as a new recur.
	_, err = Eval(env, environ.Int(1))
	require.Error(t, err)
	assert.IsType(t, &RecurMisuseError{}, err)
}

func TestCallLambdaBasicInvocation(t *testing.T) {
	env := environ.New()
	lambda := &environ.Lambda{
		Params:  environ.List([]*environ.Expression{environ.Symbol("x")}),
		Body:    environ.Symbol("x"),
		Capture: env.Innermost(),
	}
	depth := len(env.CurrentScope)
	result, err := CallLambda(env, lambda, []*environ.Expression{environ.Int(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Int)
	assert.Equal(t, depth, len(env.CurrentScope))
}

func TestCallLambdaRecurLoopsWithoutGrowingScopeStack(t *testing.T) {
	env := environ.New()
	env.SetGlobal("recur", environ.Func(func(e *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
		evaluated := make([]*environ.Expression, len(args))
		for i, a := range args {
			v, err := Eval(e, a)
			if err != nil {
				return nil, err
			}
			evaluated[i] = v
		}
		n := len(evaluated)
		e.State.RecurNumArgs = &n
		return environ.List(evaluated), nil
	}))
	env.SetGlobal("zero?", environ.Func(func(e *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
		v, err := Eval(e, args[0])
		if err != nil {
			return nil, err
		}
		if v.Int == 0 {
			return environ.True, nil
		}
		return environ.Nil, nil
	}))
	env.SetGlobal("dec", environ.Func(func(e *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
		v, err := Eval(e, args[0])
		if err != nil {
			return nil, err
		}
		return environ.Int(v.Int - 1), nil
	}))
	env.SetGlobal("if", environ.Func(func(e *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
		cond, err := Eval(e, args[0])
		if err != nil {
			return nil, err
		}
		if cond.IsTruthy() {
			return Eval(e, args[1])
		}
		return Eval(e, args[2])
	}))

	// (fn (n) (if (zero? n) n (recur (dec n)))) called with 5 must count
	// down to 0 through the CallLambda loop, never pushing a new scope.
	body := environ.List([]*environ.Expression{
		environ.Symbol("if"),
		environ.List([]*environ.Expression{environ.Symbol("zero?"), environ.Symbol("n")}),
		environ.Symbol("n"),
		environ.List([]*environ.Expression{environ.Symbol("recur"),
			environ.List([]*environ.Expression{environ.Symbol("dec"), environ.Symbol("n")})}),
	})
	lambda := &environ.Lambda{
		Params:  environ.List([]*environ.Expression{environ.Symbol("n")}),
		Body:    body,
		Capture: env.Innermost(),
	}

	depth := len(env.CurrentScope)
	result, err := CallLambda(env, lambda, []*environ.Expression{environ.Int(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Int)
	assert.Equal(t, depth, len(env.CurrentScope))
}

func TestCallLambdaRecurArityMismatch(t *testing.T) {
	env := environ.New()
	env.SetGlobal("recur", environ.Func(func(e *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
		n := len(args) + 1 // lie about the count to trigger the mismatch
		e.State.RecurNumArgs = &n
		return environ.List(append(args, environ.Nil)), nil
	}))
	lambda := &environ.Lambda{
		Params:  environ.List([]*environ.Expression{environ.Symbol("x")}),
		Body:    environ.List([]*environ.Expression{environ.Symbol("recur"), environ.Symbol("x")}),
		Capture: env.Innermost(),
	}
	_, err := CallLambda(env, lambda, []*environ.Expression{environ.Int(1)})
	require.Error(t, err)
	assert.IsType(t, &RecurArityMismatchError{}, err)
}
