package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slsh/internal/environ"
)

// TestExpandMacroBindsArgsUnevaluatedThenEvaluatesExpansion exercises the
// two-step contract: the macro body sees its argument as raw, unevaluated
// code (here, the argument IS the expansion, so the body is just the
// parameter symbol), and that expansion is then evaluated in the caller's
// environment, not the macro's capture scope.
func TestExpandMacroBindsArgsUnevaluatedThenEvaluatesExpansion(t *testing.T) {
	env := environ.New()
	out := filepath.Join(t.TempDir(), "macro-out.txt")
	env.State.StdoutStatus = &environ.Redirect{State: environ.IOFileOverwrite, Path: out}

	macro := &environ.Lambda{
		Params: environ.List([]*environ.Expression{environ.Symbol("form")}),
		Body:   environ.Symbol("form"),
	}
	rawArg := call("echo", environ.String("from-macro"))

	result, err := ExpandMacro(env, macro, []*environ.Expression{rawArg})
	require.NoError(t, err)
	require.Equal(t, environ.KindProcess, result.Kind)
	assert.Equal(t, environ.ProcOver, result.Proc.Status)

	data, rerr := os.ReadFile(out)
	require.NoError(t, rerr)
	assert.Equal(t, "from-macro\n", string(data))
}

func TestExpandMacroPopsScopeAndRestoresEvalLevelOnError(t *testing.T) {
	env := environ.New()
	before := env.State.EvalLevel
	beforeDepth := len(env.CurrentScope)

	macro := &environ.Lambda{
		Params: environ.List([]*environ.Expression{environ.Symbol("x"), environ.Symbol("y")}),
		Body:   environ.Symbol("x"),
	}

	_, err := ExpandMacro(env, macro, []*environ.Expression{environ.String("only-one")})
	require.Error(t, err)
	assert.IsType(t, &BadArityError{}, err)
	assert.Equal(t, beforeDepth, len(env.CurrentScope))
	assert.Equal(t, before, env.State.EvalLevel)
}

func TestExpandMacroDoesNotLeakBindingIntoCallerScope(t *testing.T) {
	env := environ.New()
	macro := &environ.Lambda{
		Params: environ.List([]*environ.Expression{environ.Symbol("hidden")}),
		Body:   environ.Symbol("hidden"),
	}

	_, err := ExpandMacro(env, macro, []*environ.Expression{environ.Int(42)})
	require.NoError(t, err)

	_, ok := env.Get("hidden")
	assert.False(t, ok)
}
