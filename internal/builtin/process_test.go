package builtin

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slsh/internal/environ"
	"slsh/internal/eval"
)

func newProcessEnv() *environ.Environment {
	env := environ.New()
	AddProcessBuiltins(env)
	return env
}

func TestPsReturnsNonEmptyListOnALiveSystem(t *testing.T) {
	env := newProcessEnv()
	result, err := eval.Eval(env, environ.List([]*environ.Expression{environ.Symbol("ps")}))
	require.NoError(t, err)
	assert.Equal(t, environ.KindList, result.Kind)
	assert.NotEmpty(t, result.List, "a live system always has at least this test process running")
}

func TestKillWithoutArgsIsBadArity(t *testing.T) {
	env := newProcessEnv()
	_, err := eval.Eval(env, environ.List([]*environ.Expression{environ.Symbol("kill")}))
	require.Error(t, err)
	assert.IsType(t, &eval.BadArityError{}, err)
}

func TestKillNonNumericPidIsBadArgType(t *testing.T) {
	env := newProcessEnv()
	form := environ.List([]*environ.Expression{environ.Symbol("kill"), environ.String("not-a-pid")})
	_, err := eval.Eval(env, form)
	require.Error(t, err)
	assert.IsType(t, &eval.BadArgTypeError{}, err)
}

func TestKillSignalZeroProbesOwnProcess(t *testing.T) {
	env := newProcessEnv()
	// signal 0 performs no actual delivery, just existence/permission checks,
	// so kill-ing our own pid with it is safe inside a test.
	form := environ.List([]*environ.Expression{
		environ.Symbol("kill"),
		environ.Int(0),
		environ.Int(int64(os.Getpid())),
	})
	_, err := eval.Eval(env, form)
	require.NoError(t, err)
}
