package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slsh/internal/environ"
)

func TestExpandTildeBare(t *testing.T) {
	t.Setenv("HOME", "/home/slsh")
	assert.Equal(t, "/home/slsh/", expandTilde("~"))
}

func TestExpandTildePrefixed(t *testing.T) {
	t.Setenv("HOME", "/home/slsh")
	assert.Equal(t, "/home/slsh/bin", expandTilde("~/bin"))
}

func TestExpandTildeLeavesOtherStringsAlone(t *testing.T) {
	t.Setenv("HOME", "/home/slsh")
	assert.Equal(t, "not-a-tilde", expandTilde("not-a-tilde"))
}

func TestPrepStringArgNoMetacharactersIsNoOp(t *testing.T) {
	out, err := prepStringArg("plain-arg", nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "plain-arg", out[0].Str)
}

func TestPrepStringArgGlobExpandsMatches(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	out, err := prepStringArg(filepath.Join(dir, "*.txt"), nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestPrepStringArgGlobNoMatchKeepsLiteral(t *testing.T) {
	pattern := filepath.Join(t.TempDir(), "*.nonexistent")
	out, err := prepStringArg(pattern, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, pattern, out[0].Str)
}

func TestExpandArgsRestoresLooseSymbols(t *testing.T) {
	env := environ.New()
	env.LooseSymbols = false
	_, err := expandArgs(env, []*environ.Expression{environ.Symbol("bare")})
	require.NoError(t, err)
	assert.False(t, env.LooseSymbols)
}

func TestExpandArgsPassesNonStringValuesThrough(t *testing.T) {
	env := environ.New()
	out, err := expandArgs(env, []*environ.Expression{environ.Int(42)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(42), out[0].Int)
}
