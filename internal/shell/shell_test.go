package shell

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeRunCommandSplitsOnSpaces(t *testing.T) {
	assert.Equal(t, []string{"ls", "-la", "/tmp"}, tokenizeRunCommand("ls -la /tmp"))
}

func TestTokenizeRunCommandQuotedRunsVerbatim(t *testing.T) {
	got := tokenizeRunCommand(`echo "hello world" there`)
	assert.Equal(t, []string{"echo", "hello world", "there"}, got)
}

func TestTokenizeRunCommandSingleQuotes(t *testing.T) {
	got := tokenizeRunCommand(`grep 'a b' file.txt`)
	assert.Equal(t, []string{"grep", "a b", "file.txt"}, got)
}

func TestTokenizeRunCommandEscapedQuoteInsideQuotes(t *testing.T) {
	got := tokenizeRunCommand(`echo "say \"hi\""`)
	assert.Equal(t, []string{"echo", `say "hi"`}, got)
}

func TestTokenizeRunCommandEmptyStringYieldsNoTokens(t *testing.T) {
	assert.Empty(t, tokenizeRunCommand("   "))
}

func TestIsTerminalFalseForARegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "slsh-test")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	assert.False(t, isTerminal(f))
}

func TestOpenFDCountIsPositive(t *testing.T) {
	// Every process has at least stdin/stdout/stderr open.
	assert.GreaterOrEqual(t, openFDCount(), 1)
}

// TestRunScriptBindsArgsSymbol runs a real script file through RunScript
// and checks that the trailing argv comes back readable under the bare
// symbol `args`, not some decorated name, by having the script echo it
// straight to stdout.
func TestRunScriptBindsArgsSymbol(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	script := filepath.Join(t.TempDir(), "script.lsh")
	require.NoError(t, os.WriteFile(script, []byte("(echo args)\n"), 0644))

	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	code := RunScript(script, []string{"hello", "world"})

	w.Close()
	os.Stdout = origStdout
	out, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, 0, code)
	assert.Equal(t, "(hello world)\n", string(out))
}
