package eval

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slsh/internal/environ"
)

func spawnSleeper(t *testing.T, env *environ.Environment) int {
	t.Helper()
	cmd := exec.Command("sleep", "0.2")
	require.NoError(t, cmd.Start())
	registerRunning(cmd.Process.Pid, cmd)
	env.AddProcess(cmd.Process.Pid)
	return cmd.Process.Pid
}

func TestTryWaitPidNonBlockingWhileRunning(t *testing.T) {
	env := environ.New()
	pid := spawnSleeper(t, env)

	done, status := TryWaitPid(env, pid)
	assert.False(t, done)
	assert.Nil(t, status)

	// drain
	for {
		d, _ := TryWaitPid(env, pid)
		if d {
			break
		}
	}
}

func TestTryWaitPidIsIdempotentAfterReap(t *testing.T) {
	env := environ.New()
	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	registerRunning(pid, cmd)
	env.AddProcess(pid)

	var done bool
	for !done {
		done, _ = TryWaitPid(env, pid)
	}
	_, stillTracked := env.Procs[pid]
	assert.False(t, stillTracked)

	// A second non-blocking wait on an already-reaped pid must report done
	// rather than blocking or panicking (ReapProcs calls this every prompt).
	done2, _ := TryWaitPid(env, pid)
	assert.True(t, done2)
}

func TestReapProcsClearsExitedChildren(t *testing.T) {
	env := environ.New()
	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	registerRunning(pid, cmd)
	env.AddProcess(pid)

	cmd.Wait() // let it actually exit before ReapProcs' WNOHANG wait

	ReapProcs(env)
	_, stillTracked := env.Procs[pid]
	assert.False(t, stillTracked)
}

func TestForwardInterruptOnGoneProcessDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { ForwardInterrupt(999999) })
}
