package eval

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"slsh/internal/environ"
)

// runningCmds tracks the *os/exec.Cmd for every pid the process manager
// knows about, keyed the same as environ.Environment.Procs. It lives here
// (not in environ) because only the process manager needs the OS-level
// handle; environ only needs the pid for bookkeeping and builtins like
// `jobs`/`ps`.
var runningCmds = map[int]*exec.Cmd{}

func registerRunning(pid int, cmd *exec.Cmd) {
	runningCmds[pid] = cmd
}

// TryWaitPid is a single non-blocking WNOHANG wait, matching §4.D.3. It
// reports done=true once the pid is no longer waitable (exited or gone),
// and leaves it in the table (also appending it to StoppedProcs) when
// merely stopped.
func TryWaitPid(env *environ.Environment, pid int) (done bool, status *int) {
	var ws syscall.WaitStatus
	wpid, err := syscall.Wait4(pid, &ws, syscall.WUNTRACED|syscall.WCONTINUED|syscall.WNOHANG, nil)
	if err != nil {
		env.RemoveProcess(pid)
		delete(runningCmds, pid)
		return true, nil
	}
	if wpid == 0 {
		return false, nil
	}
	switch {
	case ws.Exited():
		code := ws.ExitStatus()
		env.RemoveProcess(pid)
		delete(runningCmds, pid)
		return true, &code
	case ws.Signaled():
		code := 128 + int(ws.Signal())
		env.RemoveProcess(pid)
		delete(runningCmds, pid)
		return true, &code
	case ws.Stopped():
		env.StoppedProcs = append(env.StoppedProcs, pid)
		return true, nil
	default: // continued
		return false, nil
	}
}

// waitPid spins on TryWaitPid with 100ms sleeps until the child is no
// longer running, per §4.D.3. The caller (DoCommand, DoPipe) is responsible
// for terminal hand-off and reclaim around this call (invariant 7).
func waitPid(env *environ.Environment, pid int) (int, error) {
	for {
		done, status := TryWaitPid(env, pid)
		if done {
			if status != nil {
				env.SetLastStatus(*status)
				return *status, nil
			}
			return 0, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// ForwardInterrupt relays SIGINT to pid, done directly by pid since the
// process manager's bookkeeping is pid-keyed rather than *exec.Cmd-keyed.
func ForwardInterrupt(pid int) {
	_ = syscall.Kill(pid, syscall.SIGINT)
}

// ForegroundExisting claims the terminal for an already-running (or just
// SIGCONT'd) pid and waits on it, for `fg` bringing a background or stopped
// job back to the foreground (§4.D invariant 7).
func ForegroundExisting(env *environ.Environment, pid int) (*environ.Expression, error) {
	handTerminalTo(env, pid)
	code, werr := waitPid(env, pid)
	reclaimTerminal(env)
	if werr != nil {
		return environ.Nil, nil
	}
	return environ.Proc(&environ.ProcState{Status: environ.ProcOver, Pid: pid, Code: code}), nil
}

// ReapProcs non-blockingly reaps every pid in env.Procs. It is called
// before every REPL prompt (§4.D.3).
func ReapProcs(env *environ.Environment) {
	pids := make([]int, 0, len(env.Procs))
	for pid := range env.Procs {
		pids = append(pids, pid)
	}
	for _, pid := range pids {
		done, status := TryWaitPid(env, pid)
		if done && status != nil {
			env.SetLastStatus(*status)
		}
	}
}

func printSpawnFailure(command string, args []string, err error) {
	fmt.Fprintf(os.Stderr, "Failed to execute [%s %s]: %v\n", command, strings.Join(args, " "), err)
}
