package eval

import (
	"os"
	"os/exec"

	"go.uber.org/zap"

	"slsh/internal/environ"
)

// foreground reports whether the current form, if it spawns a child,
// should own the controlling terminal (§4.D.1 step 1).
func foreground(env *environ.Environment) bool {
	return !env.InPipe && !env.RunBackground && !env.State.IsSpawn
}

// zapErr wraps a Go error as a zap.Field the way every other warning log
// line in this package does.
func zapErr(err error) zap.Field { return zap.Error(err) }

// pendingStdout holds the read end of a stdout pipe a still-running child
// was given, keyed by pid, until the next pipeline stage's DoCommand call
// claims it as its own stdin (§4.D.2 "steal stdout of a Running process").
var pendingStdout = map[int]*os.File{}

// resolveRedirect opens the file (or /dev/null, or nothing) a Redirect
// names, per the policy table in §4.D.1 step 3. When out and err target
// the identical append/overwrite path, the caller passes the already-open
// file back in via shared so only one handle is opened.
func resolveRedirect(env *environ.Environment, r *environ.Redirect, shared *os.File) (*os.File, error) {
	if r == nil {
		if env.State.EvalLevel < 3 && !env.InPipe {
			return nil, nil // nil, nil means "inherit" to the caller
		}
		return nil, errPipeRequested
	}
	switch r.State {
	case environ.IOFileAppend:
		if shared != nil {
			return shared, nil
		}
		f, err := os.OpenFile(r.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, &RedirIOError{Cause: err}
		}
		return f, nil
	case environ.IOFileOverwrite:
		if shared != nil {
			return shared, nil
		}
		f, err := os.Create(r.Path)
		if err != nil {
			return nil, &RedirIOError{Cause: err}
		}
		return f, nil
	case environ.IONull:
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, &RedirIOError{Cause: err}
		}
		return f, nil
	case environ.IOInherit:
		return nil, nil
	case environ.IOPipe:
		return nil, errPipeRequested
	default:
		if env.State.EvalLevel < 3 && !env.InPipe {
			return nil, nil
		}
		return nil, errPipeRequested
	}
}

// sentinel used internally by resolveRedirect/getOutput to signal "give me
// a genuine os.Pipe", distinguished from "inherit" (nil, nil).
var errPipeRequested = &RedirIOError{Cause: errPipeMarker{}}

type errPipeMarker struct{}

func (errPipeMarker) Error() string { return "pipe requested" }

func isPipeRequest(err error) bool {
	re, ok := err.(*RedirIOError)
	if !ok {
		return false
	}
	_, ok = re.Cause.(errPipeMarker)
	return ok
}

// getOutput resolves both stdout and stderr redirects, sharing a single
// opened handle when both target the same append/overwrite path
// (§8 "redirect-append and redirect-stderr to the same path share a
// single fd").
func getOutput(env *environ.Environment) (stdout, stderr *os.File, stdoutPipe, stderrPipe bool, cleanup func(), err error) {
	out, oerr := resolveRedirect(env, env.State.StdoutStatus, nil)
	if oerr != nil {
		if !isPipeRequest(oerr) {
			return nil, nil, false, false, nil, oerr
		}
		stdoutPipe = true
	} else {
		stdout = out
	}

	var reusable *os.File
	if env.State.StderrStatus != nil && env.State.StdoutStatus != nil &&
		env.State.StderrStatus.State == env.State.StdoutStatus.State &&
		env.State.StderrStatus.Path != "" &&
		env.State.StderrStatus.Path == env.State.StdoutStatus.Path {
		reusable = stdout
	}
	errFile, eerr := resolveRedirect(env, env.State.StderrStatus, reusable)
	if eerr != nil {
		if !isPipeRequest(eerr) {
			return nil, nil, false, false, nil, eerr
		}
		stderrPipe = true
	} else {
		stderr = errFile
	}

	cleanup = func() {
		if stdout != nil {
			stdout.Close()
		}
		if stderr != nil && stderr != stdout {
			stderr.Close()
		}
	}
	return stdout, stderr, stdoutPipe, stderrPipe, cleanup, nil
}

// DoCommand implements §4.D.1: it resolves stdin from dataIn, resolves
// stdout/stderr from the redirection stack, expands arguments, and spawns
// the child.
func DoCommand(env *environ.Environment, command string, parts []*environ.Expression, dataIn *environ.Expression) (*environ.Expression, error) {
	fg := foreground(env)

	var stdinFile *os.File
	var stdinData string
	var haveStdinData bool

	if dataIn != nil {
		switch dataIn.Kind {
		case environ.KindNil:
			// inherit
		case environ.KindProcess:
			if dataIn.Proc.Status == environ.ProcOver {
				return nil, &BadArgTypeError{Msg: "invalid expression state before command (process is already done)"}
			}
			if r, ok := pendingStdout[dataIn.Proc.Pid]; ok {
				stdinFile = r
				delete(pendingStdout, dataIn.Proc.Pid)
			}
		case environ.KindFunc, environ.KindList:
			return nil, &BadArgTypeError{Msg: "invalid expression state before command (form)"}
		default:
			stdinData = dataIn.MakeString()
			haveStdinData = true
		}
	}

	stdout, stderr, stdoutPipe, stderrPipe, cleanup, err := getOutput(env)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	args, err := expandArgs(env, parts)
	if err != nil {
		return nil, err
	}
	strArgs := make([]string, len(args))
	for i, a := range args {
		strArgs[i] = a.MakeString()
	}

	cmd := exec.Command(command, strArgs...)
	applyProcessGroup(cmd, env, fg)

	switch {
	case stdinFile != nil:
		cmd.Stdin = stdinFile
	case haveStdinData:
		// wired below via a dedicated pipe
	case fg:
		cmd.Stdin = os.Stdin
	default:
		cmd.Stdin = nil
	}

	var stdinPipe *os.File
	if haveStdinData {
		r, w, perr := os.Pipe()
		if perr != nil {
			return nil, &RedirIOError{Cause: perr}
		}
		cmd.Stdin = r
		stdinPipe = w
	}

	var stdoutWrite, stdoutRead *os.File
	switch {
	case stdout != nil:
		cmd.Stdout = stdout
	case stdoutPipe:
		r, w, perr := os.Pipe()
		if perr != nil {
			return nil, &RedirIOError{Cause: perr}
		}
		cmd.Stdout = w
		stdoutWrite, stdoutRead = w, r
	case fg:
		cmd.Stdout = os.Stdout
	default:
		cmd.Stdout = nil
	}

	switch {
	case stderr != nil:
		cmd.Stderr = stderr
	case stderrPipe:
		cmd.Stderr = nil
	case fg:
		cmd.Stderr = os.Stderr
	default:
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		Logger.Warn("spawn failed", zapErr(err))
		printSpawnFailure(command, strArgs, err)
		if stdinPipe != nil {
			stdinPipe.Close()
		}
		if stdoutRead != nil {
			stdoutRead.Close()
		}
		if stdoutWrite != nil {
			stdoutWrite.Close()
		}
		return environ.Nil, nil
	}

	if stdinFile != nil && stdinFile != os.Stdin {
		stdinFile.Close()
	}
	// The parent's copy of the write end must close so the reader on the
	// other side of stdoutRead sees EOF once the child exits (invariant 6).
	if stdoutWrite != nil {
		stdoutWrite.Close()
	}
	settlePgid(cmd, env, fg)

	if stdinPipe != nil {
		go func() {
			stdinPipe.WriteString(stdinData)
			stdinPipe.Close()
		}()
	}

	pid := cmd.Process.Pid
	if stdoutRead != nil {
		pendingStdout[pid] = stdoutRead
	}
	registerRunning(pid, cmd)

	if fg && !env.InPipe {
		handTerminalTo(env, pid)
		code, werr := waitPid(env, pid)
		reclaimTerminal(env)
		delete(pendingStdout, pid)
		if werr != nil {
			return environ.Nil, nil
		}
		return environ.Proc(&environ.ProcState{Status: environ.ProcOver, Pid: pid, Code: code}), nil
	}

	env.AddProcess(pid)
	return environ.Proc(&environ.ProcState{Status: environ.ProcRunning, Pid: pid}), nil
}
