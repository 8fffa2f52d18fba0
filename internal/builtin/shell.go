package builtin

import (
	"fmt"
	"os"
	"syscall"

	"slsh/internal/environ"
	"slsh/internal/eval"
)

// continueStopped sends SIGCONT to pid and drops it from StoppedProcs —
// shared by bg and fg, which differ only in whether they reclaim the
// terminal afterward.
func continueStopped(env *environ.Environment, pid int) error {
	for i, p := range env.StoppedProcs {
		if p == pid {
			env.StoppedProcs = append(env.StoppedProcs[:i], env.StoppedProcs[i+1:]...)
			break
		}
	}
	if err := syscall.Kill(pid, syscall.SIGCONT); err != nil {
		return fmt.Errorf("slsh: no such job: %d", pid)
	}
	return nil
}

// AddShellBuiltins installs cd, pwd, exit, bg, jobs, and fg.
func AddShellBuiltins(env *environ.Environment) {
	env.SetGlobal("cd", environ.Func(shellCd))
	env.SetGlobal("pwd", environ.Func(shellPwd))
	env.SetGlobal("exit", environ.Func(shellExit))
	env.SetGlobal("bg", environ.Func(shellBg))
	env.SetGlobal("jobs", environ.Func(shellJobs))
	env.SetGlobal("fg", environ.Func(shellFg))
}

func shellCd(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	var dir string
	switch len(args) {
	case 0:
		dir = os.Getenv("HOME")
	case 1:
		v, err := eval.Eval(env, args[0])
		if err != nil {
			return nil, err
		}
		dir = v.MakeString()
		if dir == "~" {
			dir = os.Getenv("HOME")
		}
	default:
		return nil, &eval.BadArityError{Msg: "cd takes 0 or 1 arguments"}
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("slsh: cd: %w", err)
	}
	return environ.Nil, nil
}

func shellPwd(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("slsh: pwd: %w", err)
	}
	return environ.String(dir), nil
}

// shellExit is a marker builtin: the shell loop checks for it by name
// before dispatch (so it can break out of the Readline loop cleanly rather
// than this builtin calling os.Exit and skipping REPL cleanup).
func shellExit(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	return environ.Nil, nil
}

// shellBg resumes the most recently stopped job (or a given pid) in the
// background by sending SIGCONT, without reclaiming the terminal.
func shellBg(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	pid, err := resolveJobArg(env, args)
	if err != nil {
		return nil, err
	}
	if err := continueStopped(env, pid); err != nil {
		return nil, err
	}
	env.AddProcess(pid)
	return environ.Proc(&environ.ProcState{Status: environ.ProcRunning, Pid: pid}), nil
}

// shellFg resumes the most recently stopped job (or a given pid),
// reclaiming the terminal and waiting on it like any other foreground
// invocation.
func shellFg(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	pid, err := resolveJobArg(env, args)
	if err != nil {
		return nil, err
	}
	if err := continueStopped(env, pid); err != nil {
		return nil, err
	}
	return eval.ForegroundExisting(env, pid)
}

func shellJobs(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	var items []*environ.Expression
	for _, pid := range env.StoppedProcs {
		items = append(items, environ.Proc(&environ.ProcState{Status: environ.ProcRunning, Pid: pid}))
	}
	return environ.List(items), nil
}

func resolveJobArg(env *environ.Environment, args []*environ.Expression) (int, error) {
	if len(args) == 0 {
		if len(env.StoppedProcs) == 0 {
			return 0, fmt.Errorf("slsh: no stopped jobs")
		}
		return env.StoppedProcs[len(env.StoppedProcs)-1], nil
	}
	v, err := eval.Eval(env, args[0])
	if err != nil {
		return 0, err
	}
	if v.Kind != environ.KindProcess {
		return 0, &eval.BadArgTypeError{Msg: "bg/fg expects a process"}
	}
	return v.Proc.Pid, nil
}
