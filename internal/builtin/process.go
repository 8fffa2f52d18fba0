package builtin

import (
	"fmt"
	"strconv"
	"syscall"

	ps "github.com/mitchellh/go-ps"

	"slsh/internal/environ"
	"slsh/internal/eval"
)

// AddProcessBuiltins installs ps and kill.
func AddProcessBuiltins(env *environ.Environment) {
	env.SetGlobal("ps", environ.Func(processPs))
	env.SetGlobal("kill", environ.Func(processKill))
}

// processPs lists running processes via go-ps, returning Expression values
// instead of writing text directly, so callers can further process the
// listing in the language.
func processPs(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("slsh: ps: %w", err)
	}
	items := make([]*environ.Expression, 0, len(procs))
	for _, p := range procs {
		items = append(items, environ.List([]*environ.Expression{
			environ.Int(int64(p.Pid())),
			environ.String(p.Executable()),
		}))
	}
	return environ.List(items), nil
}

// processKill sends a signal (SIGTERM by default, or the numbered signal in
// args[0] when two arguments are given) to a pid. A signal argument that
// does not evaluate to an integer leaves the signal at SIGTERM.
func processKill(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) == 0 {
		return nil, &eval.BadArityError{Msg: "kill takes a pid and optional signal"}
	}

	sig := syscall.SIGTERM
	pidArg := args[0]
	if len(args) == 2 {
		sigVal, err := eval.Eval(env, args[0])
		if err != nil {
			return nil, err
		}
		if sigVal.Kind == environ.KindInt {
			sig = syscall.Signal(sigVal.Int)
		}
		pidArg = args[1]
	}

	v, err := eval.Eval(env, pidArg)
	if err != nil {
		return nil, err
	}

	var pid int
	switch v.Kind {
	case environ.KindProcess:
		pid = v.Proc.Pid
	case environ.KindInt:
		pid = int(v.Int)
	case environ.KindString, environ.KindSymbol:
		n, perr := strconv.Atoi(v.Str)
		if perr != nil {
			return nil, &eval.BadArgTypeError{Msg: "kill: not a pid: " + v.Str}
		}
		pid = n
	default:
		return nil, &eval.BadArgTypeError{Msg: "kill expects a pid, process, or string"}
	}

	if err := syscall.Kill(pid, sig); err != nil {
		return nil, fmt.Errorf("slsh: kill: (%d) - %w", pid, err)
	}
	return environ.Nil, nil
}
