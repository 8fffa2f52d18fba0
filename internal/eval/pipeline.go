package eval

import "slsh/internal/environ"

// DoPipe implements §4.D.2: every stage is evaluated with in_pipe forced on
// and a shared pipe_pgid, each stage's result is handed to the next as
// dataIn, and only the pipeline as a whole — not any individual stage —
// decides whether to claim the terminal and wait.
//
// Whether the terminal stage's own stdout is inherited by the shell or
// captured like the earlier stages is left ambiguous upstream; this
// implementation inherits it whenever the pipeline itself is foreground, so
// `(pipe (echo "a") (grep a))` prints to the terminal instead of discarding
// its output into an unread pipe. Every earlier stage writes into a pipe to
// the next stage; an explicit stdout redirect applies to the terminal stage
// only.
func DoPipe(env *environ.Environment, stages []*environ.Expression, dataIn *environ.Expression) (*environ.Expression, error) {
	if len(stages) == 0 {
		return environ.Nil, nil
	}
	if len(stages) == 1 {
		return Eval(env, stages[0])
	}

	pipeForeground := foreground(env)

	savedInPipe := env.InPipe
	savedPgid := env.State.PipePgid
	savedStdout := env.State.StdoutStatus
	env.InPipe = true
	env.State.PipePgid = 0

	var result *environ.Expression
	var err error
	current := dataIn
	for i, stage := range stages {
		if i < len(stages)-1 {
			env.State.StdoutStatus = &environ.Redirect{State: environ.IOPipe}
		} else {
			env.State.StdoutStatus = savedStdout
			if pipeForeground && savedStdout == nil {
				env.State.StdoutStatus = &environ.Redirect{State: environ.IOInherit}
			}
		}
		result, err = pipeEval(env, stage, current)
		if err != nil {
			break
		}
		current = result
	}

	env.InPipe = savedInPipe
	pgidUsed := env.State.PipePgid
	env.State.PipePgid = savedPgid
	env.State.StdoutStatus = savedStdout

	if err != nil {
		return nil, err
	}
	if result == nil || result.Kind != environ.KindProcess || result.Proc.Status != environ.ProcRunning {
		return result, nil
	}

	tailPid := result.Proc.Pid
	if !pipeForeground {
		env.AddProcess(tailPid)
		return result, nil
	}

	handTerminalToPgid(env, pgidUsed, tailPid)
	code, werr := waitPid(env, tailPid)
	reclaimTerminal(env)
	if werr != nil {
		return environ.Nil, nil
	}
	return environ.Proc(&environ.ProcState{Status: environ.ProcOver, Pid: tailPid, Code: code}), nil
}
