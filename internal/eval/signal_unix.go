//go:build unix

package eval

import (
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"slsh/internal/environ"
)

// applyProcessGroup sets the SysProcAttr that puts the child into the
// pipeline's shared process group (or its own, as the first stage of one)
// before exec — this is the one piece of §4.D.1 step 5's pre-exec setup Go
// can still do safely, since the runtime applies it in the forked child
// itself rather than running arbitrary Go code there. Resetting the
// ignored-signal dispositions with an arbitrary pre-exec hook is not
// reachable through os/exec; ForwardInterrupt (reap.go) compensates by
// forwarding SIGINT to tracked children instead of relying on the child
// seeing its own default disposition.
func applyProcessGroup(cmd *exec.Cmd, env *environ.Environment, fg bool) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    env.State.PipePgid,
	}
}

// settlePgid redundantly sets the child's pgid from the parent side too,
// racing (harmlessly) against the child's own setpgid call, and records the
// pgid as the pipeline's shared one the first time it is established.
func settlePgid(cmd *exec.Cmd, env *environ.Environment, fg bool) {
	pid := cmd.Process.Pid
	pgid := env.State.PipePgid
	if pgid == 0 {
		pgid = pid
	}
	_ = syscall.Setpgid(pid, pgid)
	if env.InPipe && env.State.PipePgid == 0 {
		env.State.PipePgid = pgid
	}
}

// handTerminalTo gives the controlling terminal to pid's own process group.
func handTerminalTo(env *environ.Environment, pid int) {
	handTerminalToPgid(env, env.State.PipePgid, pid)
}

// handTerminalToPgid gives the controlling terminal to pgid (falling back
// to fallbackPid's group when the pipeline never settled on a shared pgid).
func handTerminalToPgid(env *environ.Environment, pgid, fallbackPid int) {
	if !env.IsTTY {
		return
	}
	if pgid == 0 {
		pgid = fallbackPid
	}
	_ = unix.IoctlSetPointerInt(env.TerminalFd, unix.TIOCSPGRP, pgid)
}

// reclaimTerminal returns the controlling terminal to the shell's own
// process group (invariant 7).
func reclaimTerminal(env *environ.Environment) {
	if !env.IsTTY {
		return
	}
	_ = unix.IoctlSetPointerInt(env.TerminalFd, unix.TIOCSPGRP, env.ShellPgid)
}

// SetupSignalPolicy implements §4.D.4's session startup: spin on SIGTTIN
// until the shell's process group owns the terminal, put the shell in its
// own process group, ignore the job-control signals a foreground shell must
// not die from, and claim the terminal.
func SetupSignalPolicy(env *environ.Environment) {
	fd := env.TerminalFd
	pid := unix.Getpid()
	_ = unix.Setpgid(pid, pid)
	shellPgid := pid

	for {
		fg, err := unix.IoctlGetInt(fd, unix.TIOCGPGRP)
		if err == nil && fg == shellPgid {
			break
		}
		_ = unix.Kill(-shellPgid, unix.SIGTTIN)
	}

	signal.Ignore(syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU)

	env.ShellPgid = shellPgid
	_ = unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, shellPgid)
}
