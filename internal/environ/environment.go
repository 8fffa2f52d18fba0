package environ

import (
	"fmt"
	"os"
)

// IOState is a redirection request pushed by a surrounding form onto
// State.StdoutStatus / State.StderrStatus (§4.D.1 step 3).
type IOState int

const (
	IOStateNone IOState = iota
	IOFileAppend
	IOFileOverwrite
	IOPipe
	IOInherit
	IONull
)

// Redirect pairs an IOState with the path it targets (meaningful only for
// IOFileAppend / IOFileOverwrite).
type Redirect struct {
	State IOState
	Path  string
}

// FormType gates whether symbol lookup precedes external-command dispatch
// at the top of eval (§9 "form_type as a global switch").
type FormType int

const (
	FormAny FormType = iota
	FormOnly
	FormExternalOnly
)

// State holds the ephemeral, per-evaluation counters described in §3.
type State struct {
	EvalLevel     int
	RecurNumArgs  *int // nil unless a tail-position recur is in flight
	GensymCount   uint32
	IsSpawn       bool
	PipePgid      int // 0 means "none"
	StdoutStatus  *Redirect
	StderrStatus  *Redirect
}

// Child is the minimal bookkeeping kept for a live or stopped process: just
// enough for the process manager to reap and report it (the OS-level
// handle lives behind the process package's own table, keyed by the same
// pid, so environ does not need to import os/exec).
type Child struct {
	Pid int
}

// Environment is the process-wide state for one shell session (§3).
type Environment struct {
	Interner *Interner

	RootScope    *Scope
	CurrentScope []*Scope

	State State

	Procs        map[int]*Child
	StoppedProcs []int

	InPipe        bool
	RunBackground bool
	LooseSymbols  bool
	FormType      FormType
	SaveExitStatus bool

	IsTTY          bool
	TerminalFd     int
	ShellPgid      int

	// Liners holds named line-editor contexts. Its value type is owned by
	// the prompt package (it wraps *readline.Instance plus settings and a
	// completer slot); environ only provides the slot so the evaluator's
	// builtins can reach it without prompt depending back on eval.
	Liners map[string]interface{}

	// DataIn is the expression whose realization becomes the stdin of the
	// next external command started in a pipeline (§4.D.1 step 2).
	DataIn *Expression

	LastError error
}

// New builds the default, interactive environment: root scope plus an
// empty current-scope stack of depth one (invariant 1).
func New() *Environment {
	root := NewScope(nil)
	env := &Environment{
		Interner:       NewInterner(),
		RootScope:      root,
		CurrentScope:   []*Scope{root},
		Procs:          make(map[int]*Child),
		Liners:         make(map[string]interface{}),
		SaveExitStatus: true,
		FormType:       FormAny,
	}
	return env
}

// NewSpawned builds the non-interactive environment handed to a forked
// child: a fresh process table and scope stack seeded from data, with
// State.IsSpawn set so the process manager never tries to foreground it.
func NewSpawned(data map[string]*Expression) *Environment {
	root := NewScope(nil)
	for k, v := range data {
		root.Set(k, v)
	}
	env := &Environment{
		Interner:       NewInterner(),
		RootScope:      root,
		CurrentScope:   []*Scope{root},
		Procs:          make(map[int]*Child),
		Liners:         make(map[string]interface{}),
		SaveExitStatus: true,
		FormType:       FormAny,
	}
	env.State.IsSpawn = true
	return env
}

// Innermost returns the current (top of stack) scope.
func (e *Environment) Innermost() *Scope {
	return e.CurrentScope[len(e.CurrentScope)-1]
}

// Get implements §4.B: a `$name` key reads the OS environment variable
// named by the remainder (missing ⇒ empty string); anything else walks
// the innermost scope outward.
func (e *Environment) Get(key string) (*Expression, bool) {
	if len(key) > 0 && key[0] == '$' {
		return String(os.Getenv(key[1:])), true
	}
	return e.Innermost().Get(key)
}

// GetScope returns the scope object that owns key, needed by assignment
// forms that must mutate the binding in place rather than shadow it.
func (e *Environment) GetScope(key string) *Scope {
	return e.Innermost().Owner(key)
}

// SetGlobal inserts into RootScope unconditionally.
func (e *Environment) SetGlobal(key string, value *Expression) {
	e.RootScope.Set(key, value)
}

// PushScope pushes a new scope whose outer is the current innermost scope,
// or an explicit outer (lambda capture) when given. PopScope must be
// called exactly once per PushScope, on every exit path including errors
// (invariant 3); callers pop with defer or on each early return.
func (e *Environment) PushScope(outer *Scope) *Scope {
	if outer == nil {
		outer = e.Innermost()
	}
	s := NewScope(outer)
	e.CurrentScope = append(e.CurrentScope, s)
	return s
}

// PopScope pops the innermost scope. Calling it when only the root scope
// remains is a programming error (it would break invariant 1) and panics
// rather than silently corrupting the stack.
func (e *Environment) PopScope() {
	if len(e.CurrentScope) <= 1 {
		panic("environ: PopScope called with only the root scope on the stack")
	}
	e.CurrentScope = e.CurrentScope[:len(e.CurrentScope)-1]
}

// AddProcess records a live child and returns its pid.
func (e *Environment) AddProcess(pid int) int {
	e.Procs[pid] = &Child{Pid: pid}
	return pid
}

// RemoveProcess drops a pid from the live table (called once it has been
// reaped or confirmed gone).
func (e *Environment) RemoveProcess(pid int) {
	delete(e.Procs, pid)
}

// SetLastStatus mirrors an external command's exit code into the
// `*last-status*` global and the LAST_STATUS OS environment variable, but
// only when SaveExitStatus is true (prompt/color-hook re-entry sets it
// false so it cannot clobber the status of the command the user actually
// ran — §4.E).
func (e *Environment) SetLastStatus(code int) {
	if !e.SaveExitStatus {
		return
	}
	e.RootScope.Set("*last-status*", Int(int64(code)))
	os.Setenv("LAST_STATUS", fmt.Sprintf("%d", code))
}
