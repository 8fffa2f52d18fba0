// Package shell implements the four top-level invocation modes of §6:
// interactive REPL, line-by-line stdin, a single -c command, and script
// execution. It wires together config, logging, the prompt bridge, the
// builtin populators, and the evaluator, the same way readline, builtins,
// and external dispatch get wired together into one session.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/term"

	"slsh/internal/builtin"
	"slsh/internal/config"
	"slsh/internal/environ"
	"slsh/internal/eval"
	"slsh/internal/logging"
	"slsh/internal/painter"
	"slsh/internal/prompt"
	"slsh/internal/reader"
)

// Shell holds one session's runtime state: the environment, settings,
// logger, and the interrupt-forwarding machinery, keyed off every pid in
// env.Procs rather than a parallel []*exec.Cmd slice.
type Shell struct {
	env      *environ.Environment
	settings *config.Settings
	logger   *zap.Logger
	painter  painter.Painter

	mu     sync.Mutex
	sigCh  chan os.Signal
	stopCh chan struct{}

	descriptors  int
	checkCounter uint
}

// boot loads settings, builds the logger, constructs the environment, and
// registers every builtin populator — the common setup every invocation
// mode needs before it can evaluate anything.
func boot() *Shell {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	logger := logging.New()
	eval.SetLogger(logger)

	env := environ.New()
	env.IsTTY = isTerminal(os.Stdin)
	env.SaveExitStatus = true

	builtin.AddFormBuiltins(env)
	builtin.AddShellBuiltins(env)
	builtin.AddProcessBuiltins(env)
	builtin.AddEditBuiltins(env)

	if env.IsTTY {
		env.TerminalFd = int(os.Stdin.Fd())
		eval.SetupSignalPolicy(env)
	}

	sh := &Shell{
		env:         env,
		settings:    settings,
		logger:      logger,
		painter:     painter.New(settings),
		sigCh:       make(chan os.Signal, 1),
		stopCh:      make(chan struct{}),
		descriptors: openFDCount(),
	}

	loadInitScripts(env)

	signal.Notify(sh.sigCh, os.Interrupt)
	go sh.interruptHandler()

	return sh
}

// interruptHandler forwards SIGINT to every process the environment is
// currently tracking, via pid-keyed signaling (eval.ForwardInterrupt)
// since this package works from pids, not *exec.Cmd handles.
func (sh *Shell) interruptHandler() {
	for {
		select {
		case <-sh.stopCh:
			return
		case <-sh.sigCh:
			sh.mu.Lock()
			for pid := range sh.env.Procs {
				eval.ForwardInterrupt(pid)
			}
			sh.mu.Unlock()
		}
	}
}

func (sh *Shell) shutdown() {
	signal.Stop(sh.sigCh)
	close(sh.stopCh)
}

// loadInitScripts reads ~/.config/slsh/slsh_std.lisp and slsh_shell.lisp
// (standard-library macros, then shell-specific ones), then
// ~/.config/slsh/slshrc, matching the filesystem layout in §6. A missing
// file is not an error; a read form that fails to evaluate is reported and
// skipped so one bad init file doesn't prevent the shell from starting.
func loadInitScripts(env *environ.Environment) {
	home, _ := os.UserHomeDir()
	paths := []string{
		home + "/.config/slsh/slsh_std.lisp",
		home + "/.config/slsh/slsh_shell.lisp",
		home + "/.config/slsh/slshrc",
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if err := evalSource(env, string(data)); err != nil {
			fmt.Fprintf(os.Stderr, "slsh: error loading %s: %v\n", p, err)
		}
	}
}

func evalSource(env *environ.Environment, src string) error {
	forms, err := reader.ReadAll(src)
	if err != nil {
		return err
	}
	for _, form := range forms {
		if _, err := eval.Eval(env, form); err != nil {
			fmt.Fprintf(os.Stderr, "%d: Error evaluating %s: %v\n", env.State.EvalLevel, form.MakeString(), err)
		}
	}
	return nil
}

// RunRepl implements the interactive mode: read a line via the prompt
// bridge, parse it, evaluate it, print the result, repeat until EOF or
// `exit`.
func RunRepl() int {
	sh := boot()
	defer sh.shutdown()

	for {
		eval.ReapProcs(sh.env)
		sh.sysmon()

		promptText := sh.renderPrompt()
		result, err := prompt.ReadPrompt(sh.env, promptText, "", "repl")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		if result.Kind == environ.KindValues && len(result.Values) == 2 {
			switch result.Values[1].Str {
			case ":unexpected-eof":
				return 0
			case ":interrupted":
				continue
			}
		}

		line := strings.TrimSpace(result.MakeString())
		if line == "" {
			continue
		}
		if line == "exit" {
			return 0
		}

		sh.evalLine(line)
	}
}

func (sh *Shell) renderPrompt() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "$ "
	}
	home, _ := os.UserHomeDir()
	return sh.painter.Path(cwd, home) + " "
}

func (sh *Shell) evalLine(line string) {
	forms, err := reader.ReadAll(line)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, form := range forms {
		result, err := eval.Eval(sh.env, form)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%d: Error evaluating %s: %v\n", sh.env.State.EvalLevel, form.MakeString(), err)
			continue
		}
		if result != nil && result.Kind != environ.KindNil {
			fmt.Print(result.Write())
		}
	}
}

// RunStdin implements the non-interactive mode: evaluate stdin line by
// line with no prompt bridge involved at all.
func RunStdin() int {
	sh := boot()
	defer sh.shutdown()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		eval.ReapProcs(sh.env)
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "exit" {
			continue
		}
		sh.evalLine(line)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// RunCommand implements `-c <command>`: per §6 the command line is not read
// as a Lisp form, it is tokenized by the run-command splitter (space
// separated; single- and double-quoted runs taken verbatim; `\` escapes the
// matching quote) and dispatched straight to do_command as an external
// invocation, the same way a stage of a pipeline would be.
func RunCommand(command string) int {
	sh := boot()
	defer sh.shutdown()

	tokens := tokenizeRunCommand(command)
	if len(tokens) == 0 {
		return 0
	}

	parts := make([]*environ.Expression, len(tokens)-1)
	for i, t := range tokens[1:] {
		parts[i] = environ.String(t)
	}

	result, err := eval.DoCommand(sh.env, tokens[0], parts, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if result != nil && result.Kind == environ.KindProcess {
		return result.Proc.Code
	}
	return 0
}

// tokenizeRunCommand implements §6's run-command tokenizer: split on
// unquoted spaces, take quoted runs (single or double) verbatim, and treat
// `\` before the matching quote as an escape of that quote character.
func tokenizeRunCommand(command string) []string {
	var tokens []string
	var cur strings.Builder
	inToken := false
	var quote rune

	flush := func() {
		if inToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			if r == '\\' && i+1 < len(runes) && runes[i+1] == quote {
				cur.WriteRune(quote)
				i++
			} else if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			flush()
		default:
			inToken = true
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// RunScript implements the positional `<script> [args...]` mode: read the
// whole file and evaluate every top-level form in it in order, binding
// args to the trailing argv so scripts can read their own arguments.
func RunScript(path string, scriptArgs []string) int {
	sh := boot()
	defer sh.shutdown()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	argExprs := make([]*environ.Expression, len(scriptArgs))
	for i, a := range scriptArgs {
		argExprs[i] = environ.String(a)
	}
	sh.env.SetGlobal("args", environ.List(argExprs))

	if err := evalSource(sh.env, string(data)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// sysmon is a descriptor-leak monitor: every CheckInterval prompts it
// compares the live /proc/self/fd count against the post-boot baseline and
// logs a warning (rather than panicking — a pipeline stage legitimately
// leaves a pendingStdout read-end open across prompts until the next stage
// consumes it, so a raised count is a lead worth logging, not by itself a
// fatal leak) when it has grown.
func (sh *Shell) sysmon() {
	if sh.settings.CheckInterval == 0 {
		return
	}
	sh.checkCounter++
	if sh.checkCounter < sh.settings.CheckInterval {
		return
	}
	sh.checkCounter = 0

	n := openFDCount()
	if n > sh.descriptors {
		sh.logger.Warn("file descriptor count above startup baseline",
			zap.Int("baseline", sh.descriptors), zap.Int("current", n))
	}
}

func openFDCount() int {
	entries, err := os.ReadDir(fmt.Sprintf("/proc/%d/fd", os.Getpid()))
	if err != nil {
		return 0
	}
	return len(entries)
}

// isTerminal reports whether f is a controlling terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
