// Package prompt implements the readline-style bridge of §4.E: named
// line-editor contexts keyed by an interned id, history files, and a color
// hook that re-enters the evaluator with save_exit_status suppressed.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"slsh/internal/completer"
	"slsh/internal/environ"
	"slsh/internal/eval"
)

// Context is the per-id line-editor state the bridge keeps in
// Environment.Liners: a readline instance, its history path, whether it is
// a throwaway (:new) context that is never reinserted, and any session-only
// history entries pushed via prompt_history_push_throwaway (chzyer/readline
// has no native concept of an unpersisted push, so that case is modeled
// here instead of fighting its file-backed history stack).
type Context struct {
	Liner       *readline.Instance
	HistoryPath string
	Throwaway   bool
	Ephemeral   []string
}

// dataDir returns ~/.local/share/slsh, creating it if necessary.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".local", "share", "slsh")
	_ = os.MkdirAll(dir, 0755)
	return dir
}

func historyPathFor(id string) string {
	dir := dataDir()
	if dir == "" {
		return ""
	}
	if id == "repl" {
		return filepath.Join(dir, "history")
	}
	return filepath.Join(dir, id)
}

// ReadPrompt implements read_prompt: reuse or create the named context,
// install the live completer and color hook, read one line, and translate
// EOF/interrupt into the Values(:keyword) sentinels §4.E and §8 require
// instead of propagating them as Go errors. It does not reload REPL
// settings; a context keeps the configuration it was created with.
func ReadPrompt(env *environ.Environment, promptText, historyName, id string) (*environ.Expression, error) {
	throwaway := id == "new"

	var ctx *Context
	if !throwaway {
		if existing, ok := env.Liners[id]; ok {
			ctx, _ = existing.(*Context)
		}
	}

	if ctx == nil {
		histPath := historyName
		if histPath == "" {
			histPath = historyPathFor(id)
		} else if !filepath.IsAbs(histPath) {
			histPath = filepath.Join(dataDir(), histPath)
		}

		cfg := &readline.Config{
			Prompt:          promptText,
			HistoryFile:     histPath,
			HistoryLimit:    1000,
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
			AutoComplete:    completer.New(env),
		}
		liner, err := readline.NewEx(cfg)
		if err != nil {
			return nil, &eval.ReadLineFatalError{Cause: err}
		}
		ctx = &Context{Liner: liner, HistoryPath: histPath, Throwaway: throwaway}
	} else {
		ctx.Liner.SetPrompt(promptText)
	}

	line, readErr := readColored(env, ctx, promptText)

	if !throwaway {
		env.Liners[id] = ctx
	}

	if readErr != nil {
		if errors.Is(readErr, io.EOF) {
			return environ.Values([]*environ.Expression{environ.String(""), environ.Symbol(":unexpected-eof")}), nil
		}
		if errors.Is(readErr, readline.ErrInterrupt) {
			return environ.Values([]*environ.Expression{environ.String(""), environ.Symbol(":interrupted")}), nil
		}
		return nil, &eval.ReadLineFatalError{Cause: readErr}
	}

	return environ.String(strings.TrimSpace(line)), nil
}

// readColored installs the __line_handler color hook (when bound) for the
// duration of a single Readline call. The hook runs with save_exit_status
// and loose-symbol evaluation suppressed so a misbehaving or slow color
// function can't clobber *last-status* or coerce unrelated symbols to
// strings, per §4.E.
func readColored(env *environ.Environment, ctx *Context, promptText string) (string, error) {
	handler, ok := env.Get("__line_handler")
	if !ok || handler.Kind != environ.KindLambda {
		return ctx.Liner.Readline()
	}

	savedSave := env.SaveExitStatus
	savedLoose := env.LooseSymbols
	env.SaveExitStatus = false
	env.LooseSymbols = false
	defer func() {
		env.SaveExitStatus = savedSave
		env.LooseSymbols = savedLoose
	}()

	ctx.Liner.Config.Painter = &hookPainter{env: env, lambda: handler.Lambda}
	return ctx.Liner.Readline()
}

// hookPainter adapts a bound __line_handler Lambda to readline.Painter by
// calling back into the evaluator on every repaint.
type hookPainter struct {
	env    *environ.Environment
	lambda *environ.Lambda
}

func (h *hookPainter) Paint(line []rune, pos int) []rune {
	result, err := eval.CallLambda(h.env, h.lambda, []*environ.Expression{environ.String(string(line))})
	if err != nil || result == nil {
		return line
	}
	return []rune(result.MakeString())
}

// PushHistory implements prompt_history_push: append item to id's permanent
// history file. A missing id is an error; a write failure is a warning that
// returns Nil rather than propagating (§4.E).
func PushHistory(env *environ.Environment, id, item string) (*environ.Expression, error) {
	v, ok := env.Liners[id]
	if !ok {
		return nil, fmt.Errorf("slsh: prompt-history-push: no such context: %s", id)
	}
	ctx := v.(*Context)
	if err := ctx.Liner.SaveHistory(item); err != nil {
		eval.Logger.Warn("history push failed", zap.Error(err))
		return environ.Nil, nil
	}
	return environ.Nil, nil
}

// PushHistoryThrowaway implements prompt_history_push_throwaway: record
// item for the duration of the session only, never touching id's history
// file.
func PushHistoryThrowaway(env *environ.Environment, id, item string) (*environ.Expression, error) {
	v, ok := env.Liners[id]
	if !ok {
		return nil, fmt.Errorf("slsh: prompt-history-push-throwaway: no such context: %s", id)
	}
	ctx := v.(*Context)
	ctx.Ephemeral = append(ctx.Ephemeral, item)
	return environ.Nil, nil
}
