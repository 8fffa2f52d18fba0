package builtin

import (
	"strings"

	"slsh/internal/environ"
	"slsh/internal/eval"
	"slsh/internal/prompt"
)

// AddEditBuiltins installs the §4.E prompt-bridge entry points: prompt,
// prompt-history-push, and prompt-history-push-throwaway.
func AddEditBuiltins(env *environ.Environment) {
	env.SetGlobal("prompt", environ.Func(editPrompt))
	env.SetGlobal("prompt-history-push", environ.Func(editHistoryPush))
	env.SetGlobal("prompt-history-push-throwaway", environ.Func(editHistoryPushThrowaway))
}

// idOf takes a builtin's raw (unevaluated) id argument — a bare symbol or a
// keyword-style `:name` symbol, or a string — and returns the name with any
// leading `:` removed (empty when the argument has another kind).
func idOf(e *environ.Expression) string {
	if e.Kind != environ.KindSymbol && e.Kind != environ.KindString {
		return ""
	}
	return strings.TrimPrefix(e.Str, ":")
}

// editPrompt implements (prompt id text [history-name]).
func editPrompt(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, &eval.BadArityError{Msg: "prompt takes an id, a prompt string, and an optional history name"}
	}
	id := idOf(args[0])
	if id == "" {
		return nil, &eval.BadArgTypeError{Msg: "prompt: id must be a symbol"}
	}
	text, err := eval.Eval(env, args[1])
	if err != nil {
		return nil, err
	}
	historyName := ""
	if len(args) == 3 {
		h, herr := eval.Eval(env, args[2])
		if herr != nil {
			return nil, herr
		}
		historyName = h.MakeString()
	}
	return prompt.ReadPrompt(env, text.MakeString(), historyName, id)
}

func editHistoryPush(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	id, item, err := idAndItem(env, args, "prompt-history-push")
	if err != nil {
		return nil, err
	}
	return prompt.PushHistory(env, id, item)
}

func editHistoryPushThrowaway(env *environ.Environment, args []*environ.Expression) (*environ.Expression, error) {
	id, item, err := idAndItem(env, args, "prompt-history-push-throwaway")
	if err != nil {
		return nil, err
	}
	return prompt.PushHistoryThrowaway(env, id, item)
}

func idAndItem(env *environ.Environment, args []*environ.Expression, name string) (string, string, error) {
	if len(args) != 2 {
		return "", "", &eval.BadArityError{Msg: name + " takes an id and an item"}
	}
	id := idOf(args[0])
	if id == "" {
		return "", "", &eval.BadArgTypeError{Msg: name + ": id must be a symbol"}
	}
	v, err := eval.Eval(env, args[1])
	if err != nil {
		return "", "", err
	}
	return id, v.MakeString(), nil
}
