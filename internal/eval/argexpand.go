package eval

import (
	"os"
	"path/filepath"
	"strings"

	"slsh/internal/environ"
)

// expandTilde replaces a bare `~` with $HOME plus a trailing slash (or `/`
// if unset), and a leading `~/` likewise; `~name` forms are left as they are.
func expandTilde(s string) string {
	home := os.Getenv("HOME")
	if home == "" {
		home = "/"
	}
	if !strings.HasSuffix(home, "/") {
		home += "/"
	}
	if s == "~" {
		return home
	}
	if strings.HasPrefix(s, "~/") {
		return home + s[2:]
	}
	return s
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// prepStringArg performs §4.D.1's tilde-then-glob expansion for a single
// string argument, appending the results (one Expression per glob match,
// or the literal string unexpanded when there are zero matches or a glob
// error) to out.
func prepStringArg(s string, out []*environ.Expression) ([]*environ.Expression, error) {
	s = expandTilde(s)
	if !hasGlobMeta(s) {
		return append(out, environ.String(s)), nil
	}
	matches, err := filepath.Glob(s)
	if err != nil {
		return append(out, environ.String(s)), nil
	}
	if len(matches) == 0 {
		return append(out, environ.String(s)), nil
	}
	for _, m := range matches {
		out = append(out, environ.String(m))
	}
	return out, nil
}

// expandArgs evaluates parts (in loose-symbol / shell-token mode per
// §4.D.1 step 4) and glob-expands the resulting strings.
func expandArgs(env *environ.Environment, parts []*environ.Expression) ([]*environ.Expression, error) {
	saved := env.LooseSymbols
	env.LooseSymbols = true
	evaluated := make([]*environ.Expression, 0, len(parts))
	for _, p := range parts {
		v, err := Eval(env, p)
		if err != nil {
			env.LooseSymbols = saved
			return nil, err
		}
		evaluated = append(evaluated, v)
	}
	env.LooseSymbols = saved

	out := make([]*environ.Expression, 0, len(evaluated))
	for _, v := range evaluated {
		if v.Kind == environ.KindString || v.Kind == environ.KindSymbol {
			var err error
			out, err = prepStringArg(v.Str, out)
			if err != nil {
				return nil, err
			}
		} else {
			out = append(out, v)
		}
	}
	return out, nil
}
