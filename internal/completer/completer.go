// Package completer adapts a live Environment's scope contents and the
// working directory's entries into a readline.AutoCompleter, generalizing
// a static per-command completion tree into one driven by
// whatever the user has actually def'd or fn'd (so user-defined commands
// complete too, not just a fixed allowlist).
package completer

import (
	"os"
	"strconv"

	"github.com/chzyer/readline"

	ps "github.com/mitchellh/go-ps"

	"slsh/internal/environ"
)

// Completer satisfies readline.AutoCompleter by rebuilding its suggestion
// tree from the environment's scope and the filesystem on every completion
// request — a scope lookup and a directory read are both cheap enough to
// afford rebuilding per request at interactive shell scale.
type Completer struct {
	env *environ.Environment
}

// New returns a Completer bound to env. Every Do call reflects env's
// current scope contents, so a `(def my-fn ...)` issued mid-session
// completes immediately afterward.
func New(env *environ.Environment) *Completer {
	return &Completer{env: env}
}

func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	return c.build().Do(line, pos)
}

func (c *Completer) build() *readline.PrefixCompleter {
	entries, _ := os.ReadDir(".")

	var dirs, files []readline.PrefixCompleterInterface
	for _, entry := range entries {
		if entry.IsDir() {
			files = append(files, readline.PcItem(entry.Name()+"/"))
			dirs = append(dirs, readline.PcItem(entry.Name()+"/"))
		} else {
			files = append(files, readline.PcItem(entry.Name()))
		}
	}

	var pids []readline.PrefixCompleterInterface
	for _, pid := range livePIDs() {
		pids = append(pids, readline.PcItem(pid))
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem("cd", dirs...),
		readline.PcItem("kill", pids...),
		readline.PcItem("ps", files...),
	}
	for _, name := range c.boundSymbols() {
		items = append(items, readline.PcItem(name, files...))
	}

	return readline.NewPrefixCompleter(items...)
}

// boundSymbols walks the current scope chain collecting every bound name so
// user def'd/fn'd commands complete like any builtin.
func (c *Completer) boundSymbols() []string {
	if c.env == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for s := c.env.Innermost(); s != nil; s = s.Outer {
		for name := range s.Data {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// livePIDs lists currently running process ids, used for `kill` completion.
func livePIDs() []string {
	procs, err := ps.Processes()
	if err != nil {
		return nil
	}
	pids := make([]string, 0, len(procs))
	for _, p := range procs {
		pids = append(pids, strconv.Itoa(p.Pid()))
	}
	return pids
}
