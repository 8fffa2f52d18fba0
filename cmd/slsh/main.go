// Package main is the entry point of the slsh shell. It uses Cobra to parse
// the four invocation modes of §6 and dispatches to internal/shell, the way
// a single Run() entry point is generalized here into
// RunRepl/RunStdin/RunCommand/RunScript.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"slsh/internal/shell"
)

func main() {
	var command string

	root := &cobra.Command{
		Use:                "slsh [script] [args...]",
		Short:              "An interactive Lisp-dialect shell",
		DisableFlagParsing: false,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(run(command, args))
			return nil
		},
	}
	root.Flags().StringVarP(&command, "command", "c", "", "evaluate a single command and exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run dispatches to the four modes of §6: -c <command>; a positional
// <script> [args...]; interactive REPL when stdin is a tty; line-by-line
// stdin otherwise.
func run(command string, args []string) int {
	if command != "" {
		return shell.RunCommand(command)
	}
	if len(args) > 0 {
		return shell.RunScript(args[0], args[1:])
	}
	if isInteractive() {
		return shell.RunRepl()
	}
	return shell.RunStdin()
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
