// Package logging builds the structured logger shared by the evaluator,
// process manager, and REPL loop. Its output is additive: every condition
// it logs is also reported on stderr in the human-readable form §7
// prescribes, so logging can be redirected or silenced without losing the
// shell's own error reporting.
package logging

import "go.uber.org/zap"

// New builds a development-profile zap.Logger: human-readable console
// encoding, colored level, caller location — the same defaults a developer
// running the shell from a terminal wants to see, not a production JSON
// sink meant for log aggregation.
func New() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
