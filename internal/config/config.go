// Package config loads shell-runtime settings — theme, history limits, the
// fd-leak check cadence — from ~/.config/slsh/config.toml using Viper. This
// is distinct from the language's own init scripts (slsh_std.lisp,
// slsh_shell.lisp, slshrc), which are Lisp source evaluated through the
// reader and evaluator, not data Viper deserializes.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings holds user-configurable, non-language shell runtime parameters.
type Settings struct {
	Theme           string `mapstructure:"theme"`
	HistoryFile     string `mapstructure:"history_file"`
	HistoryLimit    int    `mapstructure:"history_limit"`
	InterruptPrompt string `mapstructure:"interrupt_prompt"`
	EOFPrompt       string `mapstructure:"exit_message"`
	CheckInterval   uint   `mapstructure:"check_interval"`
	PathColour      string `mapstructure:"path_colour"`
	PathColourBold  bool   `mapstructure:"path_colour_bold"`
}

// Load reads ~/.config/slsh/config.toml via Viper and unmarshals it into a
// Settings instance. On any error it returns Default() so startup never
// blocks on a missing or malformed file.
func Load() (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), fmt.Errorf("slsh: config: cannot find home directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(filepath.Join(home, ".config", "slsh"))

	settings := Default()
	if err := viper.ReadInConfig(); err != nil {
		return settings, fmt.Errorf("slsh: config: failed to load config: %w", err)
	}
	if err := viper.Unmarshal(settings); err != nil {
		return settings, fmt.Errorf("slsh: config: failed to unmarshal config: %w", err)
	}
	return settings, nil
}

// Default returns the fallback Settings used when no config file is found
// or it fails to parse.
func Default() *Settings {
	return &Settings{
		Theme:           "none",
		HistoryFile:     filepath.Join(os.Getenv("HOME"), ".slsh_history"),
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       "\nexit",
		CheckInterval:   0,
		PathColour:      "green",
		PathColourBold:  false,
	}
}
