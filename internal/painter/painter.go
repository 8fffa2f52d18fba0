// Package painter renders the default prompt's path segment with ANSI
// color and optional bold, themed from config.Settings.
package painter

import (
	"strings"

	"slsh/internal/config"
)

const (
	reset    = "\033[0m"
	makeBold = "\033[1m"
)

// Painter holds the resolved styling for the prompt's path segment.
type Painter struct {
	PathColour string
	PathBold   bool
}

// New builds a Painter from settings, applying a named theme first when one
// is set (anything other than "none" or empty).
func New(settings *config.Settings) Painter {
	theme := strings.ToLower(strings.TrimSpace(settings.Theme))
	colour, bold := settings.PathColour, settings.PathColourBold
	switch theme {
	case "", "none":
	case "slsh":
		colour, bold = "yellow", false
	case "wildberries":
		colour, bold = "\033[38;2;203;17;171m", true
	case "monokai":
		colour, bold = "\033[38;2;249;38;114m", true
	case "ohmybash":
		colour, bold = "green", false
	}
	return Painter{PathColour: resolveColor(colour), PathBold: bold}
}

// resolveColor converts a color name into its ANSI escape, passing already
// escape-sequence values through unchanged.
func resolveColor(colour string) string {
	colour = strings.TrimSpace(colour)
	switch strings.ToLower(colour) {
	case "":
		return ""
	case "default":
		return "\033[39m"
	case "black":
		return "\033[30m"
	case "red":
		return "\033[31m"
	case "green":
		return "\033[32m"
	case "yellow":
		return "\033[33m"
	case "bright yellow":
		return "\033[93m"
	case "blue":
		return "\033[94m"
	case "magenta":
		return "\033[35m"
	case "cyan":
		return "\033[36m"
	case "white":
		return "\033[37m"
	default:
		return colour
	}
}

// Paint wraps text in style/colour and a trailing reset.
func (p Painter) Paint(bold bool, colour, text string) string {
	style := ""
	if bold {
		style = makeBold
	}
	return style + colour + text + reset
}

// Path renders the default prompt path segment: cwd with the home
// directory abbreviated to `~`, styled per p.
func (p Painter) Path(cwd, home string) string {
	path := cwd
	if home != "" && strings.HasPrefix(cwd, home) {
		path = "~" + strings.TrimPrefix(cwd, home)
	}
	return p.Paint(p.PathBold, p.PathColour, path)
}
