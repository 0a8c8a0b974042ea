// Package cli provides shared formatting helpers for the topocheck CLI.
package cli

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// colorEnabled is false when NO_COLOR is set (per no-color.org) or stdout
// is not a terminal.
var colorEnabled = os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))

// SetColor forces ANSI colors on or off, e.g. for --no-color or tests.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// ColorEnabled reports whether the color helpers emit escape codes.
func ColorEnabled() bool {
	return colorEnabled
}

func wrap(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + "\033[0m"
}

// Green wraps s in ANSI green.
func Green(s string) string { return wrap("\033[32m", s) }

// Yellow wraps s in ANSI yellow.
func Yellow(s string) string { return wrap("\033[33m", s) }

// Red wraps s in ANSI red.
func Red(s string) string { return wrap("\033[31m", s) }

// Cyan wraps s in ANSI cyan.
func Cyan(s string) string { return wrap("\033[36m", s) }

// Bold wraps s in ANSI bold.
func Bold(s string) string { return wrap("\033[1m", s) }

// Dim wraps s in ANSI dim.
func Dim(s string) string { return wrap("\033[2m", s) }

// DotPad pads name with dots to the given width.
// Example: DotPad("network-loops", 30) → "network-loops ................"
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}

// TerminalWidth returns the width of stdout, or 0 when stdout is not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
