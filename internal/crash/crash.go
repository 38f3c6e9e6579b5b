// Package crash renders a styled panic report on stderr and exits with a
// non-zero status, rather than letting Go's default panic dump reach the
// terminal unstyled. Non-interactive: this is a batch CLI with no keypress
// loop to wait on.
package crash

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#AA0000")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

const stackLinesShown = 12

// Recover is meant to be deferred at the top of main. On panic it prints a
// styled report and exits 1, rather than letting Go's default panic dump
// reach the terminal unstyled.
func Recover() {
	if r := recover(); r != nil {
		fmt.Fprintln(os.Stderr, render(r))
		os.Exit(1)
	}
}

// SafeRun wraps fn with panic recovery.
func SafeRun(fn func()) {
	defer Recover()
	fn()
}

func render(panicValue any) string {
	var b strings.Builder

	b.WriteString(bannerStyle.Render(" lottr crashed "))
	b.WriteString("\n\n")
	b.WriteString(errorStyle.Render("error: "))
	b.WriteString(fmt.Sprintf("%v", panicValue))
	b.WriteString("\n\n")

	b.WriteString(errorStyle.Render("stack trace:"))
	b.WriteString("\n")

	lines := strings.Split(string(debug.Stack()), "\n")
	shown := stackLinesShown
	if len(lines) < shown {
		shown = len(lines)
	}
	for i := 0; i < shown; i++ {
		b.WriteString("  ")
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	if len(lines) > shown {
		fmt.Fprintf(&b, "  ... and %d more lines\n", len(lines)-shown)
	}
	return b.String()
}
