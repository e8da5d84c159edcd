// Package ux carries the user-facing plumbing: transient notifications and
// persisted CLI preferences. Notifications are the only way failures reach
// the user; raw errors never escape to command output unformatted.
package ux

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Severity distinguishes informational notices from destructive/negative
// outcomes, which render visually distinct.
type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	descStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Notifier prints severity-styled one-line notices: a short title and a
// description. In a terminal the transient/auto-dismiss behavior of the web
// UI maps to ephemeral stderr lines.
type Notifier struct {
	out io.Writer
}

// NewNotifier creates a notifier writing to stderr.
func NewNotifier() *Notifier {
	return &Notifier{out: os.Stderr}
}

// NewNotifierTo creates a notifier writing to w (tests).
func NewNotifierTo(w io.Writer) *Notifier {
	return &Notifier{out: w}
}

// Notify prints one notice.
func (n *Notifier) Notify(sev Severity, title, description string) {
	var styled string
	switch sev {
	case Success:
		styled = successStyle.Render("✓ " + title)
	case Warning:
		styled = warningStyle.Render("! " + title)
	case Error:
		styled = errorStyle.Render("✗ " + title)
	default:
		styled = infoStyle.Render("• " + title)
	}

	if description != "" {
		fmt.Fprintf(n.out, "%s  %s\n", styled, descStyle.Render(description))
		return
	}
	fmt.Fprintln(n.out, styled)
}

// Infof is shorthand for an informational notice.
func (n *Notifier) Infof(title, format string, args ...interface{}) {
	n.Notify(Info, title, fmt.Sprintf(format, args...))
}

// Successf is shorthand for a success notice.
func (n *Notifier) Successf(title, format string, args ...interface{}) {
	n.Notify(Success, title, fmt.Sprintf(format, args...))
}

// Errorf is shorthand for a failure notice.
func (n *Notifier) Errorf(title, format string, args ...interface{}) {
	n.Notify(Error, title, fmt.Sprintf(format, args...))
}
