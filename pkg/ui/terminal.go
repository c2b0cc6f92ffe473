package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Printer writes styled status lines. Styling is dropped when the target is
// not a terminal.
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter creates a printer for w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styled: IsTerminal(w)}
}

// IsTerminal reports whether w is a terminal file descriptor
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var std = NewPrinter(os.Stderr)

// SetOutput redirects the package-level print functions
func SetOutput(w io.Writer) {
	std = NewPrinter(w)
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// Error prints an error message, optionally followed by its cause
func (p *Printer) Error(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(p.w, p.render(errorStyle, msg))
}

// Success prints a success message
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, p.render(successStyle, msg))
}

// Info prints a label and value pair
func (p *Printer) Info(label string, value string) {
	fmt.Fprintf(p.w, "%s: %s\n", p.render(labelStyle, label), p.render(valueStyle, value))
}

// Warning prints a warning message, optionally followed by its cause
func (p *Printer) Warning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(p.w, p.render(warningStyle, msg))
}

// Highlight prints a highlighted message
func (p *Printer) Highlight(msg string) {
	fmt.Fprintln(p.w, p.render(highlightStyle, msg))
}

// Dim prints a low-emphasis message
func (p *Printer) Dim(msg string) {
	fmt.Fprintln(p.w, p.render(dimStyle, msg))
}

// PrintError prints an error message to stderr
func PrintError(msg string, args ...interface{}) {
	std.Error(msg, args...)
}

// PrintSuccess prints a success message to stderr
func PrintSuccess(msg string) {
	std.Success(msg)
}

// PrintInfo prints a label and value to stderr
func PrintInfo(label string, value string) {
	std.Info(label, value)
}

// PrintWarning prints a warning message to stderr
func PrintWarning(msg string, args ...interface{}) {
	std.Warning(msg, args...)
}

// PrintHighlight prints a highlighted message to stderr
func PrintHighlight(msg string) {
	std.Highlight(msg)
}
