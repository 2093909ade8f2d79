// Package console writes user-facing messages and tables to the terminal.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes coloured status lines. Informational output goes to out,
// warnings and errors go to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool

	info    *color.Color
	success *color.Color
	warning *color.Color
	failure *color.Color
	green   *color.Color
	blue    *color.Color
}

// New returns a printer writing to out and errOut.
func New(out, errOut io.Writer) *Printer {
	return &Printer{
		out:     out,
		errOut:  errOut,
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen, color.Bold),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.Bold),
		green:   color.New(color.FgGreen),
		blue:    color.New(color.FgBlue),
	}
}

// Default returns a printer on the process stdout and stderr.
func Default() *Printer {
	return New(os.Stdout, os.Stderr)
}

// SetQuiet suppresses informational and success lines. Warnings and errors still print.
func (p *Printer) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// DisableColor turns colour codes off for this printer only.
func (p *Printer) DisableColor() {
	for _, c := range []*color.Color{p.info, p.success, p.warning, p.failure, p.green, p.blue} {
		c.DisableColor()
	}
}

// Out returns the informational writer.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Info prints an informational line.
func (p *Printer) Info(format string, args ...any) {
	if p.quiet {
		return
	}
	_, _ = p.info.Fprintln(p.out, fmt.Sprintf(format, args...))
}

// Success prints a completion line.
func (p *Printer) Success(format string, args ...any) {
	if p.quiet {
		return
	}
	_, _ = p.success.Fprintln(p.out, fmt.Sprintf(format, args...))
}

// Warning prints a warning to the error writer.
func (p *Printer) Warning(format string, args ...any) {
	_, _ = p.warning.Fprintln(p.errOut, fmt.Sprintf(format, args...))
}

// Error prints an error to the error writer.
func (p *Printer) Error(format string, args ...any) {
	_, _ = p.failure.Fprintln(p.errOut, fmt.Sprintf(format, args...))
}

// Line prints plain text.
func (p *Printer) Line(format string, args ...any) {
	if p.quiet {
		return
	}
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Green colours s green.
func (p *Printer) Green(s string) string {
	return p.green.Sprint(s)
}

// Blue colours s blue.
func (p *Printer) Blue(s string) string {
	return p.blue.Sprint(s)
}

// Table renders t to the informational writer.
func (p *Printer) Table(t *Table) {
	if p.quiet {
		return
	}
	_, _ = io.WriteString(p.out, t.Render())
}
