// Package output writes progress diagnostics and machine-readable output.
package output

import (
	"fmt"
	"io"
)

// Logger writes progress to stderr. Steps and details are only written in
// verbose mode; warnings are always written. A nil *Logger discards everything.
type Logger struct {
	w       io.Writer
	verbose bool
}

// NewLogger returns a Logger writing to w.
func NewLogger(w io.Writer, verbose bool) *Logger {
	return &Logger{w: w, verbose: verbose}
}

// Verbose reports whether steps and details are written.
func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

// Step logs the start of a stage: "• Connecting wallet...".
func (l *Logger) Step(format string, args ...interface{}) {
	if !l.Verbose() {
		return
	}
	fmt.Fprintf(l.w, "• "+format+"\n", args...)
}

// Detail logs an indented line under the current step.
func (l *Logger) Detail(format string, args ...interface{}) {
	if !l.Verbose() {
		return
	}
	fmt.Fprintf(l.w, "  "+format+"\n", args...)
}

// Warn logs a warning regardless of verbosity.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.w, "⚠ Warning: "+format+"\n", args...)
}
