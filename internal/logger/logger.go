// Package logger provides levelled console logging for wikimd.
// Debug, Info and Warn are only printed in verbose mode; Error is always
// printed. Output goes to stderr unless redirected with SetOutput.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

var (
	debugTag = color.New(color.FgCyan).SprintFunc()("[DEBUG]")
	infoTag  = color.New(color.FgGreen).SprintFunc()("[INFO]")
	warnTag  = color.New(color.FgYellow).SprintFunc()("[WARN]")
	errorTag = color.New(color.FgRed).SprintFunc()("[ERROR]")
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the writer logs go to. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Output returns the current log writer.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

func logf(always bool, tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if always || verbose {
		fmt.Fprintf(output, tag+" "+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(false, debugTag, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(false, infoTag, format, args...)
}

// Warn prints a warning if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf(false, warnTag, format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	logf(true, errorTag, format, args...)
}
