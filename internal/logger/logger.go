// Package logger provides process-wide logging for extracto.
// Messages go through a log/slog handler (text or JSON). Verbose mode,
// enabled via the --verbose flag, lowers the level to debug and prints
// section headers so users can follow the ingest pipeline.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Output formats accepted by Configure.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatAuto = "auto"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	format            = FormatText
	level             = slog.LevelInfo
	base              = build()
)

// build creates the slog logger from the current settings (caller must hold lock).
func build() *slog.Logger {
	lvl := level
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if resolveFormat(format, output) == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}

// resolveFormat maps "auto" to text on a terminal and JSON elsewhere.
func resolveFormat(f string, w io.Writer) string {
	if f != FormatAuto {
		return f
	}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return FormatText
	}
	return FormatJSON
}

// Configure sets the minimum level (DEBUG, INFO, WARN, ERROR) and the
// output format (text, json, auto). Unknown values fall back to INFO/text.
func Configure(levelName, formatName string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(levelName)
	switch f := strings.ToLower(strings.TrimSpace(formatName)); f {
	case FormatJSON, FormatAuto:
		format = f
	default:
		format = FormatText
	}
	base = build()
}

// ParseLevel parses a level name, defaulting to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build()
}

// Logger returns the underlying structured logger for key/value logging.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debug logs a formatted message at debug level (visible in verbose mode).
func Debug(format string, args ...any) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// Info logs a formatted informational message.
func Info(format string, args ...any) {
	Logger().Info(fmt.Sprintf(format, args...))
}

// Warn logs a formatted warning.
func Warn(format string, args ...any) {
	Logger().Warn(fmt.Sprintf(format, args...))
}

// Error logs a formatted error.
func Error(format string, args ...any) {
	Logger().Error(fmt.Sprintf(format, args...))
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
