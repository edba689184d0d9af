// Package logging configures the global zerolog logger for the CLI.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/fluxbase-eu/bundlescore/internal/config"
)

// NewWriter returns the log sink for format: "console" for pretty output,
// anything else for raw JSON lines. Colours are only used on terminals.
func NewWriter(out io.Writer, format string) io.Writer {
	if format != "console" {
		return out
	}

	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(out),
	}
}

// SetupWithWriter installs the global logger writing to out
func SetupWithWriter(out io.Writer, cfg config.LoggingConfig, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(NewWriter(out, cfg.ConsoleFormat)).With().Timestamp().Logger()

	level := parseLogLevel(cfg.ConsoleLevel)
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

// parseLogLevel converts a level string to a zerolog level, defaulting to info
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
