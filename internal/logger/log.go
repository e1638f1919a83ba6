// internal/logger/log.go
package logger

import (
	"io"
	"os"
	"strings"

	"uihlog/internal/config"

	stdlog "log"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init
//
// Called once at startup. Builds the base logger from the config, installs
// it as the zerolog global and redirects the stdlib log package into it.
// The returned logger is what the CLI injects into the worker packages;
// they never reach for the global themselves.
//
//  1. Format:
//     - LogPretty=true: colored console output (default on a terminal)
//     - LogPretty=false: one JSON object per line
//
//  2. Common fields:
//     - every line carries "run" so the diagnostics of one conversion can be
//     told apart when several runs share a log sink.
//
// Diagnostics go to stderr; stdout stays free for the version command.
func Init(cfg config.Config) zerolog.Logger {
	return New(cfg, os.Stderr)
}

// New is Init with an explicit destination.
func New(cfg config.Config, out io.Writer) zerolog.Logger {

	// -------------------------------------------------------------------
	// 1) Level
	// -------------------------------------------------------------------
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err == nil && l != zerolog.NoLevel {
		level = l
	}
	zerolog.SetGlobalLevel(level)

	// -------------------------------------------------------------------
	// 2) Output format
	// -------------------------------------------------------------------
	w := out
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	// -------------------------------------------------------------------
	// 3) Base logger with common fields
	// -------------------------------------------------------------------
	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("run", cfg.RunID).
		Logger()

	// -------------------------------------------------------------------
	// 4) Replace globals
	// -------------------------------------------------------------------
	zlog.Logger = logger

	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)

	return logger
}
