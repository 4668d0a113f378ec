package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a level name as it appears in LOG_LEVEL or a config file.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"

	// LevelDisabled drops every event, used by the terminal browser.
	LevelDisabled LogLevel = "disabled"
)

// Config controls the global logger.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console format.
	Pretty bool

	// NoColor strips ANSI colors from pretty output.
	NoColor bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs a new global logger built from cfg and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}

// ParseLevel maps a level name to a zerolog.Level. Matching ignores case and
// surrounding spaces; unknown names fall back to info.
func ParseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns a child of the global logger tagged with component.
// Loggers taken before Setup keep the old output.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WithPage adds the catalog page coordinates to logger.
func WithPage(logger zerolog.Logger, page, offset, limit int) zerolog.Logger {
	return logger.With().
		Int("page", page).
		Int("offset", offset).
		Int("limit", limit).
		Logger()
}
