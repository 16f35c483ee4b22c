// Package logger builds the zerolog logger shared by the daemon and the CLI.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const timeFormat = "15:04:05"

// Logger couples the configured logger with the file it writes to, if any
type Logger struct {
	zerolog.Logger
	file *os.File
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New creates a logger at level. With an empty file it writes to stderr,
// colored when stderr is a terminal; otherwise it appends to file without
// colors.
func New(level, file string) (*Logger, error) {
	var (
		out     io.Writer = os.Stderr
		noColor           = color.NoColor
		f       *os.File
	)

	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create log directory")
		}

		var err error
		f, err = os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open log file")
		}
		out = f
		noColor = true
	}

	return &Logger{Logger: build(out, level, noColor), file: f}, nil
}

func build(out io.Writer, level string, noColor bool) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
		NoColor:    noColor,
	}
	return zerolog.New(consoleWriter).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Close closes the log file if one is open
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
