// Package logger builds the process-wide zerolog logger from client settings.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrLogDirectoryCreationFailed = errors.MustNewCode("logger.directory_creation_failed")
	ErrLogFileOpenFailed          = errors.MustNewCode("logger.file_open_failed")
)

// Config selects level, output format and an optional log file.
type Config struct {
	Level  string
	Format string
	File   string

	// Out receives console or JSON output. Defaults to os.Stderr.
	Out io.Writer
}

// Logger wraps the configured zerolog logger together with the log file it owns.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Setup creates a configured zerolog logger. Unknown levels fall back to info.
func Setup(cfg Config) (*Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	var writers []io.Writer
	switch strings.ToLower(cfg.Format) {
	case "json":
		writers = append(writers, out)
	default:
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		})
	}

	result := &Logger{}
	if cfg.File != "" {
		file, err := openLogFile(cfg.File)
		if err != nil {
			return nil, err
		}
		result.file = file
		// The file always receives JSON lines.
		writers = append(writers, file)
	}

	var w io.Writer
	if len(writers) == 1 {
		w = writers[0]
	} else {
		w = zerolog.MultiLevelWriter(writers...)
	}

	result.Logger = zerolog.New(w).Level(level).With().
		Timestamp().
		Str("component", "plv-client").
		Logger()
	return result, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.New(ErrLogDirectoryCreationFailed, "failed to create log directory", err).
			AddContext("path", path)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.New(ErrLogFileOpenFailed, "failed to open log file", err).
			AddContext("path", path)
	}
	return file, nil
}
