package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	// Sensible default so packages can log before InitLogging runs (tests, early boot).
	log = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
}

// InitLogging configures the global logger. If filePath is non-empty the log
// is written both to stderr (human readable) and to the file (JSON).
func InitLogging(filePath string) {
	writers := []io.Writer{consoleWriter(os.Stderr)}

	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err == nil {
			f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				writers = append(writers, f)
			}
		}
	}

	log = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

// SetLevel adjusts the global minimum level ("debug", "info", "warn", "error").
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func DebugLog(ctx context.Context, format string, args ...interface{}) {
	log.Debug().Msg(sprintf(format, args...))
}

func InfoLog(ctx context.Context, format string, args ...interface{}) {
	log.Info().Msg(sprintf(format, args...))
}

func WarnLog(ctx context.Context, format string, args ...interface{}) {
	log.Warn().Msg(sprintf(format, args...))
}

func ErrorLog(ctx context.Context, format string, args ...interface{}) {
	log.Error().Msg(sprintf(format, args...))
}

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
