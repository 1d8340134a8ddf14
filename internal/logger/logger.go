// Package logger builds the service-wide zerolog logger.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/noah-isme/sai-review-api/internal/config"
)

// New returns a JSON logger writing to stdout and, when cfg.LogFile is set,
// to a size-rotated file as well. The returned closer releases the file.
func New(cfg config.Config) (zerolog.Logger, io.Closer) {
	return build(cfg, os.Stdout)
}

func build(cfg config.Config, console io.Writer) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{console}
	var closer io.Closer = nopCloser{}

	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("app", cfg.AppName).
		Str("env", cfg.AppEnv).
		Logger()

	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
