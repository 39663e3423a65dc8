package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the logger described by cfg, writing to out.
func NewLogger(cfg LogConfig, out io.Writer) zerolog.Logger {
	var zlog zerolog.Logger
	if cfg.Format == "json" {
		zlog = zerolog.New(out)
	} else {
		zlog = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return zlog.Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
