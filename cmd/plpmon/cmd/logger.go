package cmd

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"plp-monitor/internal/config"
)

// setupLogger creates a zerolog logger from the logging config.
// Logs go to stderr so stdout stays the run report; when a file is
// configured a rotating JSON copy is written there too.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	if cfg.File != "" {
		output = io.MultiWriter(output, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// resolveLogging applies the --log-level override.
func resolveLogging(cfg config.LoggingConfig) config.LoggingConfig {
	if level := GetLogLevel(); level != "" {
		cfg.Level = level
	}
	return cfg
}

// bootstrapLogger is used before the config is loaded.
func bootstrapLogger() zerolog.Logger {
	return setupLogger(config.LoggingConfig{Level: "error", Format: "console"})
}
