package cliconfig

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bft-labs/threadworker/pkg/log"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Logger returns the bootstrap console logger used before the configuration
// is loaded.
func Logger() zerolog.Logger {
	return logger
}

// NewLogger builds the logger described by cfg, writing to w. The returned
// function flushes buffered entries and should be called before exit.
func NewLogger(cfg Config, w io.Writer) (log.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	switch cfg.LogBackend {
	case LogBackendZap:
		return newZapLogger(cfg, level, w)
	default:
		out := w
		if cfg.LogFormat != LogFormatJSON {
			out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}
		zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
		return log.NewZerologAdapterWithLogger(zl), func() {}, nil
	}
}

func newZapLogger(cfg Config, level zerolog.Level, w io.Writer) (log.Logger, func(), error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.LogFormat == LogFormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapLevel(level))
	adapter := log.NewZapAdapter(zap.New(core))
	return adapter, func() { _ = adapter.Sync() }, nil
}

// zapLevel maps a zerolog level onto the closest zap level.
func zapLevel(l zerolog.Level) zapcore.Level {
	switch {
	case l <= zerolog.DebugLevel:
		return zapcore.DebugLevel
	case l == zerolog.InfoLevel:
		return zapcore.InfoLevel
	case l == zerolog.WarnLevel:
		return zapcore.WarnLevel
	case l == zerolog.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}
