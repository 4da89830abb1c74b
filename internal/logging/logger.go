package logging

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// LOG_LEVEL=debug|info|warn|error (default: info).
const envLogLevel = "LOG_LEVEL"

type ShutdownFunc func() error

// NewLogger builds a slog logger backed by a production zap core with ISO8601
// timestamps.
func NewLogger() (*slog.Logger, ShutdownFunc, error) {
	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level := parseLogLevel(os.Getenv(envLogLevel)); level != nil {
		logConfig.Level = zap.NewAtomicLevelAt(*level)
	}
	zapLog, err := logConfig.Build()
	if err != nil {
		return nil, nil, err
	}
	core := zapLog.Core()
	return slog.New(zapslog.NewHandler(core, zapslog.WithCaller(true))), core.Sync, nil
}

func FallbackLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// Setup installs the zap backed logger as the slog default, falling back to a
// plain JSON handler when zap cannot be built.
func Setup() ShutdownFunc {
	logger, shutdown, err := NewLogger()
	if err != nil {
		logger = FallbackLogger()
		logger.Error("error creating zap logger, using fallback", "error", err)
		shutdown = func() error { return nil }
	}
	slog.SetDefault(logger)
	return shutdown
}

func parseLogLevel(s string) *zapcore.Level {
	var l zapcore.Level
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		l = zapcore.DebugLevel
	case "warn":
		l = zapcore.WarnLevel
	case "error":
		l = zapcore.ErrorLevel
	default:
		return nil
	}
	return &l
}
