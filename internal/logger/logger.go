package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new structured logger. level is a zap level name ("debug",
// "info", ...); empty picks debug in development and info in production.
func New(env, level string) (*zap.Logger, error) {
	lvl, err := parseLevel(env, level)
	if err != nil {
		return nil, err
	}

	// Always log to stdout for container compatibility
	core := zapcore.NewCore(newEncoder(env), zapcore.Lock(os.Stdout), lvl)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	), nil
}

// NewWithDefaults creates a logger from SERVER_ENV and LOG_LEVEL
func NewWithDefaults() *zap.Logger {
	env := os.Getenv("SERVER_ENV")
	if env == "" {
		env = "development"
	}

	logger, err := New(env, os.Getenv("LOG_LEVEL"))
	if err != nil {
		// Fallback to basic logger
		logger, _ = zap.NewProduction()
	}

	return logger
}

// newEncoder returns JSON in production and a colored console encoder otherwise
func newEncoder(env string) zapcore.Encoder {
	if env == "production" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.MessageKey = "message"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func parseLevel(env, level string) (zap.AtomicLevel, error) {
	if level == "" {
		if env == "production" {
			return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
		}
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
