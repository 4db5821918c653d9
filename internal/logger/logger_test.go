package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Production log entries are structured JSON with timestamp, level and message
func TestProperty_ProductionLogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all production log entries are in structured JSON format", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer

			core := zapcore.NewCore(newEncoder("production"), zapcore.AddSync(&buf), zapcore.DebugLevel)
			logger := zap.New(core)
			defer logger.Sync()

			switch level {
			case "debug":
				logger.Debug(message)
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				return false
			}

			if _, ok := logEntry["timestamp"]; !ok {
				return false
			}
			if logEntry["level"] != level {
				return false
			}
			return logEntry["message"] == message
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Error logs keep the fields attached by the caller
func TestProperty_ErrorLogsIncludeContext(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("error logs include context information", prop.ForAll(
		func(message string, orderID string) bool {
			var buf bytes.Buffer

			core := zapcore.NewCore(newEncoder("production"), zapcore.AddSync(&buf), zapcore.DebugLevel)
			logger := zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
			defer logger.Sync()

			logger.Error(message, zap.String("order_id", orderID))

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				return false
			}

			return logEntry["order_id"] == orderID
		},
		gen.AnyString(),
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("production", "")
	if err != nil || lvl.Level() != zapcore.InfoLevel {
		t.Errorf("expected info level in production, got %v (%v)", lvl.Level(), err)
	}

	lvl, err = parseLevel("development", "")
	if err != nil || lvl.Level() != zapcore.DebugLevel {
		t.Errorf("expected debug level in development, got %v (%v)", lvl.Level(), err)
	}

	lvl, err = parseLevel("production", "warn")
	if err != nil || lvl.Level() != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %v (%v)", lvl.Level(), err)
	}

	if _, err := parseLevel("production", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew(t *testing.T) {
	logger, err := New("production", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("production logger should not emit debug entries by default")
	}

	if _, err := New("production", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}
