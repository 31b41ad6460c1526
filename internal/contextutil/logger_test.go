package contextutil

import (
	"context"
	"log/slog"
	"testing"
)

func TestLoggerFromContext_ReturnsStored(t *testing.T) {
	logger := slog.Default().With("request_id", "abc")
	ctx := WithLogger(context.Background(), logger)

	if got := LoggerFromContext(ctx); got != logger {
		t.Error("LoggerFromContext() did not return the stored logger")
	}
}

func TestLoggerFromContext_FallsBackToDefault(t *testing.T) {
	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Error("LoggerFromContext() without stored logger did not return default")
	}
}
