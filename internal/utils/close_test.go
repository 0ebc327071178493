package utils

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestCloseLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := logger.FromZap(zap.New(core))

	Close(closer{}, "ok", log)
	Close(closer{err: errors.New("disk gone")}, "upload", log)
	Close(closer{err: errors.New("ignored")}, "no logger", nil)

	if logs.Len() != 1 {
		t.Fatalf("got %d log entries, want 1", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["resource"]; got != "upload" {
		t.Errorf("resource = %v, want upload", got)
	}
}
