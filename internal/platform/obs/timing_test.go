package obs

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimeLogsOperation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	ctx := WithRequestID(context.Background(), "req-1")

	var err error
	Time(ctx, "ok.op")(&err)

	err = errors.New("boom")
	Time(ctx, "bad.op")(&err)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}

	if entries[0].Level != zapcore.DebugLevel || entries[0].ContextMap()["op"] != "ok.op" {
		t.Errorf("unexpected success entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["req_id"] != "req-1" {
		t.Errorf("unexpected failure entry: %+v", entries[1])
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger("chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := NewLogger(""); err != nil {
		t.Fatalf("empty level should default to info: %v", err)
	}
}
