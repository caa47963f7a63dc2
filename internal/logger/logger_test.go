package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env, level string
		wantErr    bool
	}{
		{"prod", "", false},
		{"local", "debug", false},
		{"docker", "warn", false},
		{"staging", "", true},
		{"prod", "loud", true},
	}
	for _, tc := range tests {
		l, err := NewLogger(tc.env, tc.level)
		if (err != nil) != tc.wantErr {
			t.Errorf("NewLogger(%q, %q) err = %v, wantErr %v", tc.env, tc.level, err, tc.wantErr)
		}
		if l != nil {
			_ = l.Sync()
		}
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "error")
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at error level")
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected no-op logger")
	}
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx, _ = With(ctx, zap.String("run_id", "r1"))
	FromContext(ctx).Info("stage done")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].ContextMap()["run_id"] != "r1" {
		t.Errorf("fields = %v", entries[0].ContextMap())
	}
}
