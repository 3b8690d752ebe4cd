package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewSetsDefault(t *testing.T) {
	logger, err := New(Config{Level: "debug", Encoding: "json", Output: []string{"stderr"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled")
	}
	if L() == nil {
		t.Error("default logger is nil")
	}
}

func TestTee(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	other, otherLogs := observer.New(zapcore.WarnLevel)

	logger := Tee(zap.New(core), other)
	logger.Info("tick")
	logger.Warn("slow tick")

	if logs.Len() != 2 {
		t.Errorf("base core got %d entries, want 2", logs.Len())
	}
	if otherLogs.Len() != 1 {
		t.Errorf("extra core got %d entries, want 1", otherLogs.Len())
	}

	only := Tee(nil, other)
	only.Warn("again")
	if otherLogs.Len() != 2 {
		t.Errorf("extra core got %d entries, want 2", otherLogs.Len())
	}
}
