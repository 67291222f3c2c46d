package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"debug", "json", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"warn", "console", zapcore.WarnLevel, zapcore.InfoLevel},
		{"bogus", "json", zapcore.InfoLevel, zapcore.DebugLevel},
		{"", "", zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format, "rentiq")
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if !logger.Core().Enabled(tt.enabled) {
				t.Errorf("level %v should be enabled", tt.enabled)
			}
			if logger.Core().Enabled(tt.muted) {
				t.Errorf("level %v should be disabled", tt.muted)
			}
		})
	}
}

func TestDecorate_AddsServiceFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	decorate(zap.New(core), "rentiq").Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["service_name"] != "rentiq" {
		t.Errorf("service_name = %v", fields["service_name"])
	}
	if _, ok := fields["hostname"]; !ok {
		t.Error("hostname field missing")
	}
}
