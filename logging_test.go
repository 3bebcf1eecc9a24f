package clusterview

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		dev     bool
		want    zapcore.Level
		wantErr bool
	}{
		{"info", false, zapcore.InfoLevel, false},
		{"debug", true, zapcore.DebugLevel, false},
		{"warn", false, zapcore.WarnLevel, false},
		{"loud", false, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.level, tt.dev)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewLogger(%q) succeeded", tt.level)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !l.Core().Enabled(tt.want) || l.Core().Enabled(tt.want-1) {
				t.Fatalf("logger not at %v", tt.want)
			}
		})
	}
}
