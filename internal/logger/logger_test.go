package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		opts      Options
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"prod", "prod", Options{Version: "1.2.3"}, zapcore.InfoLevel, false},
		{"local", "local", Options{}, zapcore.DebugLevel, false},
		{"test is quiet", "test", Options{}, zapcore.WarnLevel, false},
		{"level override", "prod", Options{Level: "error"}, zapcore.ErrorLevel, false},
		{"bad level", "prod", Options{Level: "loud"}, 0, true},
		{"unknown env", "staging", Options{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := l.Level(); got != tt.wantLevel {
				t.Errorf("level = %v, want %v", got, tt.wantLevel)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	fallback := zap.NewExample()
	scoped := zap.NewExample().With(zap.String("request_id", "r-1"))

	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("expected fallback for empty context")
	}
	if got := FromContext(context.Background(), nil); got == nil {
		t.Error("expected no-op logger, got nil")
	}

	ctx := ContextWithLogger(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Error("expected request-scoped logger")
	}
}
