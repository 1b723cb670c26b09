package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: " WARN ", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLevel(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, err := New(Options{Level: "debug", Development: true}); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := New(Options{Level: "nope"}); err == nil {
		t.Fatal("expected error for bad level")
	}
}

func TestStd(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	std := Std(zap.New(core), "server")

	std.Printf("Starting HTTP server on %s", ":8080")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].LoggerName != "server" {
		t.Errorf("logger name = %q, want server", entries[0].LoggerName)
	}
	if entries[0].Message != "Starting HTTP server on :8080" {
		t.Errorf("message = %q", entries[0].Message)
	}
}
