package main

import (
	"context"
	"testing"

	"tenki/internal/config"
)

// TestNewLogger verifies that the logger factory handles each configured level.
func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
	}{
		{"debug"},
		{"info"},
		{"warn"},
		{"error"},
		{"unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(tt.level)
			if logger == nil {
				t.Fatalf("newLogger(%q) returned nil", tt.level)
			}
		})
	}
}

// TestNewPool_InvalidURL verifies that a malformed database URL fails before
// any connection attempt.
func TestNewPool_InvalidURL(t *testing.T) {
	_, err := newPool(context.Background(), config.DatabaseConfig{URL: "not a url ::"})
	if err == nil {
		t.Fatal("newPool: expected error for malformed database URL")
	}
}
