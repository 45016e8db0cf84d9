package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alphaframe/alphaframe/pkg/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
	}{
		{"debug level", "debug", zerolog.DebugLevel},
		{"info level", "info", zerolog.InfoLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
		{"unknown falls back to info", "verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Env:       "development",
				LogLevel:  tt.level,
				LogFormat: "json",
			}

			logger := New(cfg)
			if logger == nil {
				t.Fatal("New() returned nil")
			}

			if got := zerolog.GlobalLevel(); got != tt.wantLevel {
				t.Errorf("global level = %v, want %v", got, tt.wantLevel)
			}
		})
	}
}

func TestWithFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	logger := NewWriter(&buf)

	logger.WithFields(map[string]interface{}{
		"ticker": "AAPL",
		"rank":   1,
	}).Info("ranked")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["ticker"] != "AAPL" {
		t.Errorf("ticker field = %v, want AAPL", entry["ticker"])
	}
	if entry["message"] != "ranked" {
		t.Errorf("message = %v, want ranked", entry["message"])
	}
}

func TestWithError(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	logger := NewWriter(&buf)

	logger.WithError(errors.New("quote fetch failed")).Warn("market data gap")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["error"] != "quote fetch failed" {
		t.Errorf("error field = %v, want quote fetch failed", entry["error"])
	}
}
