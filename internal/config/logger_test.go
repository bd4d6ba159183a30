package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"defaults", "", "", false},
		{"debug json", "debug", "json", false},
		{"warn console", "warn", "console", false},
		{"invalid level", "banana", "json", true},
		{"invalid format", "info", "xml", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			v.Set("logging.level", tc.level)
			v.Set("logging.format", tc.format)

			logger, err := NewLogger(v)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestBuildLogger_WritesServiceFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pollnow.log")
	logger, err := BuildLogger(LogConfig{Level: "info", Format: "json", Output: []string{path}})
	if err != nil {
		t.Fatalf("BuildLogger: %v", err)
	}
	logger.Info("execute requested")
	logger.Debug("below level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("expected exactly one json entry, got %q: %v", data, err)
	}
	if entry["msg"] != "execute requested" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["service"] != "pollnow" {
		t.Errorf("service = %v, want pollnow", entry["service"])
	}
	if entry["version"] == "" || entry["version"] == nil {
		t.Error("version field missing")
	}
}
