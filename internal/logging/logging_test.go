package logging

// Notes:
// - Console output goes to a buffer; the file core writes into t.TempDir()

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ConsoleLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, cleanup, err := New(Config{Level: "warn", Console: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	cleanup()

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("console output = %q", out)
	}
}

func TestNew_FileCore(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, cleanup, err := New(Config{Level: "error", File: path, FileLevel: "debug", Console: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("file only")
	cleanup()

	if buf.Len() != 0 {
		t.Errorf("console got %q, want nothing", buf.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("file line is not JSON: %q", data)
	}
	if entry["msg"] != "file only" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestNew_InvalidLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"console", Config{Level: "loud"}},
		{"file", Config{File: filepath.Join(t.TempDir(), "x.log"), FileLevel: "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := New(tt.cfg); err == nil {
				t.Error("New() error = nil")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "debug", "info", "warn", "error"} {
		if err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q) = %v", s, err)
		}
	}
	if err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) = nil")
	}
}
