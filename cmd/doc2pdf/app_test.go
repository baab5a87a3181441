package main

// Notes:
// - runMain: we test command dispatch and the exit codes it returns. The
//   convert path uses mockEngine so no backend runs.
// - main() and the automaxprocs setup are not tested: they only wire
//   os.Args and os.Exit.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	doc2pdf "github.com/alnah/go-doc2pdf"
)

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no args", []string{"doc2pdf"}, ExitUsage, "", "Usage: doc2pdf"},
		{"version command", []string{"doc2pdf", "version"}, ExitSuccess, "doc2pdf " + Version, ""},
		{"version flag", []string{"doc2pdf", "--version"}, ExitSuccess, "doc2pdf " + Version, ""},
		{"help flag", []string{"doc2pdf", "--help"}, ExitSuccess, "Commands:", ""},
		{"short help flag", []string{"doc2pdf", "-h"}, ExitSuccess, "Commands:", ""},
		{"help command", []string{"doc2pdf", "help"}, ExitSuccess, "Commands:", ""},
		{"help convert", []string{"doc2pdf", "help", "convert"}, ExitSuccess, "--method", ""},
		{"help unknown", []string{"doc2pdf", "help", "bogus"}, ExitUsage, "", "Unknown command: bogus"},
		{"convert help", []string{"doc2pdf", "convert", "--help"}, ExitSuccess, "Usage: doc2pdf convert", ""},
		{"convert without input", []string{"doc2pdf", "convert"}, ExitInput, "", "no input specified"},
		{"unknown flag", []string{"doc2pdf", "convert", "--bogus"}, ExitUsage, "", "invalid usage"},
		{"missing input", []string{"doc2pdf", "/does/not/exist.docx"}, ExitInput, "", "source file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(&mockEngine{})
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout.String())
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_ImplicitConvert - A path as first argument means convert
// ---------------------------------------------------------------------------

func TestRunMain_ImplicitConvert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	engine := &mockEngine{stats: doc2pdf.Stats{Total: 1, Succeeded: 1}}
	env, _, stderr := testEnv(engine)

	code := runMain([]string{"doc2pdf", src, "--no-journal", "--no-report", "-q"}, env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitSuccess, stderr.String())
	}
	if len(engine.calls) != 1 || engine.calls[0] != src+"|" {
		t.Errorf("engine calls = %v, want [%s|]", engine.calls, src)
	}
	if !engine.closed {
		t.Error("engine was not closed")
	}
}

// ---------------------------------------------------------------------------
// TestHasFlag - Verbose detection before flag parsing
// ---------------------------------------------------------------------------

func TestHasFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"present", []string{"convert", "-v", "dir"}, true},
		{"long form", []string{"dir", "--verbose"}, true},
		{"absent", []string{"convert", "dir"}, false},
		{"after terminator", []string{"convert", "--", "-v"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := hasFlag(tt.args, "-v", "--verbose"); got != tt.want {
				t.Errorf("hasFlag(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}
