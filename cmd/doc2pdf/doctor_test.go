package main

// Notes:
// - runDoctorCmd is tested through its output with mockEngine supplying the
//   backend list, so results do not depend on installed office suites.
// - Chrome detection depends on the machine; only consistency between the
//   JSON fields is checked.

import (
	"encoding/json"
	"strings"
	"testing"

	doc2pdf "github.com/alnah/go-doc2pdf"
)

func doctorBackends(libreOffice bool) []doc2pdf.BackendStatus {
	return []doc2pdf.BackendStatus{
		{Name: "word", Family: doc2pdf.FamilyNative, Extensions: []string{".docx"}, Available: false},
		{Name: "libreoffice", Family: doc2pdf.FamilyLibreOffice, Extensions: []string{".docx"}, Available: libreOffice},
		{Name: "fallback-word", Family: doc2pdf.FamilyFallback, Extensions: []string{".docx"}, Available: true},
		{Name: "text", Family: doc2pdf.FamilyLeaf, Extensions: []string{".txt"}, Available: true},
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_JSONOutput - JSON structure
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSONOutput(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(&mockEngine{backends: doctorBackends(true)})
	code := runDoctorCmd([]string{"--json"}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
	}
	if len(result.Backends) != 4 || result.Backends[1].Name != "libreoffice" {
		t.Errorf("backends = %+v", result.Backends)
	}
	if result.Status == "errors" {
		t.Errorf("status = errors with a fallback available: %v", result.Errors)
	}
	if code != ExitSuccess {
		t.Errorf("exit code = %d, want %d", code, ExitSuccess)
	}
	if result.Browser.Found && result.Browser.Path == "" {
		t.Error("browser found without a path")
	}
	if !result.System.TempWritable {
		t.Error("temp directory reported not writable")
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctor - Status from backend availability
// ---------------------------------------------------------------------------

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	t.Run("missing libreoffice warns", func(t *testing.T) {
		t.Parallel()

		r := runDoctor(doctorBackends(false), "")
		if r.Status == "ready" {
			t.Error("status = ready, want warnings")
		}
		if !containsText(r.Warnings, "LibreOffice not found") {
			t.Errorf("warnings = %v", r.Warnings)
		}
		if !containsText(r.Warnings, "word automation unavailable") {
			t.Errorf("warnings = %v", r.Warnings)
		}
	})

	t.Run("no document backend is an error", func(t *testing.T) {
		t.Parallel()

		r := runDoctor([]doc2pdf.BackendStatus{
			{Name: "text", Family: doc2pdf.FamilyLeaf, Available: true},
		}, "")
		if r.Status != "errors" {
			t.Errorf("status = %q, want errors", r.Status)
		}
	})

	t.Run("configured browser path missing", func(t *testing.T) {
		t.Parallel()

		r := runDoctor(doctorBackends(true), "/does/not/exist/chrome")
		if r.Browser.Found {
			t.Error("browser found at missing path")
		}
		if !containsText(r.Warnings, "/does/not/exist/chrome") {
			t.Errorf("warnings = %v", r.Warnings)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_HumanOutput - Human-readable sections
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_HumanOutput(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(&mockEngine{backends: doctorBackends(false)})
	runDoctorCmd(nil, env)

	out := stdout.String()
	for _, want := range []string{"Backends (in chain order)", "[--]  libreoffice", "[OK]  text", "Chrome/Chromium", "Environment", "Status:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDoctorCmd_BadFlag(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(&mockEngine{})
	if code := runDoctorCmd([]string{"--bogus"}, env); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
}

func containsText(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
