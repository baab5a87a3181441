package report

// Notes:
// - Outcomes are built with the doc2pdf constructors; no conversion runs

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
)

var journalStart = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("journal is not valid CSV: %v", err)
	}
	return rows
}

func sampleOutcomes() []doc2pdf.Outcome {
	return []doc2pdf.Outcome{
		doc2pdf.Succeeded("/in/a.docx", "/out/a.docx.pdf", "word", 1500*time.Millisecond, "converted"),
		doc2pdf.Failed("/in/b.xlsx", "excel", time.Second, errors.New("boom, \"quoted\"")),
		doc2pdf.Skipped(doc2pdf.StatusSkippedExists, "/in/c.txt", "", "destination exists"),
		doc2pdf.Skipped(doc2pdf.StatusSkippedPassword, "/in/d.pdf", "passthrough", "password protected"),
	}
}

// ---------------------------------------------------------------------------
// TestJournal
// ---------------------------------------------------------------------------

func TestJournal_AllOutcomes(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	j, err := OpenJournal(dir, "[conversion_log_]YYYYMMDD_HHmmss[.csv]", false, journalStart)
	if err != nil {
		t.Fatalf("OpenJournal() error = %v", err)
	}
	if want := filepath.Join(dir, "conversion_log_20250304_050607.csv"); j.Path() != want {
		t.Errorf("Path() = %q, want %q", j.Path(), want)
	}
	for _, o := range sampleOutcomes() {
		j.Record(o)
	}

	// rows are flushed before Close
	rows := readCSV(t, j.Path())
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want header + 4", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(JournalHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "success" || rows[1][3] != "/out/a.docx.pdf" || rows[1][5] != "1.500" {
		t.Errorf("success row = %v", rows[1])
	}
	if rows[2][1] != "failed" || !strings.Contains(rows[2][7], `"quoted"`) {
		t.Errorf("failure row = %v", rows[2])
	}
	if err := j.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestJournal_ErrorsOnly(t *testing.T) {
	t.Parallel()

	j, err := OpenJournal(t.TempDir(), "[errors.csv]", true, journalStart)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range sampleOutcomes() {
		j.Record(o)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, j.Path())
	if len(rows) != 3 {
		t.Fatalf("rows = %v, want header + failed + password", rows)
	}
	if rows[1][1] != "failed" || rows[2][1] != "skipped_password" {
		t.Errorf("statuses = %s, %s", rows[1][1], rows[2][1])
	}
}

func TestOpenJournal_BadPattern(t *testing.T) {
	t.Parallel()

	if _, err := OpenJournal(t.TempDir(), "[a/b.csv]", false, journalStart); err == nil {
		t.Error("OpenJournal() accepted a pattern with a separator")
	}
}
