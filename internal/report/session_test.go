package report

// Notes:
// - countPages is replaced so the tests need no real PDFs, except
//   TestCountPages which checks the unreadable-file path

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
)

func newTestSession(t *testing.T) (*Session, string) {
	t.Helper()
	root := t.TempDir()
	s := NewSession(root, "", true)
	s.countPages = func(string) (int, error) { return 3, nil }
	return s, root
}

func write(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestSession
// ---------------------------------------------------------------------------

func TestSession_Totals(t *testing.T) {
	t.Parallel()

	s, root := newTestSession(t)
	src := write(t, filepath.Join(root, "a.docx"), "12345")
	dst := write(t, filepath.Join(root, "a.docx.pdf"), "%PDF-1.4")

	s.Record(doc2pdf.Succeeded(src, dst, "word", time.Second, "ok"))
	s.Record(doc2pdf.Failed(filepath.Join(root, "b.docx"), "word", time.Second, errors.New("boom")))
	s.Record(doc2pdf.Skipped(doc2pdf.StatusSkippedPassword, filepath.Join(root, "c.xlsx"), "excel", "locked"))
	s.Record(doc2pdf.Skipped(doc2pdf.StatusSkippedExists, filepath.Join(root, "d.txt"), "", "exists"))
	s.Record(doc2pdf.Skipped(doc2pdf.StatusSkippedUnsupported, filepath.Join(root, "e.bin"), "", "unsupported"))

	got := s.Totals()
	want := Totals{Files: 5, Succeeded: 1, Failed: 1, Skipped: 3, Exists: 1, Password: 1, Pages: 3, SourceBytes: 5, OutputBytes: 8, Elapsed: 2 * time.Second}
	if got != want {
		t.Errorf("Totals() = %+v, want %+v", got, want)
	}
	if st := s.byExt[".docx"]; st.Count != 2 || st.Succeeded != 1 || st.Failed != 1 {
		t.Errorf(".docx stats = %+v", st)
	}
	if !strings.Contains(s.Summary(), "1 converted") || !strings.Contains(s.Summary(), "3 pages") {
		t.Errorf("Summary() = %q", s.Summary())
	}
}

func TestSession_Report(t *testing.T) {
	t.Parallel()

	s, root := newTestSession(t)
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}
	src := write(t, filepath.Join(root, "sub", "a.docx"), "x")
	s.Record(doc2pdf.Succeeded(src, src+".pdf", "word", time.Second, "ok"))
	s.Record(doc2pdf.Failed(filepath.Join(root, "b.xlsx"), "excel", 0, errors.New("sheet broken")))
	s.Record(doc2pdf.Skipped(doc2pdf.StatusSkippedPassword, filepath.Join(root, "c.pdf"), "passthrough", "locked"))
	s.Finish()

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Run id            : " + s.ID,
		"Recursive         : yes",
		"Converted         : 1 (33%)",
		filepath.Join("sub", "a.docx"),
		"-> a.docx.pdf (word, 1.0s)",
		"FAILURES",
		"sheet broken",
		"PASSWORD PROTECTED",
		"c.pdf",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}
}

func TestSession_Relative(t *testing.T) {
	t.Parallel()

	s, root := newTestSession(t)
	if got := s.relative(filepath.Join(root, "sub", "x.doc")); got != filepath.Join("sub", "x.doc") {
		t.Errorf("relative() = %q", got)
	}
	if got := s.relative("/elsewhere/y.doc"); got != "y.doc" {
		t.Errorf("relative(outside) = %q", got)
	}
}

func TestSession_Save(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	s.Start = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := s.Save(dir, "[conversion_report_]YYYYMMDD_HHmmss[.txt]")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Base(path) != "conversion_report_20250102_030405.txt" {
		t.Errorf("Save() path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("CONVERSION REPORT")) {
		t.Errorf("saved report = %q", data)
	}
}

func TestNewSession_UniqueIDs(t *testing.T) {
	t.Parallel()

	a, b := NewSession("", "", false), NewSession("", "", false)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids %q and %q", a.ID, b.ID)
	}
}

func TestCountPages_NotAPDF(t *testing.T) {
	t.Parallel()

	path := write(t, filepath.Join(t.TempDir(), "x.pdf"), "not a pdf at all")
	if _, err := CountPages(path); err == nil {
		t.Error("CountPages() error = nil for garbage")
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
