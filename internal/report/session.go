package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/dateutil"
)

// ExtensionStats counts outcomes for one source extension.
type ExtensionStats struct {
	Count       int
	Succeeded   int
	Failed      int
	Exists      int
	Password    int
	Unsupported int
	SourceBytes int64
}

// Totals summarises a session.
type Totals struct {
	Files       int
	Succeeded   int
	Failed      int
	Skipped     int
	Exists      int
	Password    int
	Pages       int
	SourceBytes int64
	OutputBytes int64
	Elapsed     time.Duration // sum of conversion times
}

// Session collects every outcome of a run for the end-of-run report.
type Session struct {
	ID        string
	Root      string
	Output    string
	Recursive bool
	Start     time.Time
	End       time.Time

	mu        sync.Mutex
	totals    Totals
	byExt     map[string]*ExtensionStats
	converted []doc2pdf.Outcome
	failures  []doc2pdf.Outcome
	passwords []string

	// countPages is swapped in tests.
	countPages func(path string) (int, error)
}

var _ doc2pdf.Recorder = (*Session)(nil)

// NewSession starts a session with a fresh run id.
func NewSession(root, output string, recursive bool) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Root:       root,
		Output:     output,
		Recursive:  recursive,
		Start:      time.Now(),
		byExt:      make(map[string]*ExtensionStats),
		countPages: CountPages,
	}
}

// Record adds o to the session.
func (s *Session) Record(o doc2pdf.Outcome) {
	var srcSize int64
	if info, err := os.Stat(o.Source); err == nil && !info.IsDir() {
		srcSize = info.Size()
	}
	var outSize int64
	pages := 0
	if o.IsSuccess() && o.Destination != "" {
		if info, err := os.Stat(o.Destination); err == nil && !info.IsDir() {
			outSize = info.Size()
			if n, err := s.countPages(o.Destination); err == nil {
				pages = n
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ext := doc2pdf.Extension(o.Source)
	if ext == "" {
		ext = "(none)"
	}
	st := s.byExt[ext]
	if st == nil {
		st = &ExtensionStats{}
		s.byExt[ext] = st
	}
	st.Count++
	st.SourceBytes += srcSize

	t := &s.totals
	t.Files++
	t.SourceBytes += srcSize
	t.OutputBytes += outSize
	t.Pages += pages
	t.Elapsed += o.Elapsed

	switch o.Status {
	case doc2pdf.StatusSuccess:
		st.Succeeded++
		t.Succeeded++
		s.converted = append(s.converted, o)
	case doc2pdf.StatusFailed:
		st.Failed++
		t.Failed++
		s.failures = append(s.failures, o)
	case doc2pdf.StatusSkippedExists:
		st.Exists++
		t.Skipped++
		t.Exists++
	case doc2pdf.StatusSkippedPassword:
		st.Password++
		t.Skipped++
		t.Password++
		s.passwords = append(s.passwords, o.Source)
	default:
		st.Unsupported++
		t.Skipped++
	}
}

// Finish stamps the end time.
func (s *Session) Finish() {
	s.mu.Lock()
	s.End = time.Now()
	s.mu.Unlock()
}

// Totals returns the counters so far.
func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Summary is the short console version of the report.
func (s *Session) Summary() string {
	t := s.Totals()
	return fmt.Sprintf("%d files: %d converted, %d skipped (%d existing, %d password), %d failed, %d pages",
		t.Files, t.Succeeded, t.Skipped, t.Exists, t.Password, t.Failed, t.Pages)
}

// WriteTo writes the full text report.
func (s *Session) WriteTo(w io.Writer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	sep := strings.Repeat("=", 80)
	light := strings.Repeat("-", 80)
	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }
	t := s.totals

	line("%s", sep)
	line("CONVERSION REPORT - %s", s.Start.Format("2006-01-02 15:04:05"))
	line("%s", sep)
	line("")
	line("SESSION")
	line("%s", light)
	line("  Run id            : %s", s.ID)
	if s.Root != "" {
		line("  Source            : %s", s.Root)
	}
	if s.Output != "" {
		line("  Output            : %s", s.Output)
	}
	line("  Recursive         : %s", yesNo(s.Recursive))
	if !s.End.IsZero() {
		line("  Duration          : %s", s.End.Sub(s.Start).Round(time.Second))
	}
	line("")

	line("SUMMARY")
	line("%s", light)
	line("  Files             : %d", t.Files)
	if t.Files > 0 {
		line("  Converted         : %d (%.0f%%)", t.Succeeded, float64(t.Succeeded)*100/float64(t.Files))
	} else {
		line("  Converted         : 0")
	}
	line("  Skipped           : %d", t.Skipped)
	line("    - existing      : %d", t.Exists)
	line("    - password      : %d", t.Password)
	line("  Failed            : %d", t.Failed)
	line("  Pages produced    : %d", t.Pages)
	line("")

	if t.SourceBytes > 0 {
		line("VOLUMES")
		line("%s", light)
		line("  Sources           : %s", formatSize(t.SourceBytes))
		line("  PDFs              : %s", formatSize(t.OutputBytes))
		line("  Conversion time   : %s", t.Elapsed.Round(100*time.Millisecond))
		if t.Succeeded > 0 {
			line("  Average per file  : %.2fs", t.Elapsed.Seconds()/float64(t.Succeeded))
		}
		line("")
	}

	if len(s.byExt) > 0 {
		line("BY EXTENSION")
		line("%s", light)
		exts := make([]string, 0, len(s.byExt))
		for ext := range s.byExt {
			exts = append(exts, ext)
		}
		slices.SortFunc(exts, func(a, b string) int {
			if d := s.byExt[b].Count - s.byExt[a].Count; d != 0 {
				return d
			}
			return strings.Compare(a, b)
		})
		for _, ext := range exts {
			st := s.byExt[ext]
			line("  %-8s : %4d files (%10s) -> %s", ext, st.Count, formatSize(st.SourceBytes), st.breakdown())
		}
		line("")
	}

	if len(s.converted) > 0 {
		line("CONVERTED")
		line("%s", light)
		for _, o := range s.converted {
			line("  %s", s.relative(o.Source))
			line("      -> %s (%s, %.1fs)", filepath.Base(o.Destination), o.Backend, o.Elapsed.Seconds())
		}
		line("")
	}

	if len(s.failures) > 0 {
		line("FAILURES")
		line("%s", light)
		for i, o := range s.failures {
			line("  [%d] %s", i+1, filepath.Base(o.Source))
			line("      Path    : %s", o.Source)
			line("      Backend : %s", o.Backend)
			line("      Reason  : %s", o.Message)
			if o.Err != nil && o.Err.Error() != o.Message {
				line("      Error   : %s", o.Err)
			}
			line("")
		}
	}

	if len(s.passwords) > 0 {
		line("PASSWORD PROTECTED")
		line("%s", light)
		for _, p := range s.passwords {
			line("  - %s", p)
		}
		line("")
	}

	line("%s", sep)
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Save writes the report to dir under the rendered pattern and returns
// its path.
func (s *Session) Save(dir, pattern string) (string, error) {
	name, err := dateutil.FileName(pattern, s.Start)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path) // #nosec G304 -- report path built from user config
	if err != nil {
		return "", fmt.Errorf("creating report: %w", err)
	}
	if _, err := s.WriteTo(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, f.Close()
}

func (s *Session) relative(path string) string {
	if s.Root != "" {
		if rel, err := filepath.Rel(s.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filepath.Base(path)
}

func (st *ExtensionStats) breakdown() string {
	var parts []string
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(st.Succeeded, "ok")
	add(st.Failed, "failed")
	add(st.Exists, "existing")
	add(st.Password, "password")
	add(st.Unsupported, "unsupported")
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// CountPages returns the page count of a PDF file. Malformed files make
// the reader panic; that is reported as an error.
func CountPages(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading %s: %v", path, r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}

func formatSize(n int64) string {
	switch {
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	case n < 1<<30:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/(1<<30))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
