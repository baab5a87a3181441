package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/dateutil"
)

// JournalHeader is the first row of every journal.
var JournalHeader = []string{"timestamp", "status", "source", "destination", "backend", "elapsed", "message", "error"}

// Journal appends one CSV row per outcome and flushes after each row, so
// an interrupted run keeps everything recorded so far.
type Journal struct {
	mu         sync.Mutex
	f          *os.File
	w          *csv.Writer
	path       string
	errorsOnly bool
	err        error
	now        func() time.Time
}

var _ doc2pdf.Recorder = (*Journal)(nil)

// OpenJournal creates dir/<pattern rendered at start> and writes the
// header. With errorsOnly, successes and existing outputs are not written.
func OpenJournal(dir, pattern string, errorsOnly bool, start time.Time) (*Journal, error) {
	name, err := dateutil.FileName(pattern, start)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) // #nosec G304 -- journal path built from user config
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}
	j := &Journal{f: f, w: csv.NewWriter(f), path: path, errorsOnly: errorsOnly, now: time.Now}
	if err := j.write(JournalHeader); err != nil {
		_ = f.Close()
		return nil, err
	}
	return j, nil
}

// Path returns the journal file path.
func (j *Journal) Path() string { return j.path }

// Record writes o. Write errors are kept and returned by Close.
func (j *Journal) Record(o doc2pdf.Outcome) {
	if j.errorsOnly && (o.IsSuccess() || o.Status == doc2pdf.StatusSkippedExists) {
		return
	}
	errText := ""
	if o.Err != nil {
		errText = o.Err.Error()
	}
	row := []string{
		j.now().Format(time.RFC3339),
		string(o.Status),
		o.Source,
		o.Destination,
		o.Backend,
		strconv.FormatFloat(o.Elapsed.Seconds(), 'f', 3, 64),
		o.Message,
		errText,
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.write(row); err != nil && j.err == nil {
		j.err = err
	}
}

func (j *Journal) write(row []string) error {
	if err := j.w.Write(row); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return nil
}

// Close flushes and closes the file. It returns the first write error.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return j.err
	}
	j.w.Flush()
	closeErr := j.f.Close()
	j.f = nil
	if j.err != nil {
		return j.err
	}
	return closeErr
}
