package doc2pdf

import (
	"fmt"
	"time"
)

// Status is the final classification of a conversion attempt.
type Status string

// Status values. The string forms are stable and appear in journals.
const (
	StatusSuccess            Status = "success"
	StatusFailed             Status = "failed"
	StatusSkippedPassword    Status = "skipped_password"
	StatusSkippedExists      Status = "skipped_exists"
	StatusSkippedUnsupported Status = "skipped_unsupported"
	StatusSkippedPDF         Status = "skipped_pdf"
)

// Statuses lists every status in reporting order.
var Statuses = []Status{
	StatusSuccess,
	StatusFailed,
	StatusSkippedPassword,
	StatusSkippedExists,
	StatusSkippedUnsupported,
	StatusSkippedPDF,
}

// IsSkipped reports whether s is one of the skip variants.
func (s Status) IsSkipped() bool {
	switch s {
	case StatusSkippedPassword, StatusSkippedExists, StatusSkippedUnsupported, StatusSkippedPDF:
		return true
	}
	return false
}

// noBackend is the backend name of outcomes no backend produced.
const noBackend = "none"

// Outcome is the immutable result of one conversion attempt.
// Destination is set only when Status is StatusSuccess; it names a
// directory when a container backend produced it.
type Outcome struct {
	Status      Status
	Source      string
	Destination string
	Elapsed     time.Duration
	Backend     string
	Message     string
	Err         error // first error seen along the chain
}

// IsSuccess reports whether the conversion produced an artifact.
func (o Outcome) IsSuccess() bool { return o.Status == StatusSuccess }

// IsSkipped reports whether the file was skipped for any reason.
func (o Outcome) IsSkipped() bool { return o.Status.IsSkipped() }

// IsFailed reports whether every applicable backend failed.
func (o Outcome) IsFailed() bool { return o.Status == StatusFailed }

func (o Outcome) String() string {
	if o.Message == "" {
		return fmt.Sprintf("%s [%s] %s", o.Status, o.Backend, o.Source)
	}
	return fmt.Sprintf("%s [%s] %s: %s", o.Status, o.Backend, o.Source, o.Message)
}

// Succeeded builds a success outcome.
func Succeeded(source, dest, backend string, elapsed time.Duration, msg string) Outcome {
	return Outcome{
		Status:      StatusSuccess,
		Source:      source,
		Destination: dest,
		Elapsed:     elapsed,
		Backend:     backend,
		Message:     msg,
	}
}

// Failed builds a failure outcome carrying err.
func Failed(source, backend string, elapsed time.Duration, err error) Outcome {
	o := Outcome{
		Status:  StatusFailed,
		Source:  source,
		Elapsed: elapsed,
		Backend: backend,
		Err:     err,
	}
	if err != nil {
		o.Message = err.Error()
	}
	return o
}

// Skipped builds a skip outcome. Passing a non-skip status panics.
func Skipped(status Status, source, backend, msg string) Outcome {
	if !status.IsSkipped() {
		panic(fmt.Sprintf("doc2pdf: %q is not a skip status", status))
	}
	return Outcome{
		Status:  status,
		Source:  source,
		Backend: backend,
		Message: msg,
	}
}
