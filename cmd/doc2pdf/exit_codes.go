package main

import (
	"errors"
	"os"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
	"github.com/alnah/go-doc2pdf/internal/dateutil"
)

// Exit codes for the doc2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, 130=SIGINT.
const (
	ExitSuccess     = 0   // Every file converted or skipped
	ExitGeneral     = 1   // General/unexpected error
	ExitUsage       = 2   // Invalid flags, config, or validation
	ExitInput       = 3   // Input missing or unreadable
	ExitFailures    = 4   // The run finished but some files failed
	ExitInterrupted = 130 // Cancelled by a signal
)

// exitCodeFor returns the exit code for err. Errors must be wrapped with
// %w so errors.Is sees the sentinels.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, doc2pdf.ErrInterrupted) {
		return ExitInterrupted
	}
	if errors.Is(err, ErrSomeFailed) {
		return ExitFailures
	}

	if errors.Is(err, ErrNoInput) ||
		errors.Is(err, doc2pdf.ErrSourceNotFound) ||
		errors.Is(err, doc2pdf.ErrInvalidDirectory) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitInput
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, doc2pdf.ErrUnknownMethod) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
