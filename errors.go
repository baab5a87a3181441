package doc2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrInvalidDirectory   = errors.New("not a directory")
	ErrSourceNotFound     = errors.New("source file not found")
	ErrUnknownMethod      = errors.New("unknown conversion method")
	ErrNoBackend          = errors.New("no backend for this file type")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendPanic       = errors.New("backend panicked")
	ErrInterrupted        = errors.New("conversion interrupted")

	// Conversion errors reported inside outcomes.
	ErrPasswordProtected = errors.New("document is password protected")
	ErrEmptyContainer    = errors.New("container has no usable members")
	ErrTimeout           = errors.New("conversion timed out")
	ErrNoOutput          = errors.New("backend produced no output")
)
