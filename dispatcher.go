package doc2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Dispatcher decides, for one file, where its PDF goes and which backend
// produces it.
type Dispatcher struct {
	chain Chain
	cfg   *engineConfig
	log   *zap.Logger
}

func newDispatcher(chain Chain, cfg *engineConfig) *Dispatcher {
	return &Dispatcher{chain: chain, cfg: cfg, log: cfg.logger}
}

// Dispatch converts source into destDir (or next to it when destDir is
// empty) and returns the final outcome. It never panics and never stops
// on cancellation: once started, a conversion runs to completion.
func (d *Dispatcher) Dispatch(ctx context.Context, source, destDir string) (out Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = Failed(source, noBackend, time.Since(start), fmt.Errorf("%w: %v", ErrBackendPanic, r))
		}
		d.log.Info("converted",
			zap.String("source", out.Source),
			zap.String("status", string(out.Status)),
			zap.String("backend", out.Backend),
			zap.String("destination", out.Destination),
			zap.Duration("elapsed", out.Elapsed),
			zap.String("message", out.Message))
	}()

	if !isRegularFile(source) {
		return Failed(source, noBackend, 0, fmt.Errorf("%w: %s", ErrSourceNotFound, source))
	}

	dest := DestinationPath(source, destDir, d.cfg.keepExtension)
	ext := Extension(source)

	if ext == pdfExtension && (destDir == "" || samePath(filepath.Dir(source), destDir)) {
		return Skipped(StatusSkippedPDF, source, noBackend, "already a PDF")
	}

	if isRegularFile(dest) && !d.cfg.force {
		return Skipped(StatusSkippedExists, source, noBackend, "destination exists")
	}

	if destDir != "" {
		if err := os.MkdirAll(destDir, 0o750); err != nil {
			return Failed(source, noBackend, time.Since(start), fmt.Errorf("creating output directory: %w", err))
		}
	}

	// Force overwrites a previous PDF, but a non-file squatting on the
	// name is never replaced.
	if exists(dest) && !(d.cfg.force && isRegularFile(dest)) {
		dest = freePath(dest)
	}

	o, attempted := d.chain.run(context.WithoutCancel(ctx), source, dest, nil, d.log)
	if !attempted {
		o = Skipped(StatusSkippedUnsupported, source, noBackend, fmt.Sprintf("%v: %s", ErrNoBackend, ext))
	}
	o.Elapsed = time.Since(start)

	switch o.Status {
	case StatusSuccess:
		d.afterSuccess(source)
	case StatusSkippedPassword:
		d.removePartial(dest)
	}
	return o
}

func (d *Dispatcher) afterSuccess(source string) {
	switch {
	case d.cfg.deleteSource:
		if err := os.Remove(source); err != nil {
			d.log.Warn("could not delete source", zap.String("source", source), zap.Error(err))
		}
	case d.cfg.hideSource:
		if err := hideFile(source); err != nil {
			d.log.Warn("could not hide source", zap.String("source", source), zap.Error(err))
		}
	}
}

func (d *Dispatcher) removePartial(dest string) {
	if !isRegularFile(dest) {
		return
	}
	if err := os.Remove(dest); err != nil {
		d.log.Warn("could not remove partial output", zap.String("destination", dest), zap.Error(err))
	}
}
