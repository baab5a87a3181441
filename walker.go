package doc2pdf

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// Recorder consumes outcomes, one per dispatched file, in processing
// order. Implementations decide what to keep.
type Recorder interface {
	Record(Outcome)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Outcome)

// Record calls f(o).
func (f RecorderFunc) Record(o Outcome) { f(o) }

// Recorders fans every outcome out to rs, skipping nil entries.
func Recorders(rs ...Recorder) Recorder {
	return RecorderFunc(func(o Outcome) {
		for _, r := range rs {
			if r != nil {
				r.Record(o)
			}
		}
	})
}

// Stats accumulates the outcomes of a directory run.
type Stats struct {
	Total       int
	Succeeded   int
	Failed      int
	Skipped     int
	ByStatus    map[Status]int
	Passes      int
	Elapsed     time.Duration
	Interrupted bool
}

func (s *Stats) add(o Outcome) {
	if s.ByStatus == nil {
		s.ByStatus = make(map[Status]int, len(Statuses))
	}
	s.Total++
	s.ByStatus[o.Status]++
	switch {
	case o.IsSuccess():
		s.Succeeded++
	case o.IsFailed():
		s.Failed++
	default:
		s.Skipped++
	}
}

// Walker enumerates candidate files and drives the Dispatcher over them,
// then drains container output directories until none are left.
type Walker struct {
	dispatcher *Dispatcher
	cfg        *engineConfig
	log        *zap.Logger
}

func newWalker(d *Dispatcher, cfg *engineConfig) *Walker {
	return &Walker{dispatcher: d, cfg: cfg, log: cfg.logger}
}

// Run converts the files under root. With a non-empty destDir the
// relative layout under root is mirrored there. Cancelling ctx stops the
// run between files; the partial Stats are returned with ErrInterrupted.
func (w *Walker) Run(ctx context.Context, root, destDir string) (Stats, error) {
	start := time.Now()
	var stats Stats
	if !isDir(root) {
		return stats, fmt.Errorf("%w: %s", ErrInvalidDirectory, root)
	}

	wl := NewWorklist()
	wl.Visit(root)

	err := w.pass(ctx, root, destDir, w.cfg.recursive, false, wl, &stats)
	if err == nil {
		err = w.drain(ctx, wl, &stats)
	}
	return w.finish(stats, start, err)
}

// RunFile converts a single file. When it is a container, the produced
// directory is drained like the output of a directory run.
func (w *Walker) RunFile(ctx context.Context, file, destDir string) (Stats, error) {
	start := time.Now()
	var stats Stats
	if err := ctx.Err(); err != nil {
		return w.finish(stats, start, err)
	}
	stats.Passes++
	wl := NewWorklist()
	w.dispatch(ctx, file, destDir, false, wl, &stats)
	return w.finish(stats, start, w.drain(ctx, wl, &stats))
}

// drain walks queued container outputs breadth first until the worklist
// stays empty.
func (w *Walker) drain(ctx context.Context, wl *Worklist, stats *Stats) error {
	for wl.Len() > 0 {
		for _, dir := range wl.Take() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !wl.Visit(dir) {
				continue
			}
			w.log.Debug("walking container output", zap.String("dir", dir))
			// Extracted trees have unknown depth: always recursive.
			if err := w.pass(ctx, dir, "", true, true, wl, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Walker) finish(stats Stats, start time.Time, err error) (Stats, error) {
	stats.Elapsed = time.Since(start)
	if err != nil {
		stats.Interrupted = true
		return stats, fmt.Errorf("%w: %v", ErrInterrupted, err)
	}
	return stats, nil
}

// pass dispatches every candidate file under dir. The file list is
// snapshotted before the first conversion so output written during the
// pass is left to later passes. nested marks passes over container
// output.
func (w *Walker) pass(ctx context.Context, dir, destDir string, recursive, nested bool, wl *Worklist, stats *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stats.Passes++

	files, err := w.candidates(dir, destDir, recursive)
	if err != nil {
		w.log.Warn("cannot list directory", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.dispatch(ctx, f, mirrorDir(dir, destDir, f), nested, wl, stats)
	}
	return nil
}

func (w *Walker) dispatch(ctx context.Context, file, destDir string, nested bool, wl *Worklist, stats *Stats) {
	var o Outcome
	if w.repeatedContainer(file, nested, wl) {
		o = Skipped(StatusSkippedExists, file, noBackend, "identical container already expanded")
		w.log.Info("converted", zap.String("source", file), zap.String("status", string(o.Status)), zap.String("message", o.Message))
	} else {
		o = w.dispatcher.Dispatch(ctx, file, destDir)
	}
	stats.add(o)
	if w.cfg.recorder != nil {
		w.cfg.recorder.Record(o)
	}
	if o.IsSuccess() && isDir(o.Destination) {
		wl.Add(o.Destination)
	}
}

// repeatedContainer fingerprints container files. Inside container
// output, a container whose bytes were already seen in this run is not
// expanded again: an archive holding a copy of itself would otherwise
// produce a new directory on every pass.
func (w *Walker) repeatedContainer(file string, nested bool, wl *Worklist) bool {
	ext := Extension(file)
	if !slices.Contains(archiveExtensions, ext) && !slices.Contains(messageExtensions, ext) {
		return false
	}
	sum, err := fileutil.Checksum(file)
	if err != nil {
		return false
	}
	first := wl.MarkContent(sum)
	return nested && !first
}

// candidates lists the regular files under dir whose extension is in the
// allow-list, in lexical order. destDir is never descended into.
func (w *Walker) candidates(dir, destDir string, recursive bool) ([]string, error) {
	var files []string
	keep := func(path string, d fs.DirEntry) {
		if d.Type().IsRegular() && slices.Contains(w.cfg.extensions, Extension(path)) && !w.excluded(path) {
			files = append(files, path)
		}
	}

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			keep(filepath.Join(dir, e.Name()), e)
		}
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.log.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if path != dir && destDir != "" && samePath(path, destDir) {
				return filepath.SkipDir
			}
			return nil
		}
		keep(path, d)
		return nil
	})
	return files, err
}

func (w *Walker) excluded(path string) bool {
	base := filepath.Base(path)
	for _, glob := range w.cfg.exclude {
		if ok, _ := filepath.Match(glob, base); ok {
			return true
		}
	}
	return false
}

// mirrorDir maps file's directory under root onto destDir.
func mirrorDir(root, destDir, file string) string {
	if destDir == "" {
		return ""
	}
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil || rel == "." {
		return destDir
	}
	return filepath.Join(destDir, rel)
}
