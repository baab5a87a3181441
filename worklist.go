package doc2pdf

import "path/filepath"

// Worklist holds container output directories waiting for a recursive
// pass, plus every directory already walked. The visited set only grows,
// so draining always terminates.
type Worklist struct {
	pending []string
	queued  map[string]bool
	visited map[string]bool
	content map[string]bool
}

// NewWorklist returns an empty worklist.
func NewWorklist() *Worklist {
	return &Worklist{queued: map[string]bool{}, visited: map[string]bool{}, content: map[string]bool{}}
}

// Add queues dir unless it was already visited or queued. It reports
// whether dir was queued.
func (w *Worklist) Add(dir string) bool {
	key := resolveDir(dir)
	if w.visited[key] || w.queued[key] {
		return false
	}
	w.queued[key] = true
	w.pending = append(w.pending, key)
	return true
}

// Take returns the pending directories and clears the live list.
func (w *Worklist) Take() []string {
	batch := w.pending
	w.pending = nil
	for _, d := range batch {
		delete(w.queued, d)
	}
	return batch
}

// Visit marks dir visited and reports whether this is the first visit.
func (w *Worklist) Visit(dir string) bool {
	key := resolveDir(dir)
	if w.visited[key] {
		return false
	}
	w.visited[key] = true
	return true
}

// MarkContent records a container checksum and reports whether it is
// new to this run.
func (w *Worklist) MarkContent(sum string) bool {
	if w.content[sum] {
		return false
	}
	w.content[sum] = true
	return true
}

// Len returns the number of pending directories.
func (w *Worklist) Len() int { return len(w.pending) }

// resolveDir returns the absolute, symlink-resolved form of dir, or the
// cleaned path when resolution fails.
func resolveDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
