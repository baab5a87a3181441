package doc2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// Junk entries never extracted from containers.
var ignoredNames = []string{
	"__MACOSX", ".DS_Store", "Thumbs.db", "desktop.ini", ".git", ".svn", "__pycache__",
}

// maxMemberName caps sanitized member names, in runes.
const maxMemberName = 200

// ignoredPath reports whether any component of the slash or OS separated
// rel path is junk or hidden.
func ignoredPath(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if part == "" || part == "." {
			continue
		}
		if strings.HasPrefix(part, ".") || slices.Contains(ignoredNames, part) {
			return true
		}
	}
	return false
}

// sanitizeName makes name safe as a single path component. Characters in
// extra are replaced too.
func sanitizeName(name, extra string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(`<>:"|?*`, r) || strings.ContainsRune(extra, r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimRight(strings.TrimSpace(b.String()), " .")
	if utf8.RuneCountInString(out) > maxMemberName {
		ext := Extension(out)
		if utf8.RuneCountInString(ext) >= maxMemberName {
			ext = ""
		}
		runes := []rune(out[:len(out)-len(ext)])
		out = string(runes[:maxMemberName-utf8.RuneCountInString(ext)]) + ext
	}
	if out == "" || out == "." || out == ".." {
		return "unnamed"
	}
	return out
}

// normalizeStem folds case and separators so "My_Report" matches
// "my-report".
func normalizeStem(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(s))
}

// collapseSingleRoot returns the inner directory when dir holds exactly
// one usable entry, a directory named like the container itself.
func collapseSingleRoot(dir, containerStem string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return dir
	}
	var usable []os.DirEntry
	for _, e := range entries {
		if !ignoredPath(e.Name()) {
			usable = append(usable, e)
		}
	}
	if len(usable) == 1 && usable[0].IsDir() && normalizeStem(usable[0].Name()) == normalizeStem(containerStem) {
		return filepath.Join(dir, usable[0].Name())
	}
	return dir
}

// nameAllocator hands out distinct names per output directory for one
// expansion. Member names and the PDFs converted from them share it, so
// neither overwrites the other. Clashes get "_n".
type nameAllocator map[string]map[string]bool

// unique returns name, or the first name_n that is neither allocated in
// dir nor reported busy, and allocates it. busy may be nil.
func (a nameAllocator) unique(dir, name string, busy func(string) bool) string {
	candidate := name
	for n := 1; a.taken(dir, candidate) || (busy != nil && busy(candidate)); n++ {
		candidate = filepath.Base(suffixedPath(name, n))
	}
	a.reserve(dir, candidate)
	return candidate
}

func (a nameAllocator) taken(dir, name string) bool {
	return a[dir][strings.ToLower(name)]
}

func (a nameAllocator) reserve(dir, name string) {
	used := a[dir]
	if used == nil {
		used = map[string]bool{}
		a[dir] = used
	}
	used[strings.ToLower(name)] = true
}

// memberCounts summarizes a container expansion.
type memberCounts struct {
	converted, kept, failed, dropped int
}

func (c memberCounts) total() int { return c.converted + c.kept + c.failed }

func (c memberCounts) String() string {
	s := fmt.Sprintf("%d converted, %d kept, %d failed", c.converted, c.kept, c.failed)
	if c.dropped > 0 {
		s += fmt.Sprintf(", %d dropped", c.dropped)
	}
	return s
}

// expansion writes container members under root and converts them with
// the chain minus the container backend itself.
type expansion struct {
	cfg         *engineConfig
	chain       Chain
	self        Backend
	root        string
	convertible []string
	log         *zap.Logger
	names       nameAllocator
	counts      memberCounts
}

func newExpansion(cfg *engineConfig, chain Chain, self Backend, root string, convertible []string) *expansion {
	return &expansion{
		cfg:         cfg,
		chain:       chain,
		self:        self,
		root:        root,
		convertible: convertible,
		log:         cfg.logger.With(zap.String("container", self.Name())),
		names:       nameAllocator{},
	}
}

// add writes one member read from r at relDir/name under the root and
// converts it when its type calls for it.
func (e *expansion) add(ctx context.Context, relDir, name string, r io.Reader) error {
	dir := e.root
	for _, part := range strings.Split(filepath.ToSlash(relDir), "/") {
		if part == "" || part == "." {
			continue
		}
		dir = filepath.Join(dir, sanitizeName(part, `/\`))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	target := filepath.Join(dir, e.names.unique(dir, sanitizeName(name, `/\`), e.onDisk(dir)))
	if err := fileutil.CopyReader(r, target); err != nil {
		return err
	}
	e.convert(ctx, target)
	return nil
}

// onDisk reports names already present in dir from an earlier run. With
// force they are overwritten instead.
func (e *expansion) onDisk(dir string) func(string) bool {
	if e.cfg.force {
		return nil
	}
	return func(name string) bool { return exists(filepath.Join(dir, name)) }
}

// addTree adds every usable file under src, preserving its layout.
func (e *expansion) addTree(ctx context.Context, src string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(src, path)
		if rel != "." && ignoredPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		f, err := os.Open(path) // #nosec G304 -- path comes from our own extraction dir
		if err != nil {
			return err
		}
		defer f.Close()
		return e.add(ctx, filepath.Dir(rel), d.Name(), f)
	})
}

// convert classifies a written member. The member itself always stays
// unless it converted and sources are deleted on success.
func (e *expansion) convert(ctx context.Context, member string) {
	ext := Extension(member)
	switch {
	case ext == pdfExtension:
		e.counts.kept++
		return
	case !slices.Contains(e.convertible, ext):
		e.counts.kept++
		return
	}

	dest := DestinationPath(member, "", e.cfg.keepExtension)
	dir, base := filepath.Dir(dest), filepath.Base(dest)
	if e.names.taken(dir, base) || (exists(dest) && !(e.cfg.force && isRegularFile(dest))) {
		dest = filepath.Join(dir, e.names.unique(dir, base, func(name string) bool {
			return exists(filepath.Join(dir, name))
		}))
	} else {
		e.names.reserve(dir, base)
	}
	o, attempted := e.chain.run(ctx, member, dest, e.self, e.log)
	switch {
	case attempted && o.IsSuccess():
		e.counts.converted++
		if e.cfg.deleteSource {
			if err := os.Remove(member); err != nil {
				e.log.Warn("could not delete member", zap.String("member", member), zap.Error(err))
			}
		}
	default:
		e.counts.failed++
		if o.Status == StatusSkippedPassword && isRegularFile(dest) {
			_ = os.Remove(dest)
		}
		e.log.Debug("member not converted",
			zap.String("member", member),
			zap.String("status", string(o.Status)),
			zap.String("message", o.Message))
	}
}
