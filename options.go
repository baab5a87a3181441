package doc2pdf

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Default timeouts for backends that drive external processes.
const (
	DefaultOfficeTimeout      = 120 * time.Second
	DefaultLibreOfficeTimeout = 120 * time.Second
	DefaultBrowserTimeout     = 60 * time.Second
)

// Option configures an Engine.
type Option func(*engineConfig)

// engineConfig is the value object shared by every component of a run.
type engineConfig struct {
	method        Method
	keepExtension bool
	recursive     bool
	force         bool
	deleteSource  bool
	hideSource    bool
	extensions    []string
	exclude       []string // base-name globs never walked

	officeTimeout      time.Duration
	libreOfficeTimeout time.Duration
	browserTimeout     time.Duration
	libreOfficePath    string
	browserPath        string
	sweepOrphans       bool

	logger   *zap.Logger
	recorder Recorder
	backends []Backend // replaces the built chain when set
}

func defaultConfig() *engineConfig {
	return &engineConfig{
		method:             MethodAuto,
		keepExtension:      true,
		extensions:         DefaultExtensions(),
		officeTimeout:      DefaultOfficeTimeout,
		libreOfficeTimeout: DefaultLibreOfficeTimeout,
		browserTimeout:     DefaultBrowserTimeout,
		sweepOrphans:       true,
		logger:             zap.NewNop(),
	}
}

// WithMethod selects the backend family policy.
func WithMethod(m Method) Option {
	return func(c *engineConfig) { c.method = m }
}

// WithKeepExtension chooses between "report.docx.pdf" (true, the
// default) and "report.pdf" (false).
func WithKeepExtension(keep bool) Option {
	return func(c *engineConfig) { c.keepExtension = keep }
}

// WithRecursive makes directory runs descend into subdirectories.
func WithRecursive(recursive bool) Option {
	return func(c *engineConfig) { c.recursive = recursive }
}

// WithForce overwrites existing destinations instead of skipping them.
func WithForce(force bool) Option {
	return func(c *engineConfig) { c.force = force }
}

// WithDeleteSource removes originals after a successful conversion.
func WithDeleteSource(del bool) Option {
	return func(c *engineConfig) { c.deleteSource = del }
}

// WithHideSource marks originals hidden after a successful conversion.
// It has no effect on platforms without a hidden attribute.
func WithHideSource(hide bool) Option {
	return func(c *engineConfig) { c.hideSource = hide }
}

// WithExtensions restricts directory runs to the given extensions.
// Entries are normalized to lower case with a leading dot. An empty list
// keeps the defaults.
func WithExtensions(exts ...string) Option {
	return func(c *engineConfig) {
		if len(exts) == 0 {
			return
		}
		c.extensions = NormalizeExtensions(exts)
	}
}

// WithOfficeTimeout bounds each native Office automation call.
// Panics if d <= 0.
func WithOfficeTimeout(d time.Duration) Option {
	mustPositive("office timeout", d)
	return func(c *engineConfig) { c.officeTimeout = d }
}

// WithLibreOfficeTimeout bounds each LibreOffice conversion.
// Panics if d <= 0.
func WithLibreOfficeTimeout(d time.Duration) Option {
	mustPositive("libreoffice timeout", d)
	return func(c *engineConfig) { c.libreOfficeTimeout = d }
}

// WithBrowserTimeout bounds each headless browser render.
// Panics if d <= 0.
func WithBrowserTimeout(d time.Duration) Option {
	mustPositive("browser timeout", d)
	return func(c *engineConfig) { c.browserTimeout = d }
}

// WithLibreOfficePath sets the soffice binary instead of searching for it.
func WithLibreOfficePath(path string) Option {
	return func(c *engineConfig) { c.libreOfficePath = path }
}

// WithBrowserPath sets the Chromium binary instead of searching for it.
func WithBrowserPath(path string) Option {
	return func(c *engineConfig) { c.browserPath = path }
}

// WithExclude skips files whose base name matches one of the
// filepath.Match globs when walking a directory.
func WithExclude(globs ...string) Option {
	return func(c *engineConfig) { c.exclude = append(c.exclude, globs...) }
}

// WithSweepOrphans controls whether leftover Office or LibreOffice
// processes are killed by name after a timeout.
func WithSweepOrphans(sweep bool) Option {
	return func(c *engineConfig) { c.sweepOrphans = sweep }
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	}
}

// WithRecorder receives one Outcome per dispatched file.
func WithRecorder(r Recorder) Option {
	return func(c *engineConfig) { c.recorder = r }
}

// WithBackends replaces the method-built chain with the given backends,
// in order. Container backends are not added automatically.
func WithBackends(backends ...Backend) Option {
	return func(c *engineConfig) { c.backends = backends }
}

func mustPositive(what string, d time.Duration) {
	if d <= 0 {
		panic(fmt.Sprintf("doc2pdf: %s must be positive, got %v", what, d))
	}
}

// NormalizeExtensions lower-cases exts and ensures a leading dot,
// dropping empty entries and duplicates.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
