package doc2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-doc2pdf/internal/assets"
	"github.com/alnah/go-doc2pdf/internal/fileutil"
	"github.com/alnah/go-doc2pdf/internal/hints"
	"github.com/alnah/go-doc2pdf/internal/pipeline"
)

// A4 in inches with half-inch margins.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 0.5
)

// browserBackend prints HTML and Markdown with a headless Chromium
// driven by rod. The browser starts on first use and is shared by every
// later render until Close.
type browserBackend struct {
	cfg      *engineConfig
	markdown *pipeline.GoldmarkConverter

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

var _ Backend = (*browserBackend)(nil)

func newBrowserBackend(cfg *engineConfig) *browserBackend {
	return &browserBackend{cfg: cfg, markdown: pipeline.NewGoldmarkConverter()}
}

func (b *browserBackend) Name() string         { return "browser" }
func (b *browserBackend) Family() Family       { return FamilyLeaf }
func (b *browserBackend) Extensions() []string { return webExtensions }

// Available reports whether a Chromium binary can be found. rod's
// automatic download is never triggered.
func (b *browserBackend) Available() bool { return b.binary() != "" }

func (b *browserBackend) binary() string {
	for _, p := range []string{b.cfg.browserPath, os.Getenv("ROD_BROWSER_BIN")} {
		if p != "" {
			if fileutil.FileExists(p) {
				return p
			}
			return ""
		}
	}
	if p, ok := launcher.LookPath(); ok {
		return p
	}
	return ""
}

func (b *browserBackend) Convert(ctx context.Context, source, dest string) Outcome {
	start := time.Now()
	abs, err := filepath.Abs(source)
	if err != nil {
		return finish(b.Name(), source, dest, start, err)
	}

	switch Extension(source) {
	case ".md", ".markdown":
		err = b.convertMarkdown(ctx, abs, dest)
	default:
		err = b.printURL(ctx, fileURL(abs), dest)
	}
	return finish(b.Name(), source, dest, start, err)
}

func (b *browserBackend) convertMarkdown(ctx context.Context, source, dest string) error {
	content, err := os.ReadFile(source) // #nosec G304 -- file being converted
	if err != nil {
		return err
	}
	page, err := b.markdown.ToHTML(ctx, decodeText(content), stem(source))
	if err != nil {
		return err
	}
	page, err = pipeline.RewriteRelativePaths(page, filepath.Dir(source))
	if err != nil {
		return err
	}
	css, err := assets.LoadStyle("document")
	if err != nil {
		return err
	}
	injector := &pipeline.CSSInjection{}
	return b.RenderHTML(ctx, injector.InjectCSS(ctx, page, css), dest)
}

// RenderHTML prints a complete HTML page to dest. Resources must be
// referenced by absolute file:// URLs.
func (b *browserBackend) RenderHTML(ctx context.Context, page, dest string) error {
	tmp, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return err
	}
	defer cleanup()
	return b.printURL(ctx, fileURL(tmp), dest)
}

func (b *browserBackend) printURL(ctx context.Context, url, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	browser, err := b.ensureBrowser()
	if err != nil {
		return err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return b.fail("opening page", err)
	}
	defer func() { _ = page.Close() }()

	timed := page.Timeout(b.cfg.browserTimeout)
	if err := timed.WaitLoad(); err != nil {
		return b.fail("loading page", err)
	}
	reader, err := timed.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return b.fail("printing page", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading PDF stream: %w", err)
	}
	return os.WriteFile(dest, data, 0o644) // #nosec G306 -- output PDF is meant to be shared
}

// fail wraps err. A deadline kills the browser so the next render starts
// a fresh one instead of reusing a wedged process.
func (b *browserBackend) fail(step string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		b.cfg.logger.Warn("browser timed out, restarting", zap.String("step", step))
		b.mu.Lock()
		b.reset(true)
		b.mu.Unlock()
		return fmt.Errorf("%w: browser %s after %v", ErrTimeout, step, b.cfg.browserTimeout)
	}
	return fmt.Errorf("browser %s: %w", step, err)
}

func (b *browserBackend) ensureBrowser() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	bin := b.binary()
	if bin == "" {
		return nil, fmt.Errorf("%w: no Chromium binary found", ErrBackendUnavailable)
	}
	l := launcher.New().Bin(bin).Headless(true).Leakless(false)
	if hints.NoSandbox() {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launching browser: %v", ErrBackendUnavailable, err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: connecting to browser: %v", ErrBackendUnavailable, err)
	}
	b.launcher, b.browser = l, browser
	return browser, nil
}

// reset drops the shared browser. kill skips the polite close.
func (b *browserBackend) reset(kill bool) error {
	var err error
	if b.browser != nil && !kill {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
	b.browser, b.launcher = nil, nil
	return err
}

// Close shuts the browser down.
func (b *browserBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reset(false)
}

func floatPtr(v float64) *float64 { return &v }
