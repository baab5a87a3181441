package doc2pdf

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Method selects which document-rendering family a run may use.
type Method string

// Conversion methods.
const (
	MethodAuto        Method = "auto"
	MethodOffice      Method = "office"
	MethodLibreOffice Method = "libreoffice"
	MethodFallback    Method = "fallback"
)

// Methods lists the accepted methods.
var Methods = []Method{MethodAuto, MethodOffice, MethodLibreOffice, MethodFallback}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Chain is an ordered list of backends, highest fidelity first.
type Chain []Backend

// buildChain assembles the chain for cfg.method. The leaf and container
// backends close the chain for every method. Container backends see the
// finished chain through a closure so they can convert their members.
func buildChain(cfg *engineConfig) (Chain, error) {
	if cfg.backends != nil {
		return Chain(cfg.backends), nil
	}

	var chain Chain
	members := func() Chain { return chain }

	native := Chain{newWordBackend(cfg), newExcelBackend(cfg), newPowerPointBackend(cfg)}
	libre := Chain{newLibreOfficeBackend(cfg)}
	fallback := Chain{newWordFallback(cfg), newSheetFallback(cfg)}

	switch cfg.method {
	case MethodAuto, "":
		chain = append(chain, native...)
		chain = append(chain, libre...)
		chain = append(chain, fallback...)
	case MethodOffice:
		chain = append(chain, native...)
	case MethodLibreOffice:
		chain = append(chain, libre...)
	case MethodFallback:
		chain = append(chain, fallback...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, cfg.method)
	}

	browser := newBrowserBackend(cfg)
	chain = append(chain,
		newImageBackend(cfg),
		browser,
		newTextBackend(cfg),
		newMarkupBackend(cfg),
		newMessageBackend(cfg, members, browser),
		newArchiveBackend(cfg, members),
		newPassthroughBackend(cfg),
	)
	return chain, nil
}

// Status reports availability of every backend in chain order.
func (c Chain) Status() []BackendStatus {
	out := make([]BackendStatus, 0, len(c))
	for _, b := range c {
		fam := FamilyLeaf
		if f, ok := b.(familyOf); ok {
			fam = f.Family()
		}
		out = append(out, BackendStatus{
			Name:       b.Name(),
			Family:     fam,
			Extensions: b.Extensions(),
			Available:  b.Available(),
		})
	}
	return out
}

// Close releases resources held by backends, such as a browser.
func (c Chain) Close() error {
	var first error
	for _, b := range c {
		if cl, ok := b.(interface{ Close() error }); ok {
			if err := cl.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// terminal reports whether the chain walk stops at s. Success ends the
// job; a password prompt would stop every backend alike; an existing
// container output directory means the work was already done.
func terminal(s Status) bool {
	return s == StatusSuccess || s == StatusSkippedPassword || s == StatusSkippedExists
}

// run walks the chain for source. Backends that do not claim the
// extension, are unavailable, or equal exclude are skipped. attempted is
// false when no backend was called. When every attempt fails the last
// failure is returned with the first error seen.
func (c Chain) run(ctx context.Context, source, dest string, exclude Backend, log *zap.Logger) (out Outcome, attempted bool) {
	ext := Extension(source)
	var firstErr error
	for _, b := range c {
		if b == exclude || !claims(b, ext) {
			continue
		}
		if !b.Available() {
			log.Debug("backend unavailable", zap.String("backend", b.Name()), zap.String("source", source))
			continue
		}
		o := safeConvert(ctx, b, source, dest)
		attempted = true
		log.Debug("backend attempt",
			zap.String("backend", b.Name()),
			zap.String("source", source),
			zap.String("status", string(o.Status)),
			zap.Duration("elapsed", o.Elapsed),
			zap.String("message", o.Message))
		if firstErr == nil && o.Err != nil {
			firstErr = o.Err
		}
		if terminal(o.Status) {
			return o, true
		}
		out = o
	}
	if attempted && out.Status == StatusFailed && firstErr != nil {
		out.Err = firstErr
	}
	return out, attempted
}
