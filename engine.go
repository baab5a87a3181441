package doc2pdf

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Engine owns the backend chain of a run and exposes file and directory
// conversion. It is not safe for concurrent use.
type Engine struct {
	cfg        *engineConfig
	chain      Chain
	dispatcher *Dispatcher
	walker     *Walker
}

// New builds an Engine. The chain is assembled once; backend
// availability is still probed for every file.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.backends == nil {
		if _, err := ParseMethod(string(cfg.method)); err != nil {
			return nil, err
		}
	}
	chain, err := buildChain(cfg)
	if err != nil {
		return nil, err
	}
	d := newDispatcher(chain, cfg)
	return &Engine{
		cfg:        cfg,
		chain:      chain,
		dispatcher: d,
		walker:     newWalker(d, cfg),
	}, nil
}

// ConvertFile converts a single file and records the outcome.
func (e *Engine) ConvertFile(ctx context.Context, path, destDir string) Outcome {
	o := e.dispatcher.Dispatch(ctx, path, destDir)
	if e.cfg.recorder != nil {
		e.cfg.recorder.Record(o)
	}
	return o
}

// ConvertDir converts every candidate file under root, then every
// directory produced by container backends, until none remain.
func (e *Engine) ConvertDir(ctx context.Context, root, destDir string) (Stats, error) {
	e.cfg.logger.Info("starting run",
		zap.String("root", root),
		zap.String("output", destDir),
		zap.String("method", string(e.cfg.method)),
		zap.Bool("recursive", e.cfg.recursive),
		zap.Bool("force", e.cfg.force))
	stats, err := e.walker.Run(ctx, root, destDir)
	e.cfg.logger.Info("run finished",
		zap.Int("total", stats.Total),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("passes", stats.Passes),
		zap.Duration("elapsed", stats.Elapsed),
		zap.Bool("interrupted", stats.Interrupted))
	return stats, err
}

// Convert dispatches on the kind of path: a directory runs ConvertDir, a
// file is converted alone and any container output it yields is drained.
func (e *Engine) Convert(ctx context.Context, path, destDir string) (Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	if info.IsDir() {
		return e.ConvertDir(ctx, path, destDir)
	}
	return e.walker.RunFile(ctx, path, destDir)
}

// Backends reports every backend of the chain with its availability.
func (e *Engine) Backends() []BackendStatus {
	return e.chain.Status()
}

// Close releases backend resources. The Engine must not be used after.
func (e *Engine) Close() error {
	return e.chain.Close()
}
