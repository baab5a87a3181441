package main

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
)

// ---------------------------------------------------------------------------
// Test helpers shared by the cmd tests
// ---------------------------------------------------------------------------

// mockEngine records the options it was built with and returns canned stats.
type mockEngine struct {
	mu       sync.Mutex
	stats    doc2pdf.Stats
	err      error
	backends []doc2pdf.BackendStatus
	calls    []string
	closed   bool
}

func (m *mockEngine) Convert(_ context.Context, path, destDir string) (doc2pdf.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, path+"|"+destDir)
	return m.stats, m.err
}

func (m *mockEngine) Backends() []doc2pdf.BackendStatus { return m.backends }

func (m *mockEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// testEnv returns an environment writing to buffers. A nil engine means the
// real engine is built.
func testEnv(engine Engine) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
	}
	if engine != nil {
		env.NewEngine = func(...doc2pdf.Option) (Engine, error) { return engine, nil }
	} else {
		env.NewEngine = func(opts ...doc2pdf.Option) (Engine, error) { return doc2pdf.New(opts...) }
	}
	return env, &stdout, &stderr
}

func parseFlagsOrFail(t *testing.T, env *Environment, args ...string) (*convertFlags, []string) {
	t.Helper()
	flags, positional, err := parseConvertFlags(args, env)
	if err != nil {
		t.Fatalf("parseConvertFlags(%v): %v", args, err)
	}
	return flags, positional
}
