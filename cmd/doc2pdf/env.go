package main

import (
	"context"
	"io"
	"os"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
)

// Engine is the part of *doc2pdf.Engine the CLI drives.
type Engine interface {
	Convert(ctx context.Context, path, destDir string) (doc2pdf.Stats, error)
	Backends() []doc2pdf.BackendStatus
	Close() error
}

var _ Engine = (*doc2pdf.Engine)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	NewEngine func(opts ...doc2pdf.Option) (Engine, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewEngine: func(opts ...doc2pdf.Option) (Engine, error) {
			return doc2pdf.New(opts...)
		},
	}
}
