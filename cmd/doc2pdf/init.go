package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-doc2pdf/internal/config"
)

// defaultConfigFile is written by init when no path is given.
const defaultConfigFile = "doc2pdf.yaml"

// runInit writes the default configuration.
func runInit(args []string, env *Environment) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	force := fs.BoolP("force", "f", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: init takes at most one path", ErrUsage)
	}

	path := defaultConfigFile
	if fs.NArg() == 1 {
		path = fs.Arg(0)
	}
	if err := config.Write(config.DefaultConfig(), path, *force); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	fmt.Fprintf(env.Stdout, "wrote %s\n", path)
	return nil
}
