package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// commands lists the subcommands runMain dispatches on.
var commands = []string{"convert", "doctor", "init", "version", "help"}

func isCommand(s string) bool {
	for _, c := range commands {
		if s == c {
			return true
		}
	}
	return false
}

// runMain runs the CLI and returns the process exit code. A first argument
// that is not a command is treated as "convert <args>".
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) {
		if len(cmd) > 0 && cmd[0] == '-' && cmd != "-" {
			if cmd == "-h" || cmd == "--help" {
				printUsage(env.Stdout)
				return ExitSuccess
			}
			if cmd == "--version" {
				printVersion(env)
				return ExitSuccess
			}
		}
		cmd, rest = "convert", args[1:]
	}

	switch cmd {
	case "version":
		printVersion(env)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "init":
		return exitReport(env, runInit(rest, env))
	}

	flags, positional, err := parseConvertFlags(rest, env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return exitReport(env, fmt.Errorf("%w: %v", ErrUsage, err))
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()
	return exitReport(env, runConvert(ctx, positional, flags, env))
}

// exitReport prints err, if any, and maps it to an exit code.
func exitReport(env *Environment, err error) int {
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
	}
	return exitCodeFor(err)
}

func printVersion(env *Environment) {
	fmt.Fprintf(env.Stdout, "doc2pdf %s\n", Version)
}
