// Package process runs external converters under a timeout and kills
// whole process trees when they hang.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a command outlives its timeout.
var ErrTimeout = errors.New("process timed out")

// waitDelay bounds how long Wait lingers on pipes after a kill.
const waitDelay = 5 * time.Second

// Command describes one external invocation.
type Command struct {
	Name    string
	Args    []string
	Env     []string // appended to the current environment
	Dir     string
	Timeout time.Duration
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Output returns stderr and stdout joined, trimmed.
func (r Result) Output() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stderr) + "\n" + strings.TrimSpace(r.Stdout))
}

// Run starts c in its own process group and waits for it. When the
// timeout elapses or ctx is done the whole group is killed and ErrTimeout
// (or the context error) is returned. A non-zero exit returns an error
// carrying the command output.
func Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.Command(c.Name, c.Args...) // #nosec G204 -- callers pass fixed converter binaries
	detach(cmd)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("starting %s: %w", c.Name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var timeout <-chan time.Time
	if c.Timeout > 0 {
		timer := time.NewTimer(c.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var err error
	select {
	case err = <-done:
	case <-timeout:
		KillProcessGroup(cmd.Process.Pid)
		<-done
		return collect(&stdout, &stderr), fmt.Errorf("%w: %s after %v", ErrTimeout, c.Name, c.Timeout)
	case <-ctx.Done():
		KillProcessGroup(cmd.Process.Pid)
		<-done
		return collect(&stdout, &stderr), ctx.Err()
	}

	res := collect(&stdout, &stderr)
	if err != nil {
		if out := res.Output(); out != "" {
			return res, fmt.Errorf("%s: %w: %s", c.Name, err, out)
		}
		return res, fmt.Errorf("%s: %w", c.Name, err)
	}
	return res, nil
}

func collect(stdout, stderr *bytes.Buffer) Result {
	return Result{Stdout: stdout.String(), Stderr: stderr.String()}
}
