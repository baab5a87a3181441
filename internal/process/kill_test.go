package process

// Notes:
// - KillProcessGroup/KillByName: only exercised with targets that cannot
//   exist; killing real processes is not safe in unit tests.
// - Run: the shell-based cases are skipped on Windows.

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	// PID 0 and negatives are ignored; a huge PID does not exist.
	KillProcessGroup(0)
	KillProcessGroup(-1)
	KillProcessGroup(999999999)
}

func TestKillByName_NoMatch(t *testing.T) {
	t.Parallel()

	KillByName("doc2pdf-no-such-process")
}

// ---------------------------------------------------------------------------
// TestRun - Timeouts and exit codes
// ---------------------------------------------------------------------------

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
}

func TestRun_Success(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	res, err := Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out" || strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("Run() = %+v", res)
	}
}

func TestRun_NonZeroExitCarriesOutput(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	_, err := Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "echo 'the password is incorrect' >&2; exit 3"},
		Timeout: 5 * time.Second,
	})
	if err == nil {
		t.Fatal("Run() expected error")
	}
	if !strings.Contains(err.Error(), "the password is incorrect") {
		t.Errorf("error %q does not carry stderr", err)
	}
}

func TestRun_TimeoutKillsGroup(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	start := time.Now()
	_, err := Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 30 & sleep 30"},
		Timeout: 200 * time.Millisecond,
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Run() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Run() took %v, children were not killed", elapsed)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 30"}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), Command{Name: "doc2pdf-missing-binary"})
	if err == nil || !strings.Contains(err.Error(), "starting") {
		t.Errorf("Run() error = %v, want start failure", err)
	}
}

func TestResult_Output(t *testing.T) {
	t.Parallel()

	got := Result{Stdout: " out \n", Stderr: "err\n"}.Output()
	if got != "err\nout" {
		t.Errorf("Output() = %q, want %q", got, "err\nout")
	}
}
