//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort: the group may already be gone.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// KillByName kills every process whose name is exactly name.
func KillByName(name string) {
	_ = exec.Command("pkill", "-KILL", "-x", name).Run() // #nosec G204 -- fixed process names
}

// detach starts cmd in its own process group so it can be killed as a tree.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
