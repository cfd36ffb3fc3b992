//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setProcessGroup runs the runtime in its own process group so a timeout can
// take down anything it spawned.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroupWithSIGKILL sends SIGKILL to the runtime's whole process group.
func killProcessGroupWithSIGKILL(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Kill()
	}
	return syscall.Kill(-pgid, syscall.SIGKILL)
}

// getExitCodeFromError extracts the exit status from the wait status. A runtime
// killed by a signal reports 128+signal, as a shell would.
func getExitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	waitStatus, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return 0, false
	}
	if waitStatus.Signaled() {
		return 128 + int(waitStatus.Signal()), true
	}
	return waitStatus.ExitStatus(), true
}
