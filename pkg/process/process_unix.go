//go:build !windows

package process

import (
	"io/fs"
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group so that the
// processes it forks (renderers, GPU helpers) share one PGID and can be
// signalled together.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// SendTerminationSignal sends SIGTERM to the process group of pid
func SendTerminationSignal(pid int) error {
	// Negative PID targets the entire process group
	return syscall.Kill(-pid, syscall.SIGTERM)
}

// KillProcessGroup sends SIGKILL to the process group of pid
func KillProcessGroup(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}

func checkExecutableMode(info fs.FileInfo) error {
	if info.Mode().Perm()&0o111 == 0 {
		return fs.ErrPermission
	}
	return nil
}
