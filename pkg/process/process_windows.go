//go:build windows

package process

import (
	"io/fs"
	"os"
	"os/exec"
	"syscall"
)

func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// SendTerminationSignal asks the process to exit. Windows has no SIGTERM
// equivalent for arbitrary processes, so this falls back to Kill.
func SendTerminationSignal(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}

func KillProcessGroup(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}

func checkExecutableMode(info fs.FileInfo) error {
	// Executability on Windows is determined by extension, not mode bits
	return nil
}
