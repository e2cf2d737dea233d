package process

import (
	gopsutil "github.com/shirou/gopsutil/v3/process"
)

// IsAlive reports whether a process with the given PID is currently running.
// Errors from the platform process table are treated as "not running".
func IsAlive(pid int) bool {
	proc, err := gopsutil.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := proc.IsRunning()
	if err != nil {
		return false
	}
	return running
}
