package process

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/browser-tools/browserhost-go/pkg/errors"
	"github.com/browser-tools/browserhost-go/pkg/logging"
)

// ExecutionConfig describes how to start a child process
type ExecutionConfig struct {
	ExecutablePath   string        `yaml:"executable_path"`
	Args             []string      `yaml:"args,omitempty"`
	Environment      []string      `yaml:"environment,omitempty"`
	WorkingDirectory string        `yaml:"working_directory,omitempty"`
	WaitDelay        time.Duration `yaml:"wait_delay,omitempty"`
}

// ExecuteCmd starts a child process and returns its handle and stdout stream
type ExecuteCmd func(ctx context.Context) (*os.Process, io.ReadCloser, error)

// NewStdExecuteCmd returns an ExecuteCmd that launches the configured
// executable in its own process group so that the children it spawns share
// its lifetime.
func NewStdExecuteCmd(config ExecutionConfig, id string, logger logging.Logger) ExecuteCmd {
	return func(ctx context.Context) (*os.Process, io.ReadCloser, error) {
		if ctx == nil {
			return nil, nil, errors.NewValidationError("context cannot be nil", nil)
		}

		executablePath := config.ExecutablePath
		if !filepath.IsAbs(executablePath) {
			resolved, err := exec.LookPath(executablePath)
			if err != nil {
				return nil, nil, errors.NewNotFoundError("executable not found in PATH", err).WithContext("executable", executablePath)
			}
			executablePath = resolved
		}

		if err := ensureExecutable(executablePath); err != nil {
			return nil, nil, err
		}

		logger.Infof("Executing command, id: %s, path: %s, args: %v", id, executablePath, config.Args)

		cmd := exec.Command(executablePath, config.Args...)
		cmd.Dir = config.WorkingDirectory
		if len(config.Environment) > 0 {
			cmd.Env = append(os.Environ(), config.Environment...)
		}
		if config.WaitDelay > 0 {
			cmd.WaitDelay = config.WaitDelay
		}
		cmd.Stderr = os.Stderr
		setProcessGroup(cmd)

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, nil, errors.NewIOError("failed to create stdout pipe", err).WithContext("id", id)
		}

		if err := cmd.Start(); err != nil {
			stdout.Close()
			return nil, nil, errors.NewProcessError("failed to start process", err).WithContext("id", id).WithContext("executable", executablePath)
		}

		logger.Infof("Command executed, id: %s, PID: %d", id, cmd.Process.Pid)

		return cmd.Process, stdout, nil
	}
}

// ensureExecutable verifies the path points to a runnable regular file
func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewNotFoundError("executable does not exist", err).WithContext("path", path)
	}
	if info.IsDir() {
		return errors.NewValidationError("executable path is a directory", nil).WithContext("path", path)
	}
	if err := checkExecutableMode(info); err != nil {
		return errors.NewValidationError("file is not executable", err).WithContext("path", path)
	}
	return nil
}
