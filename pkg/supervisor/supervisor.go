package supervisor

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/browser-tools/browserhost-go/pkg/config"
	"github.com/browser-tools/browserhost-go/pkg/errors"
	"github.com/browser-tools/browserhost-go/pkg/logging"
	"github.com/browser-tools/browserhost-go/pkg/monitoring"
	"github.com/browser-tools/browserhost-go/pkg/process"
)

const (
	// gracefulShutdownTimeout bounds the wait between SIGTERM and SIGKILL
	gracefulShutdownTimeout = 10 * time.Second

	// forcedShutdownTimeout bounds the wait after SIGKILL
	forcedShutdownTimeout = 5 * time.Second
)

// waitResult carries the child's disposition out of the wait goroutine
type waitResult struct {
	exitCode int
	err      error
}

// Supervisor owns exactly one browser child process at a time. It never
// holds a handle to a process it did not launch itself.
type Supervisor struct {
	config *config.SupervisorConfig
	logger logging.Logger
	state  *StateMachine

	// Running process tracking
	process *os.Process
	stdout  io.ReadCloser
	done    chan waitResult

	shutdownOnce sync.Once
	mutex        sync.Mutex
}

// New creates a supervisor in the starting state
func New(cfg *config.SupervisorConfig, logger logging.Logger) *Supervisor {
	return &Supervisor{
		config: cfg,
		logger: logger,
		state:  NewStateMachine(logger),
	}
}

// State returns the current lifecycle state
func (s *Supervisor) State() State {
	return s.state.Current()
}

// Pid returns the child's PID, or 0 before launch
func (s *Supervisor) Pid() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.process == nil {
		return 0
	}
	return s.process.Pid
}

// Launch starts the browser child process. Launch failure is fatal: no retry
// is attempted and the supervisor transitions straight to exited.
func (s *Supervisor) Launch(ctx context.Context, execConfig process.ExecutionConfig) error {
	executeCmd := process.NewStdExecuteCmd(execConfig, "browser", s.logger)

	proc, stdout, err := executeCmd(ctx)
	if err != nil {
		s.state.Transition(StateExited, "launch-failed")
		return errors.NewProcessError("failed to launch browser", err).WithContext("executable", execConfig.ExecutablePath)
	}

	done := make(chan waitResult, 1)
	go func() {
		state, waitErr := proc.Wait()
		if waitErr != nil {
			s.logger.Warnf("Process PID %d wait failed: %v", proc.Pid, waitErr)
			done <- waitResult{exitCode: -1, err: errors.NewProcessError("process wait failed", waitErr).WithContext("pid", proc.Pid)}
			return
		}
		s.logger.Infof("Process PID %d exited with status: %v", proc.Pid, state)
		done <- waitResult{exitCode: state.ExitCode()}
	}()

	go forwardOutput(stdout, s.logger)

	s.mutex.Lock()
	s.process = proc
	s.stdout = stdout
	s.done = done
	s.mutex.Unlock()

	if err := s.state.Transition(StateLaunched, "launch"); err != nil {
		return err
	}

	s.logger.Infof("Browser launched, PID: %d, control port: %d", proc.Pid, s.config.ControlPort)

	return s.state.Transition(StateSupervising, "supervise")
}

// WaitReady runs the bounded readiness probe loop against the control
// endpoint. Exhaustion is reported to the caller, which decides whether the
// default best-effort policy or the fatal policy applies.
func (s *Supervisor) WaitReady(ctx context.Context) (*monitoring.VersionInfo, error) {
	return monitoring.WaitReady(ctx, monitoring.ProbeOptions{
		Port:     s.config.ControlPort,
		Attempts: s.config.Probe.Attempts,
		Interval: s.config.Probe.Interval,
	}, s.logger)
}

// Wait blocks until the child exits on its own or a termination signal
// arrives, then returns the supervisor's exit code: the child's own code on
// self-exit (missing or unknown code maps to 1), 0 on signal-driven shutdown.
func (s *Supervisor) Wait() int {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	return s.wait(sig)
}

func (s *Supervisor) wait(sig <-chan os.Signal) int {
	s.mutex.Lock()
	done := s.done
	s.mutex.Unlock()

	select {
	case result := <-done:
		// Child exited on its own: no termination signal is sent to the
		// already-dead process, the supervisor adopts its disposition
		s.state.Transition(StateTerminating, "child-exit")
		s.finalize()
		s.state.Transition(StateExited, "child-exit")

		if result.err != nil || result.exitCode < 0 {
			s.logger.Errorf("Browser exited without a usable status, error: %v, code: %d", result.err, result.exitCode)
			return 1
		}
		s.logger.Infof("Browser exited with code %d, propagating", result.exitCode)
		return result.exitCode

	case receivedSignal := <-sig:
		s.logger.Infof("Received signal: %v, shutting down", receivedSignal)
		s.state.Transition(StateTerminating, "signal")
		s.Shutdown()
		s.state.Transition(StateExited, "signal")
		return 0
	}
}

// Shutdown terminates the child if it is still alive. It is idempotent and
// safe to call at any point after launch, including when the child already
// exited on its own.
func (s *Supervisor) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.mutex.Lock()
		proc := s.process
		done := s.done
		s.mutex.Unlock()

		if proc == nil {
			return
		}

		defer s.finalize()

		if !process.IsAlive(proc.Pid) {
			s.logger.Infof("Browser PID %d already exited, nothing to terminate", proc.Pid)
			return
		}

		s.logger.Infof("Terminating browser process group, PID: %d", proc.Pid)
		if err := process.SendTerminationSignal(proc.Pid); err != nil {
			s.logger.Warnf("Failed to send termination signal to PID %d: %v", proc.Pid, err)
		}

		select {
		case <-done:
			s.logger.Infof("Browser PID %d terminated gracefully", proc.Pid)
			return
		case <-time.After(gracefulShutdownTimeout):
			s.logger.Warnf("Browser PID %d did not terminate within %v, force killing", proc.Pid, gracefulShutdownTimeout)
		}

		if err := process.KillProcessGroup(proc.Pid); err != nil {
			s.logger.Warnf("Failed to kill process group of PID %d: %v", proc.Pid, err)
		}

		select {
		case <-done:
			s.logger.Infof("Browser PID %d force terminated", proc.Pid)
		case <-time.After(forcedShutdownTimeout):
			s.logger.Errorf("Browser PID %d did not terminate even after force kill", proc.Pid)
		}
	})
}

func (s *Supervisor) finalize() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.stdout != nil {
		s.stdout.Close()
		s.stdout = nil
	}
	s.process = nil
}

// forwardOutput relays the child's stdout lines to the supervisor log so
// container logs carry the browser's own output
func forwardOutput(stdout io.Reader, logger logging.Logger) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		logger.Infof("browser: %s", scanner.Text())
	}
}
