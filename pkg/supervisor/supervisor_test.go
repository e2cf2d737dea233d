package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/browser-tools/browserhost-go/pkg/config"
	"github.com/browser-tools/browserhost-go/pkg/errors"
	"github.com/browser-tools/browserhost-go/pkg/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (l *testLogger) LogLevelf(level int, format string, args ...interface{}) {}
func (l *testLogger) Debugf(format string, args ...interface{})               {}
func (l *testLogger) Infof(format string, args ...interface{})                {}
func (l *testLogger) Warnf(format string, args ...interface{})                {}
func (l *testLogger) Errorf(format string, args ...interface{})               {}

func newTestSupervisor() *Supervisor {
	return New(config.DefaultConfig(), &testLogger{})
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on unix shell utilities")
	}
}

func TestSupervisor_LaunchAndSelfExit(t *testing.T) {
	requireUnix(t)

	s := newTestSupervisor()
	err := s.Launch(context.Background(), process.ExecutionConfig{
		ExecutablePath: "/bin/sh",
		Args:           []string{"-c", "exit 7"},
	})
	require.NoError(t, err)
	assert.Equal(t, StateSupervising, s.State())
	assert.Greater(t, s.Pid(), 0)

	// Child exits on its own: its status is propagated and no signal is
	// sent to the dead process
	sig := make(chan os.Signal)
	exitCode := s.wait(sig)

	assert.Equal(t, 7, exitCode)
	assert.Equal(t, StateExited, s.State())
}

func TestSupervisor_SelfExitSuccess(t *testing.T) {
	requireUnix(t)

	s := newTestSupervisor()
	require.NoError(t, s.Launch(context.Background(), process.ExecutionConfig{
		ExecutablePath: "/bin/sh",
		Args:           []string{"-c", "exit 0"},
	}))

	exitCode := s.wait(make(chan os.Signal))
	assert.Equal(t, 0, exitCode)
}

func TestSupervisor_LaunchFailure(t *testing.T) {
	s := newTestSupervisor()
	err := s.Launch(context.Background(), process.ExecutionConfig{
		ExecutablePath: filepath.Join(t.TempDir(), "missing-browser"),
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeProcess))
	assert.Equal(t, StateExited, s.State(), "launch failure is fatal, no retry")
	assert.Equal(t, 0, s.Pid(), "no handle may be held after a failed launch")
}

func TestSupervisor_SignalDrivenShutdown(t *testing.T) {
	requireUnix(t)

	s := newTestSupervisor()
	require.NoError(t, s.Launch(context.Background(), process.ExecutionConfig{
		ExecutablePath: "/bin/sleep",
		Args:           []string{"60"},
	}))
	pid := s.Pid()

	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM

	start := time.Now()
	exitCode := s.wait(sig)

	assert.Equal(t, 0, exitCode, "signal-driven shutdown reports normal termination")
	assert.Equal(t, StateExited, s.State())
	assert.Less(t, time.Since(start), gracefulShutdownTimeout, "child must die within the grace period")

	assert.Eventually(t, func() bool {
		return !process.IsAlive(pid)
	}, 5*time.Second, 50*time.Millisecond, "child must no longer be running")
}

func TestSupervisor_ShutdownIdempotent(t *testing.T) {
	requireUnix(t)

	s := newTestSupervisor()
	require.NoError(t, s.Launch(context.Background(), process.ExecutionConfig{
		ExecutablePath: "/bin/sh",
		Args:           []string{"-c", "exit 0"},
	}))

	// Let the child exit on its own first
	exitCode := s.wait(make(chan os.Signal))
	require.Equal(t, 0, exitCode)

	// Shutdown after the child is gone must be a safe no-op, repeatedly
	s.Shutdown()
	s.Shutdown()
	assert.Equal(t, 0, s.Pid())
}

func TestSupervisor_ShutdownBeforeLaunch(t *testing.T) {
	s := newTestSupervisor()
	s.Shutdown()
	assert.Equal(t, StateStarting, s.State())
}

func TestSupervisor_WaitReadyBestEffort(t *testing.T) {
	requireUnix(t)

	cfg := config.DefaultConfig()
	cfg.ControlPort = 1 // nothing listens here
	cfg.Probe.Attempts = 2
	cfg.Probe.Interval = 5 * time.Millisecond

	s := New(cfg, &testLogger{})
	require.NoError(t, s.Launch(context.Background(), process.ExecutionConfig{
		ExecutablePath: "/bin/sleep",
		Args:           []string{"30"},
	}))
	defer func() {
		sig := make(chan os.Signal, 1)
		sig <- syscall.SIGTERM
		s.wait(sig)
	}()

	_, err := s.WaitReady(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTimeout))

	// Probe exhaustion does not change the supervising state
	assert.Equal(t, StateSupervising, s.State())
}
