package supervisor

import (
	"context"
	"runtime"

	"github.com/browser-tools/browserhost-go/pkg/browser"
	"github.com/browser-tools/browserhost-go/pkg/config"
	"github.com/browser-tools/browserhost-go/pkg/errors"
	"github.com/browser-tools/browserhost-go/pkg/logging"
	"github.com/browser-tools/browserhost-go/pkg/process"
)

// Run executes the full single-shot supervision flow: resolve the browser
// executable, launch it, probe the control endpoint, then block until the
// child exits or a termination signal arrives. The returned exit code is the
// supervisor's own: the child's code when it exits on its own, 0 on
// signal-driven shutdown, 1 on fatal startup failure.
func Run(configFile string, logger logging.Logger) (int, error) {
	logger.Infof("Browser supervisor starting...")
	logger.Infof("Platform: OS=%s, Arch=%s, CPUs=%d, Go=%s",
		runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), runtime.Version())

	cfg, err := config.LoadConfig(configFile, logger)
	if err != nil {
		return 1, errors.NewValidationError("configuration resolution failed", err)
	}

	logger.Infof("Control port: %d, streaming port: %d (reserved, served externally), headless: %t",
		cfg.ControlPort, cfg.StreamingPort, cfg.Headless)

	executablePath, err := browser.ResolveExecutable(cfg.ExecutablePath, logger)
	if err != nil {
		return 1, err
	}

	ctx := context.Background()

	s := New(cfg, logger)
	if err := s.Launch(ctx, process.ExecutionConfig{
		ExecutablePath: executablePath,
		Args:           browser.Arguments(cfg),
	}); err != nil {
		return 1, err
	}
	defer s.Shutdown()

	if _, err := s.WaitReady(ctx); err != nil {
		if cfg.Probe.Fatal {
			logger.Errorf("Control endpoint never became ready: %v", err)
			return 1, err
		}
		// Best-effort readiness: the browser may still become reachable
		// later, and this supervisor's contract is to host the process
		logger.Warnf("Control endpoint not ready after %d attempts, supervising anyway: %v",
			cfg.Probe.Attempts, err)
	}

	exitCode := s.Wait()

	logger.Infof("Browser supervisor stopped, exit code: %d", exitCode)

	return exitCode, nil
}
