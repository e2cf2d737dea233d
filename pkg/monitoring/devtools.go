package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/browser-tools/browserhost-go/pkg/errors"
	"github.com/browser-tools/browserhost-go/pkg/logging"
)

const (
	// versionPath is the DevTools version-info endpoint used for readiness
	versionPath = "/json/version"

	DefaultProbeTimeout = 2 * time.Second
)

// VersionInfo is the payload served by the DevTools version-info endpoint
type VersionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	UserAgent            string `json:"User-Agent"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// ProbeOptions controls the readiness probe loop
type ProbeOptions struct {
	Host     string // defaults to 127.0.0.1
	Port     int
	Attempts int
	Interval time.Duration
	Timeout  time.Duration // per-attempt HTTP timeout
}

func (o ProbeOptions) endpoint() string {
	host := o.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d%s", host, o.Port, versionPath)
}

// ProbeOnce issues a single synchronous GET against the version-info
// endpoint. Any 2xx response counts as ready.
func ProbeOnce(ctx context.Context, opts ProbeOptions) (*VersionInfo, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, opts.endpoint(), nil)
	if err != nil {
		return nil, errors.NewInternalError("failed to build probe request", err)
	}

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, errors.NewIOError("probe request failed", err).WithContext("endpoint", opts.endpoint())
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, errors.NewIOError("probe returned non-success status", nil).
			WithContext("endpoint", opts.endpoint()).
			WithContext("status", response.StatusCode)
	}

	// Decode failures are not readiness failures: a 2xx answer means the
	// control endpoint is accepting connections
	var info VersionInfo
	if err := json.NewDecoder(response.Body).Decode(&info); err != nil {
		return &VersionInfo{}, nil
	}
	return &info, nil
}

// WaitReady polls the version-info endpoint until it answers with a success
// status or the attempt budget is exhausted. Attempt-level errors are absorbed
// and retried. Attempts=0 sends nothing and returns immediately. Exhaustion
// returns a timeout-typed error; the caller decides whether that is fatal.
func WaitReady(ctx context.Context, opts ProbeOptions, logger logging.Logger) (*VersionInfo, error) {
	if opts.Attempts == 0 {
		logger.Infof("Readiness probing disabled (0 attempts)")
		return nil, nil
	}

	logger.Infof("Waiting for control endpoint %s, attempts: %d, interval: %s",
		opts.endpoint(), opts.Attempts, opts.Interval)

	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		info, err := ProbeOnce(ctx, opts)
		if err == nil {
			logger.Infof("Control endpoint ready after %d attempt(s), browser: %s, protocol: %s",
				attempt, info.Browser, info.ProtocolVersion)
			return info, nil
		}

		logger.Debugf("Probe attempt %d/%d failed: %v", attempt, opts.Attempts, err)

		if attempt == opts.Attempts {
			break
		}

		select {
		case <-time.After(opts.Interval):
		case <-ctx.Done():
			return nil, errors.NewCancelledError("readiness probing cancelled", ctx.Err())
		}
	}

	return nil, errors.NewTimeoutError("control endpoint did not become ready", nil).
		WithContext("endpoint", opts.endpoint()).
		WithContext("attempts", opts.Attempts)
}
