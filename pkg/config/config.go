package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/browser-tools/browserhost-go/pkg/errors"
	"github.com/browser-tools/browserhost-go/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Environment variables, read once at startup
const (
	EnvRemoteDebuggingPort = "REMOTE_DEBUGGING_PORT"
	EnvStreamingPort       = "STREAMING_PORT"
	EnvHeadless            = "HEADLESS"
	EnvBrowserPath         = "BROWSER_PATH"
	EnvProbeAttempts       = "PROBE_ATTEMPTS"
	EnvProbeInterval       = "PROBE_INTERVAL"
	EnvProbeFatal          = "PROBE_FATAL"
)

const (
	DefaultControlPort   = 9222
	DefaultStreamingPort = 9223
	DefaultProbeAttempts = 30
	DefaultProbeInterval = 1 * time.Second
)

// ProbeConfig controls the DevTools readiness probe loop
type ProbeConfig struct {
	Attempts int           `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`
	// Fatal escalates probe exhaustion to a startup failure. The default
	// (false) keeps supervising even when the endpoint never answered.
	Fatal bool `yaml:"fatal"`
}

// SupervisorConfig is resolved once at startup and read-only afterwards.
type SupervisorConfig struct {
	// ControlPort is the remote-debugging port the browser binds on 0.0.0.0
	ControlPort int `yaml:"control_port"`
	// StreamingPort is reserved for the external streaming component.
	// The supervisor only reports it, nothing here serves it.
	StreamingPort int `yaml:"streaming_port"`
	// Headless disables the visible display surface
	Headless bool `yaml:"headless"`
	// ExecutablePath overrides browser executable resolution when set
	ExecutablePath string `yaml:"executable_path,omitempty"`

	Probe ProbeConfig `yaml:"probe"`
}

// DefaultConfig returns the built-in defaults before file and environment layers
func DefaultConfig() *SupervisorConfig {
	return &SupervisorConfig{
		ControlPort:   DefaultControlPort,
		StreamingPort: DefaultStreamingPort,
		Headless:      true,
		Probe: ProbeConfig{
			Attempts: DefaultProbeAttempts,
			Interval: DefaultProbeInterval,
		},
	}
}

// LoadConfig resolves the supervisor configuration: defaults, then the
// optional YAML file, then environment variables. Environment wins.
func LoadConfig(configFile string, logger logging.Logger) (*SupervisorConfig, error) {
	config := DefaultConfig()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", configFile)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", configFile)
		}
		logger.Infof("Configuration file loaded: %s", configFile)
	}

	if err := applyEnvironment(config); err != nil {
		return nil, err
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvironment(config *SupervisorConfig) error {
	if value, ok := os.LookupEnv(EnvRemoteDebuggingPort); ok {
		port, err := strconv.Atoi(value)
		if err != nil {
			return errors.NewValidationError("invalid control port", err).WithContext("env", EnvRemoteDebuggingPort).WithContext("value", value)
		}
		config.ControlPort = port
	}

	if value, ok := os.LookupEnv(EnvStreamingPort); ok {
		port, err := strconv.Atoi(value)
		if err != nil {
			return errors.NewValidationError("invalid streaming port", err).WithContext("env", EnvStreamingPort).WithContext("value", value)
		}
		config.StreamingPort = port
	}

	if value, ok := os.LookupEnv(EnvHeadless); ok {
		headless, err := parseBool(value)
		if err != nil {
			return errors.NewValidationError("invalid headless flag", err).WithContext("env", EnvHeadless).WithContext("value", value)
		}
		config.Headless = headless
	}

	if value, ok := os.LookupEnv(EnvBrowserPath); ok && value != "" {
		config.ExecutablePath = value
	}

	if value, ok := os.LookupEnv(EnvProbeAttempts); ok {
		attempts, err := strconv.Atoi(value)
		if err != nil {
			return errors.NewValidationError("invalid probe attempts", err).WithContext("env", EnvProbeAttempts).WithContext("value", value)
		}
		config.Probe.Attempts = attempts
	}

	if value, ok := os.LookupEnv(EnvProbeInterval); ok {
		interval, err := time.ParseDuration(value)
		if err != nil {
			return errors.NewValidationError("invalid probe interval", err).WithContext("env", EnvProbeInterval).WithContext("value", value)
		}
		config.Probe.Interval = interval
	}

	if value, ok := os.LookupEnv(EnvProbeFatal); ok {
		fatal, err := parseBool(value)
		if err != nil {
			return errors.NewValidationError("invalid probe fatal flag", err).WithContext("env", EnvProbeFatal).WithContext("value", value)
		}
		config.Probe.Fatal = fatal
	}

	return nil
}

func parseBool(value string) (bool, error) {
	switch value {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true, nil
	case "0", "false", "FALSE", "False", "no", "off":
		return false, nil
	}
	return strconv.ParseBool(value)
}

// ValidateConfig validates the resolved configuration structure
func ValidateConfig(config *SupervisorConfig) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	if err := validatePort(config.ControlPort); err != nil {
		return errors.NewValidationError("invalid control port", err).WithContext("port", config.ControlPort)
	}
	if err := validatePort(config.StreamingPort); err != nil {
		return errors.NewValidationError("invalid streaming port", err).WithContext("port", config.StreamingPort)
	}
	if config.ControlPort == config.StreamingPort {
		return errors.NewValidationError("control and streaming ports must differ", nil).WithContext("port", config.ControlPort)
	}

	if config.Probe.Attempts < 0 {
		return errors.NewValidationError("probe attempts cannot be negative", nil).WithContext("attempts", config.Probe.Attempts)
	}
	if config.Probe.Interval <= 0 {
		return errors.NewValidationError("probe interval must be positive", nil).WithContext("interval", config.Probe.Interval.String())
	}

	return nil
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", port)
	}
	return nil
}
