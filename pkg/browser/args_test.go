package browser

import (
	"testing"

	"github.com/browser-tools/browserhost-go/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestArguments_Headless(t *testing.T) {
	cfg := config.DefaultConfig()

	args := Arguments(cfg)

	assert.Contains(t, args, "--headless=new")
	assert.Contains(t, args, "--disable-gpu")
	assert.Contains(t, args, "--no-sandbox")
	assert.Contains(t, args, "--disable-dev-shm-usage")
	assert.Contains(t, args, "--disable-software-rasterizer")
	assert.Contains(t, args, "--remote-debugging-address=0.0.0.0")
	assert.Contains(t, args, "--remote-debugging-port=9222")
	assert.Contains(t, args, "--window-size=1920,1080")
}

func TestArguments_Headful(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Headless = false

	args := Arguments(cfg)

	assert.NotContains(t, args, "--headless=new")
	assert.Contains(t, args, "--remote-debugging-port=9222")
}

func TestArguments_ConfiguredPort(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ControlPort = 9444

	args := Arguments(cfg)

	assert.Contains(t, args, "--remote-debugging-port=9444")
	assert.NotContains(t, args, "--remote-debugging-port=9222")
}
