package browser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/browser-tools/browserhost-go/pkg/config"
)

const defaultUserDataDirName = "browserhost-data"

// Arguments builds the fixed, non-negotiable browser argument set. The only
// configurable parts are the remote-debugging port and the headless flag;
// everything else is required for running inside an unprivileged container.
func Arguments(cfg *config.SupervisorConfig) []string {
	args := []string{}
	if cfg.Headless {
		args = append(args, "--headless=new")
	}
	args = append(args,
		"--disable-gpu",
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-software-rasterizer",
		"--no-first-run",
		"--no-default-browser-check",
		"--mute-audio",
		"--hide-scrollbars",
		"--remote-debugging-address=0.0.0.0",
		fmt.Sprintf("--remote-debugging-port=%d", cfg.ControlPort),
		"--window-size=1920,1080",
		"--user-data-dir="+filepath.Join(os.TempDir(), defaultUserDataDirName),
	)
	return args
}
