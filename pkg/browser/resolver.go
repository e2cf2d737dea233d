package browser

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/browser-tools/browserhost-go/pkg/errors"
	"github.com/browser-tools/browserhost-go/pkg/logging"
)

// executableNames are the exact binary names accepted by the fallback scan
var executableNames = []string{
	"chrome",
	"headless_shell",
	"chromium",
}

// wellKnownPaths is the fast path: fixed locations used by the common
// container images, checked before any filesystem scan.
var wellKnownPaths = []string{
	"/headless-shell/headless-shell",
	"/usr/bin/headless-shell",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/google-chrome",
}

// lookPathNames are tried against PATH after the fixed locations
var lookPathNames = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"headless_shell",
	"chrome",
}

// cacheRoots returns the directories scanned recursively when no fixed
// location or PATH entry yields a browser. The playwright download cache is
// the usual hit inside the container image.
func cacheRoots() []string {
	roots := []string{"/ms-playwright"}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append([]string{filepath.Join(home, ".cache", "ms-playwright")}, roots...)
	}
	return roots
}

// ResolveExecutable locates a usable browser executable. The override, when
// non-empty, is taken as-is after a stat check. Otherwise fixed locations and
// PATH are tried first, then the cache roots are scanned recursively for an
// executable file whose name matches exactly. First match wins; no version or
// architecture compatibility check is made.
func ResolveExecutable(override string, logger logging.Logger) (string, error) {
	if override != "" {
		if err := statExecutable(override); err != nil {
			return "", errors.NewNotFoundError("configured browser executable is not usable", err).WithContext("path", override)
		}
		logger.Infof("Using configured browser executable: %s", override)
		return override, nil
	}

	for _, candidate := range wellKnownPaths {
		if err := statExecutable(candidate); err == nil {
			logger.Infof("Found browser executable: %s", candidate)
			return candidate, nil
		}
	}

	for _, name := range lookPathNames {
		if resolved, err := exec.LookPath(name); err == nil {
			logger.Infof("Found browser executable in PATH: %s", resolved)
			return resolved, nil
		}
	}

	roots := cacheRoots()
	logger.Infof("No fixed browser location found, scanning cache roots: %v", roots)

	if found := scanRoots(roots, executableNames); found != "" {
		logger.Infof("Found browser executable in cache: %s", found)
		return found, nil
	}

	return "", errors.NewNotFoundError("no browser executable found", nil).
		WithContext("search_roots", strings.Join(roots, ":")).
		WithContext("names", strings.Join(executableNames, ","))
}

// scanRoots walks each root recursively and returns the first regular file
// whose base name matches one of names and carries the executable bit.
func scanRoots(roots []string, names []string) string {
	for _, root := range roots {
		var found string
		filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, keep walking the rest
			}
			if entry.IsDir() {
				return nil
			}
			if !matchesName(entry.Name(), names) {
				return nil
			}
			if statExecutable(path) != nil {
				return nil
			}
			found = path
			return fs.SkipAll
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func matchesName(name string, names []string) bool {
	for _, candidate := range names {
		if name == candidate {
			return true
		}
	}
	return false
}

func statExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fs.ErrInvalid
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fs.ErrPermission
	}
	return nil
}
