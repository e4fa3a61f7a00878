// Package state centralizes filesystem locations for locatorcore runtime
// artifacts: the bbolt recording store, structured log output, and the
// analytics daemon's PID file (SPEC_FULL.md DOMAIN STACK "CLI surface",
// AMBIENT STACK "Logging"). Host-extension-shell concerns (settings cache,
// security config, schema-upgrade markers) are out of scope (spec.md §1)
// and are not modeled here.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// StateDirEnv overrides the default runtime state root.
	StateDirEnv = "LOCATORCORE_STATE_DIR"

	xdgStateHomeEnv = "XDG_STATE_HOME"
	appName         = "locatorcore"
)

// RootDir returns the runtime state root for locatorcore.
// Resolution order:
//  1. LOCATORCORE_STATE_DIR (if set)
//  2. XDG_STATE_HOME/locatorcore (if XDG_STATE_HOME is set)
//  3. os.UserConfigDir()/locatorcore (cross-platform fallback)
func RootDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(StateDirEnv)); override != "" {
		return normalizePath(override)
	}

	if xdg := strings.TrimSpace(os.Getenv(xdgStateHomeEnv)); xdg != "" {
		root, err := normalizePath(xdg)
		if err != nil {
			return "", err
		}
		return filepath.Join(root, appName), nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user config directory: %w", err)
	}
	root, err := normalizePath(configDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appName), nil
}

// LogsDir returns the logs directory under RootDir.
func LogsDir() (string, error) {
	return InRoot("logs")
}

// DefaultLogFile returns the default structured log file path
// (AMBIENT STACK "Logging" — logrus writes here in non-TTY/daemon mode).
func DefaultLogFile() (string, error) {
	return InRoot("logs", "locatorcore.jsonl")
}

// RecordingsDir returns the directory holding the bbolt recording store.
func RecordingsDir() (string, error) {
	return InRoot("recordings")
}

// DefaultStorePath returns the conventional path of the bbolt-backed
// repository database (internal/repository.Open), mirroring spindle's
// project-local data file convention.
func DefaultStorePath() (string, error) {
	dir, err := RecordingsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "locatorcore.db"), nil
}

// PIDFile returns the PID file path for the analytics daemon bound to port.
func PIDFile(port int) (string, error) {
	return InRoot("run", "locatorcore-"+strconv.Itoa(port)+".pid")
}

// InRoot returns a path rooted under RootDir with additional path elements.
func InRoot(parts ...string) (string, error) {
	root, err := RootDir()
	if err != nil {
		return "", err
	}
	all := make([]string, 0, len(parts)+1)
	all = append(all, root)
	all = append(all, parts...)
	return filepath.Join(all...), nil
}

func normalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", path, err)
	}
	return filepath.Clean(absPath), nil
}
