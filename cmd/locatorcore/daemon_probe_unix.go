//go:build !windows

package main

import (
	"os"
	"syscall"
)

// processAlive probes liveness via signal 0, which does not affect the
// process but fails if it is gone (os.FindProcess always succeeds on
// POSIX regardless of whether the PID exists).
func processAlive(proc *os.Process) bool {
	return proc.Signal(syscall.Signal(0)) == nil
}
