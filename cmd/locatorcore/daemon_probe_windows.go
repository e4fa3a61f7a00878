//go:build windows

package main

import "os"

// processAlive treats a successful os.FindProcess as sufficient on
// Windows, where FindProcess itself verifies the process exists.
func processAlive(proc *os.Process) bool {
	return proc != nil
}
