package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tracewright/locatorcore/internal/state"
	"github.com/tracewright/locatorcore/internal/util"
)

// newDaemonCommand manages a detached "analytics serve" background
// process, the way spindle's daemon_command.go launches and tracks its
// own daemon via a PID file.
func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var dbPath string
	var port int

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the background analytics server",
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the analytics server as a detached background process",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath, err := state.PIDFile(port)
			if err != nil {
				return err
			}
			if pid, running := readRunningPID(pidPath); running {
				return fmt.Errorf("daemon: already running (pid %d)", pid)
			}

			exePath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("daemon: resolve executable: %w", err)
			}

			child := exec.Command(exePath, "analytics", "serve", "--addr", addr, "--db", dbPath)
			child.Stdout = nil
			child.Stderr = nil
			util.SetDetachedProcess(child)

			if err := child.Start(); err != nil {
				return fmt.Errorf("daemon: start: %w", err)
			}
			if err := os.MkdirAll(parentDir(pidPath), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(pidPath, []byte(strconv.Itoa(child.Process.Pid)), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started analytics daemon (pid %d) on %s\n", child.Process.Pid, addr)
			return nil
		},
	}
	startCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4173", "Listen address")
	startCmd.Flags().StringVar(&dbPath, "db", "", "Path to the bbolt recording store")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background analytics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath, err := state.PIDFile(port)
			if err != nil {
				return err
			}
			pid, running := readRunningPID(pidPath)
			if !running {
				return fmt.Errorf("daemon: not running")
			}
			proc, err := os.FindProcess(pid)
			if err != nil {
				return err
			}
			if err := proc.Kill(); err != nil {
				return err
			}
			_ = os.Remove(pidPath)
			fmt.Fprintf(cmd.OutOrStdout(), "stopped analytics daemon (pid %d)\n", pid)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the background analytics server is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath, err := state.PIDFile(port)
			if err != nil {
				return err
			}
			if pid, running := readRunningPID(pidPath); running {
				fmt.Fprintf(cmd.OutOrStdout(), "running (pid %d)\n", pid)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "not running")
			return nil
		},
	}

	cmd.PersistentFlags().IntVar(&port, "port", 4173, "Port used to key the PID file under the state root")
	cmd.AddCommand(startCmd, stopCmd, statusCmd)
	return cmd
}

func readRunningPID(pidPath string) (int, bool) {
	raw, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil || !processAlive(proc) {
		return 0, false
	}
	return pid, true
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[:i]
		}
	}
	return "."
}
