package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tracewright/locatorcore/internal/hostrpc"
	"github.com/tracewright/locatorcore/internal/repository"
	"github.com/tracewright/locatorcore/internal/state"
)

// newServeCommand runs the Host RPC stdio loop (spec.md §6). The host
// process (browser extension shell) launches this as a child process and
// exchanges framed envelopes over its stdin/stdout; vision/CDP/input
// ports are out of scope for the CLI itself and are left nil, matching
// a headless "recording store only" deployment. A full host integration
// wires those through hostrpc.Server.NewRecording/NewReplay instead.
func newServeCommand(ctx *commandContext) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Host RPC stdio server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := ctx.logger()

			path := dbPath
			if path == "" {
				resolved, err := state.DefaultStorePath()
				if err != nil {
					return err
				}
				path = resolved
			}

			store, err := repository.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			log.WithField("store", path).Info("locatorcore: serving Host RPC on stdio")

			server := hostrpc.NewServer(store, log)
			return server.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the bbolt recording store (defaults under the state root)")
	return cmd
}
