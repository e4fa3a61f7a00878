package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tracewright/locatorcore/internal/repository"
	"github.com/tracewright/locatorcore/internal/state"
	"github.com/tracewright/locatorcore/internal/util"
)

func openStore(dbPath string) (*repository.Store, error) {
	path := dbPath
	if path == "" {
		resolved, err := state.DefaultStorePath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return repository.Open(path)
}

func newRecordingsCommand(ctx *commandContext) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "Inspect recordings in the bbolt store",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the bbolt recording store")

	cmd.AddCommand(newRecordingsListCommand(ctx, &dbPath))
	cmd.AddCommand(newRecordingsShowCommand(ctx, &dbPath))
	cmd.AddCommand(newRecordingsDeleteCommand(ctx, &dbPath))
	cmd.AddCommand(newRecordingsStatsCommand(&dbPath))
	return cmd
}

func newRecordingsStatsCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the recording store's file size and location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *dbPath
			if path == "" {
				resolved, err := state.DefaultStorePath()
				if err != nil {
					return err
				}
				path = resolved
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, humanize.Bytes(uint64(info.Size())))
			return nil
		},
	}
}

func newRecordingsListCommand(ctx *commandContext, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			recordings, err := store.ListRecordings()
			if err != nil {
				return err
			}

			if ctx.jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(recordings)
			}

			headers := []string{"ID", "NAME", "STEPS", "UPDATED"}
			rows := make([][]string, 0, len(recordings))
			for _, r := range recordings {
				rows = append(rows, []string{
					r.ID,
					r.Name,
					strconv.Itoa(len(r.Actions)),
					humanizeTimestamp(r.UpdatedAt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}

func newRecordingsShowCommand(ctx *commandContext, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recording's actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.LoadRecording(args[0])
			if err != nil {
				return err
			}

			if ctx.jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rec)
			}

			headers := []string{"STEP", "KIND", "PRIMARY STRATEGY", "CHAIN LEN"}
			rows := make([][]string, 0, len(rec.Actions))
			for _, a := range rec.Actions {
				primary := ""
				if p, ok := a.PrimaryStrategy(); ok {
					primary = string(p.Kind)
				}
				rows = append(rows, []string{
					strconv.Itoa(a.StepNumber),
					string(a.Kind),
					primary,
					strconv.Itoa(len(a.FallbackChain)),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", rec.Name, rec.ID)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
}

func newRecordingsDeleteCommand(ctx *commandContext, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteRecording(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

// humanizeTimestamp renders an RFC3339(Nano) UpdatedAt as a relative time
// ("3 hours ago"); unparseable or empty values pass through unchanged.
func humanizeTimestamp(raw string) string {
	if raw == "" {
		return ""
	}
	parsed := util.ParseTimestamp(raw)
	if parsed.IsZero() {
		return raw
	}
	return humanize.Time(parsed)
}
