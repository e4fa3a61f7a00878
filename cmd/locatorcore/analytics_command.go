package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracewright/locatorcore/internal/analytics"
)

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Strategy win-rate analytics",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the bbolt recording store")

	cmd.AddCommand(newAnalyticsReportCommand(ctx, &dbPath))
	cmd.AddCommand(newAnalyticsServeCommand(ctx, &dbPath))
	return cmd
}

func newAnalyticsReportCommand(ctx *commandContext, dbPath *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a win-rate report for the recent window",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			events, err := store.TelemetrySince(days)
			if err != nil {
				return err
			}
			report := analytics.Summarize(days, events)

			if ctx.jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
			}

			headers := []string{"STRATEGY", "ATTEMPTS", "WINS", "WIN RATE"}
			rows := make([][]string, 0, len(report.Strategies))
			for _, s := range report.Strategies {
				rows = append(rows, []string{
					string(s.Kind),
					fmt.Sprintf("%d", s.Attempts),
					fmt.Sprintf("%d", s.Wins),
					fmt.Sprintf("%.0f%%", s.WinRate*100),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "last %d days, %d attempts\n", report.Days, report.Attempts)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", analytics.DefaultWindowDays, "Window size in days")
	return cmd
}

func newAnalyticsServeCommand(ctx *commandContext, dbPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the loopback analytics HTTP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			log := ctx.logger()
			router := analytics.NewRouter(store, log)

			srv := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("analytics: listen %s: %w", addr, err)
			}

			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			log.WithField("addr", addr).Info("locatorcore: analytics server listening")
			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4173", "Listen address")
	return cmd
}
