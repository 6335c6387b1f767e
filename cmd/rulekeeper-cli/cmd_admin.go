package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Health(context.Background())
			if err != nil {
				fatal("health", err)
			}
			if flagFmt == "table" {
				printTable(
					[]string{"STATUS", "VERSION", "DATABASE", "SWEEP_RUNNING"},
					[][]string{{resp.Status, resp.Version, resp.Database, yesNo(resp.SweepRunning)}},
				)
				return
			}
			render(resp, resp.Status)
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run a retention sweep now and wait for its summary",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			summary, err := apiClient.Sweep.Run(context.Background())
			if err != nil {
				fatal("sweep", err)
			}

			deleted := 0
			for _, t := range summary.Tenants {
				for _, n := range t.Deleted {
					deleted += n
				}
			}

			if flagFmt == "table" {
				headers := []string{"TENANT", "MAX_DAYS", "CUTOFF", "DELETED"}
				rows := make([][]string, 0, len(summary.Tenants))
				for _, t := range summary.Tenants {
					sum := 0
					for _, n := range t.Deleted {
						sum += n
					}
					rows = append(rows, []string{t.TenantID, strconv.Itoa(t.MaxDays), t.Cutoff.Format(time.RFC3339), strconv.Itoa(sum)})
				}
				printTable(headers, rows)
				for _, f := range summary.Failures {
					fmt.Fprintf(stdout, "failed: %s %s: %s\n", f.TenantID, f.Dataset, f.Error)
				}
				if len(summary.Skipped) > 0 {
					fmt.Fprintf(stdout, "skipped: %s\n", strings.Join(summary.Skipped, ", "))
				}
				return
			}
			render(summary, strconv.Itoa(deleted))
		},
	}
}
