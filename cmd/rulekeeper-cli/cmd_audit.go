package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gfcbot/rulekeeper/client"
)

func newAuditCmd() *cobra.Command {
	var action, since, until string
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the audit trail",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts := &client.AuditQueryOptions{
				Action: action,
				Limit:  limit,
				Offset: offset,
			}
			var err error
			if opts.Since, err = parseTimeFlag(since); err != nil {
				fatal("parse --since", err)
			}
			if opts.Until, err = parseTimeFlag(until); err != nil {
				fatal("parse --until", err)
			}

			page, err := apiClient.Audit.Query(context.Background(), requireServer(), opts)
			if err != nil {
				fatal("audit query", err)
			}
			switch flagFmt {
			case "table":
				headers := []string{"ID", "ACTION", "ACTOR", "TARGET_TYPE", "TARGET_ID", "CREATED_AT"}
				rows := make([][]string, 0, len(page.Entries))
				for _, e := range page.Entries {
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10), e.Action, e.ActorID, e.TargetType, e.TargetID,
						e.CreatedAt.Format("2006-01-02 15:04:05"),
					})
				}
				printTable(headers, rows)
				fmt.Fprintf(stdout, "\n%d of %d entries\n", len(page.Entries), page.Total)
			case "quiet":
				for _, e := range page.Entries {
					printID(strconv.FormatInt(e.ID, 10))
				}
			default:
				render(page, "")
			}
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "Filter by action")
	cmd.Flags().StringVar(&since, "since", "", "Only entries at or after this time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Only entries at or before this time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many results")

	cmd.AddCommand(auditActionsCmd())
	cmd.AddCommand(auditDeleteCmd())
	cmd.AddCommand(auditClearCmd())
	return cmd
}

// parseTimeFlag accepts RFC3339 or a bare date (midnight UTC). Empty means unset.
func parseTimeFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", raw)
	}
	return &t, nil
}

func auditActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the distinct actions in the audit trail",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			actions, err := apiClient.Audit.Actions(context.Background(), requireServer())
			if err != nil {
				fatal("audit actions", err)
			}
			if flagFmt != "quiet" && flagFmt != "table" {
				render(actions, "")
				return
			}
			for _, a := range actions {
				printID(a)
			}
		},
	}
}

func auditDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Hide one audit entry",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				fatal("parse id", fmt.Errorf("%q is not a positive integer", args[0]))
			}
			if err := apiClient.Audit.Delete(context.Background(), requireServer(), id); err != nil {
				fatal("delete audit entry", err)
			}
			fmt.Fprintln(stdout, "deleted")
		},
	}
}

func auditClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Hide every audit entry of the server",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if !yes {
				fatal("clear", fmt.Errorf("refusing to clear the audit trail without --yes"))
			}
			n, err := apiClient.Audit.DeleteAll(context.Background(), requireServer())
			if err != nil {
				fatal("clear audit", err)
			}
			render(map[string]int{"deleted": n}, strconv.Itoa(n))
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm clearing")
	return cmd
}
