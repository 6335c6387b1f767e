package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gfcbot/rulekeeper/client"
)

func newRetentionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retention",
		Short: "Manage history retention policies",
	}
	cmd.AddCommand(retentionListCmd())
	cmd.AddCommand(retentionGetCmd())
	cmd.AddCommand(retentionSetCmd())
	return cmd
}

func printPolicies(policies []client.RetentionPolicy) {
	headers := []string{"PLATFORM", "ENABLED", "MAX_DAYS", "REPOST", "CONFIGURED"}
	rows := make([][]string, 0, len(policies))
	for _, p := range policies {
		rows = append(rows, []string{p.Platform, yesNo(p.Enabled), strconv.Itoa(p.MaxDays), yesNo(p.RepostEnabled), yesNo(p.Persisted)})
	}
	printTable(headers, rows)
}

func retentionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the effective policy of every platform",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			policies, err := apiClient.Retention.List(context.Background(), requireServer())
			if err != nil {
				fatal("list policies", err)
			}
			if flagFmt == "table" {
				printPolicies(policies)
				return
			}
			render(policies, "")
		},
	}
}

func retentionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <platform>",
		Short: "Show the effective policy of one platform",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			p, err := apiClient.Retention.Get(context.Background(), requireServer(), args[0])
			if err != nil {
				fatal("get policy", err)
			}
			if flagFmt == "table" {
				printPolicies([]client.RetentionPolicy{*p})
				return
			}
			render(p, strconv.Itoa(p.MaxDays))
		},
	}
}

func retentionSetCmd() *cobra.Command {
	var enabled, repost bool
	var maxDays int
	cmd := &cobra.Command{
		Use:   "set <platform>",
		Short: "Create or change the policy of one platform",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.UpdatePolicyRequest{}
			if cmd.Flags().Changed("enabled") {
				req.Enabled = &enabled
			}
			if cmd.Flags().Changed("max-days") {
				req.MaxDays = &maxDays
			}
			if cmd.Flags().Changed("repost") {
				req.RepostEnabled = &repost
			}
			p, err := apiClient.Retention.Update(context.Background(), requireServer(), args[0], req)
			if err != nil {
				fatal("set policy", err)
			}
			if flagFmt == "table" {
				printPolicies([]client.RetentionPolicy{*p})
				return
			}
			render(p, strconv.Itoa(p.MaxDays))
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", true, "Enable the retention sweep for the platform")
	cmd.Flags().IntVar(&maxDays, "max-days", 90, "Days of history to keep (1-90)")
	cmd.Flags().BoolVar(&repost, "repost", false, "Enable reposting")
	return cmd
}
