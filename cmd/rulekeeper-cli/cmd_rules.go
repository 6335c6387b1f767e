package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gfcbot/rulekeeper/client"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage embed rewrite rules",
	}
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesUpdateCmd())
	cmd.AddCommand(rulesDeleteCmd())
	cmd.AddCommand(rulesReorderCmd())
	return cmd
}

func rulesListCmd() *cobra.Command {
	var platform string
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in precedence order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			rules, err := apiClient.Rules.List(context.Background(), requireServer(), &client.ListRulesOptions{
				Platform:        platform,
				IncludeInactive: all,
			})
			if err != nil {
				fatal("list rules", err)
			}
			switch flagFmt {
			case "table":
				printRules(rules)
			case "quiet":
				for _, r := range rules {
					printID(r.ID)
				}
			default:
				render(rules, "")
			}
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "Filter by platform (twitter|instagram)")
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive rules")
	return cmd
}

func printRules(rules []client.Rule) {
	headers := []string{"PRIORITY", "ID", "PLATFORM", "KIND", "PATTERN", "ACTIVE"}
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{strconv.Itoa(r.Priority), r.ID, r.Platform, r.Kind, r.Pattern, yesNo(r.Active)})
	}
	printTable(headers, rows)
}

func rulesAddCmd() *cobra.Command {
	var kind string
	var inactive bool
	cmd := &cobra.Command{
		Use:   "add <platform> <pattern>",
		Short: "Add a rule at the end of the platform's order",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.CreateRuleRequest{
				Platform: args[0],
				Pattern:  args[1],
				Kind:     kind,
			}
			if inactive {
				active := false
				req.Active = &active
			}
			rule, err := apiClient.Rules.Create(context.Background(), requireServer(), req)
			if err != nil {
				fatal("add rule", err)
			}
			render(rule, rule.ID)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "prefix", "Rule kind: prefix|replacement")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the rule disabled")
	return cmd
}

func rulesUpdateCmd() *cobra.Command {
	var pattern, kind, active string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a rule's pattern, kind or active state",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.UpdateRuleRequest{}
			if cmd.Flags().Changed("pattern") {
				req.Pattern = &pattern
			}
			if cmd.Flags().Changed("kind") {
				req.Kind = &kind
			}
			if cmd.Flags().Changed("active") {
				b, err := strconv.ParseBool(active)
				if err != nil {
					fatal("parse --active", err)
				}
				req.Active = &b
			}
			rule, err := apiClient.Rules.Update(context.Background(), requireServer(), args[0], req)
			if err != nil {
				fatal("update rule", err)
			}
			render(rule, rule.ID)
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "", "New pattern")
	cmd.Flags().StringVar(&kind, "kind", "", "New kind: prefix|replacement")
	cmd.Flags().StringVar(&active, "active", "", "Enable or disable the rule (true|false)")
	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Rules.Delete(context.Background(), requireServer(), args[0]); err != nil {
				fatal("delete rule", err)
			}
			fmt.Fprintln(stdout, "deleted")
		},
	}
}

func rulesReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <platform> <id>...",
		Short: "Set rule precedence; every rule of the platform must be listed once",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			rules, err := apiClient.Rules.Reorder(context.Background(), requireServer(), args[0], args[1:])
			if err != nil {
				fatal("reorder rules", err)
			}
			if flagFmt == "table" {
				printRules(rules)
				return
			}
			render(rules, "reordered")
		},
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <platform> <url>",
		Short: "Show how a link would be rewritten",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			res, err := apiClient.Rules.Resolve(context.Background(), requireServer(), args[0], args[1])
			if err != nil {
				fatal("resolve", err)
			}
			if flagFmt == "table" {
				ruleID := ""
				if res.Rule != nil {
					ruleID = res.Rule.ID
				}
				printTable([]string{"OUTCOME", "URL", "RULE"}, [][]string{{res.Outcome, res.URL, ruleID}})
				return
			}
			render(res, res.URL)
		},
	}
}
