package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gfcbot/rulekeeper/internal/db"
	"github.com/gfcbot/rulekeeper/internal/sweep"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func writeTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			width := 0
			if i < len(widths) {
				width = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", width, cell)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, width := range widths {
		seps[i] = strings.Repeat("-", width)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

// structured handles the formats shared by every command. It reports false
// for table output, which each command renders itself.
func structured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		return true, writeJSON(w, v)
	case "yaml":
		return true, writeYAML(w, v)
	case "table", "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown format %q (expected table|json|yaml)", format)
	}
}

// writeSummary prints one row per tenant and dataset, then failures and skipped tenants.
func writeSummary(w io.Writer, format string, s *sweep.Summary) error {
	if done, err := structured(w, format, s); done {
		return err
	}

	rows := [][]string{}
	for _, t := range s.Tenants {
		datasets := make([]string, 0, len(t.Deleted))
		for name := range t.Deleted {
			datasets = append(datasets, name)
		}
		sort.Strings(datasets)

		for _, name := range datasets {
			rows = append(rows, []string{
				t.TenantID,
				strconv.Itoa(t.MaxDays),
				t.Cutoff.UTC().Format(time.RFC3339),
				name,
				strconv.Itoa(t.Deleted[name]),
			})
		}
	}
	writeTable(w, []string{"TENANT", "MAX_DAYS", "CUTOFF", "DATASET", "DELETED"}, rows)

	if len(s.Failures) > 0 {
		fmt.Fprintln(w)
		failures := make([][]string, 0, len(s.Failures))
		for _, f := range s.Failures {
			failures = append(failures, []string{f.TenantID, f.Dataset, f.Error})
		}
		writeTable(w, []string{"TENANT", "DATASET", "ERROR"}, failures)
	}

	if len(s.Skipped) > 0 {
		fmt.Fprintf(w, "\nskipped: %s\n", strings.Join(s.Skipped, ", "))
	}

	fmt.Fprintf(w, "\n%d tenant(s), %d row(s) deleted in %s\n",
		len(s.Tenants), s.TotalDeleted(), s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))

	return nil
}

func writeMigrations(w io.Writer, format string, states []db.MigrationState) error {
	if done, err := structured(w, format, states); done {
		return err
	}

	rows := make([][]string, 0, len(states))
	for _, st := range states {
		applied := "pending"
		if st.Applied {
			applied = st.AppliedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{strconv.FormatInt(st.Version, 10), st.File, applied})
	}
	writeTable(w, []string{"VERSION", "FILE", "APPLIED"}, rows)

	return nil
}
