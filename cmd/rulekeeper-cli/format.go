package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// stdout is where every command writes its result. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

func printJSON(v any) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encode json", err)
	}
}

func printYAML(v any) {
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		fatal("encode yaml", err)
	}
	if err := enc.Close(); err != nil {
		fatal("encode yaml", err)
	}
}

// printTable writes a header, a dashed rule under each header, then rows.
func printTable(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)

	rule := make([]string, len(headers))
	for i, h := range headers {
		rule[i] = strings.Repeat("-", len(h))
	}

	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if err := tw.Flush(); err != nil {
		fatal("write table", err)
	}
}

func printID(id string) {
	fmt.Fprintln(stdout, id)
}

// render prints v in the structured format picked by --format. Commands with
// a table layout handle "table" before calling render; the rest get JSON.
func render(v any, id string) {
	switch flagFmt {
	case "quiet":
		printID(id)
	case "yaml":
		printYAML(v)
	default:
		printJSON(v)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
