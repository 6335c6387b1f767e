package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gfcbot/rulekeeper/internal/db"
	"github.com/gfcbot/rulekeeper/internal/sweep"
)

func testSummary() *sweep.Summary {
	start := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)

	return &sweep.Summary{
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Tenants: []sweep.TenantResult{
			{
				TenantID: "111111111111111111",
				MaxDays:  30,
				Cutoff:   start.AddDate(0, 0, -30),
				Deleted:  map[string]int{"message_history": 12, "audit_log": 3},
			},
		},
		Failures: []sweep.Failure{
			{TenantID: "222222222222222222", Dataset: "audit_log", Error: "db down"},
		},
		Skipped: []string{"333333333333333333"},
	}
}

func TestWriteSummary_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSummary(&buf, "table", testSummary()); err != nil {
		t.Fatalf("writeSummary: %v", err)
	}

	out := buf.String()
	lines := strings.Split(out, "\n")

	if !strings.HasPrefix(lines[0], "TENANT") || !strings.Contains(lines[0], "DELETED") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "------") {
		t.Errorf("separator = %q", lines[1])
	}
	// Datasets are listed in name order.
	if !strings.Contains(lines[2], "audit_log") || !strings.Contains(lines[3], "message_history") {
		t.Errorf("dataset rows out of order:\n%s", out)
	}

	for _, want := range []string{"db down", "skipped: 333333333333333333", "1 tenant(s), 15 row(s) deleted in 1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummary_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSummary(&buf, "json", testSummary()); err != nil {
		t.Fatalf("writeSummary: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if _, ok := got["tenants"]; !ok {
		t.Errorf("missing tenants key: %v", got)
	}
	if !strings.Contains(buf.String(), "\n  \"") {
		t.Error("expected indented JSON")
	}
}

func TestWriteSummary_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSummary(&buf, "yaml", testSummary()); err != nil {
		t.Fatalf("writeSummary: %v", err)
	}

	var got struct {
		Tenants []struct {
			TenantID string         `yaml:"tenant_id"`
			Deleted  map[string]int `yaml:"deleted"`
		} `yaml:"tenants"`
		Skipped []string `yaml:"skipped"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	if len(got.Tenants) != 1 || got.Tenants[0].Deleted["message_history"] != 12 {
		t.Errorf("tenants = %+v", got.Tenants)
	}
	if len(got.Skipped) != 1 {
		t.Errorf("skipped = %v", got.Skipped)
	}
}

func TestWriteSummary_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSummary(&buf, "xml", testSummary()); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestWriteMigrations_Table(t *testing.T) {
	states := []db.MigrationState{
		{Version: 1, File: "001_initial.sql", Applied: true, AppliedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{Version: 2, File: "002_next.sql"},
	}

	var buf bytes.Buffer
	if err := writeMigrations(&buf, "table", states); err != nil {
		t.Fatalf("writeMigrations: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "2026-01-02T03:04:05Z") {
		t.Errorf("missing applied time:\n%s", out)
	}
	if !strings.Contains(out, "pending") {
		t.Errorf("missing pending marker:\n%s", out)
	}
}

func TestWriteTable_Alignment(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"A", "LONGER"}, [][]string{{"wide-cell", "x"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "A          LONGER" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "wide-cell  x" {
		t.Errorf("row = %q", lines[2])
	}
}
