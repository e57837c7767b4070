package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/codearena/portal/internal/portal/export"
	"github.com/codearena/portal/internal/portal/types"
)

func TestWriteCSV_EmptyLogIsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly 1 line, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "id,userId,username,teamName,type,severity,timestamp,details" {
		t.Errorf("unexpected header: %q", lines[0])
	}
}

func TestWriteCSV_DetailsQuoting(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := export.WriteCSV(&buf, []types.Violation{{
		ID:        "v1",
		UserID:    "u1",
		Username:  "team_alpha",
		TeamName:  "Alpha",
		Type:      types.ViolationPaste,
		Severity:  types.SeverityHigh,
		Details:   `{"length":250}`,
		Timestamp: ts,
	}})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}

	// Embedded quotes in the JSON bag are doubled and the field is quoted.
	want := `v1,u1,team_alpha,Alpha,paste,high,2026-03-01T10:30:00Z,"{""length"":250}"`
	if lines[1] != want {
		t.Errorf("row mismatch:\n got  %q\n want %q", lines[1], want)
	}
}

func TestWriteCSV_EmptyDetailsStillQuoted(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := export.WriteCSV(&buf, []types.Violation{{
		ID:        "v2",
		UserID:    "u2",
		Username:  "team_beta",
		TeamName:  "Beta, the second",
		Type:      types.ViolationTabSwitch,
		Severity:  types.SeverityWarning,
		Details:   "{}",
		Timestamp: ts,
	}})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}

	// The details column is quoted even without embedded quotes, and a team
	// name containing a comma is escaped.
	want := `v2,u2,team_beta,"Beta, the second",tab_switch,warning,2026-03-01T10:30:00Z,"{}"`
	if lines[1] != want {
		t.Errorf("row mismatch:\n got  %q\n want %q", lines[1], want)
	}
}
