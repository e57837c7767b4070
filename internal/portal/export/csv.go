// Package export renders violation log snapshots for download.
package export

import (
	"io"
	"strings"
	"time"

	"github.com/codearena/portal/internal/portal/types"
)

// Header is the fixed CSV column order.
var Header = []string{"id", "userId", "username", "teamName", "type", "severity", "timestamp", "details"}

// WriteCSV renders violations as CSV in the fixed column order.  The details
// column is the raw JSON attribute bag and is always quoted, with embedded
// quotes doubled; other fields are quoted only when they contain a
// delimiter.  An empty slice yields a header-only document.
func WriteCSV(w io.Writer, violations []types.Violation) error {
	if _, err := io.WriteString(w, strings.Join(Header, ",")+"\n"); err != nil {
		return err
	}
	for _, v := range violations {
		row := []string{
			field(v.ID),
			field(v.UserID),
			field(v.Username),
			field(v.TeamName),
			field(string(v.Type)),
			field(string(v.Severity)),
			field(v.Timestamp.UTC().Format(time.RFC3339)),
			quote(v.Details),
		}
		if _, err := io.WriteString(w, strings.Join(row, ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// quote wraps s in double quotes, doubling any embedded quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// field escapes s only when RFC 4180 requires it.
func field(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return quote(s)
	}
	return s
}
