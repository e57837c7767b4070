package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/codearena/portal/internal/db"
	"github.com/codearena/portal/internal/portal/store"
	"github.com/codearena/portal/internal/portal/types"
)

// ViolationStore persists the violation log in SQLite.  Reads go straight to
// the pool; writes serialize through the shared single-writer worker.
type ViolationStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewViolationStore(db *sql.DB, writer *dbpkg.Worker) *ViolationStore {
	return &ViolationStore{db: db, writer: writer}
}

func (s *ViolationStore) Append(ctx context.Context, v types.Violation) (types.Violation, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now().UTC()
	}
	if v.Details == "" {
		v.Details = "{}"
	}
	tsMs := v.Timestamp.UTC().UnixMilli()

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO violations(
  id, user_id, username, team_name, type, severity, details, ts_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
			v.ID, v.UserID, v.Username, v.TeamName,
			string(v.Type), string(v.Severity), v.Details, tsMs,
		); err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.Violation{}, err
	}
	return v, nil
}

// List returns matching violations in insertion order.
func (s *ViolationStore) List(ctx context.Context, f store.ViolationFilter) ([]types.Violation, error) {
	cond := "WHERE 1=1"
	var args []any

	if f.Type != "" {
		cond += " AND type = ?"
		args = append(args, string(f.Type))
	}
	if f.Severity != "" {
		cond += " AND severity = ?"
		args = append(args, string(f.Severity))
	}
	if f.Since != nil {
		cond += " AND ts_ms >= ?"
		args = append(args, f.Since.UTC().UnixMilli())
	}
	if f.Until != nil {
		cond += " AND ts_ms <= ?"
		args = append(args, f.Until.UTC().UnixMilli())
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, username, team_name, type, severity, details, ts_ms
FROM violations `+cond+`
ORDER BY seq ASC;`, args...)
	if err != nil {
		return nil, fmt.Errorf("List query: %w", err)
	}
	defer rows.Close()

	var out []types.Violation
	for rows.Next() {
		var (
			v    types.Violation
			typ  string
			sev  string
			tsMs int64
		)
		if err := rows.Scan(&v.ID, &v.UserID, &v.Username, &v.TeamName, &typ, &sev, &v.Details, &tsMs); err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}
		v.Type = types.ViolationType(typ)
		v.Severity = types.Severity(sev)
		v.Timestamp = time.UnixMilli(tsMs).UTC()
		out = append(out, v)
	}
	return out, rows.Err()
}
