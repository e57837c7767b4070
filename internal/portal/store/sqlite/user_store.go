package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/codearena/portal/internal/db"
	"github.com/codearena/portal/internal/portal/store"
	"github.com/codearena/portal/internal/portal/types"
)

type UserStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewUserStore(db *sql.DB, writer *dbpkg.Worker) *UserStore {
	return &UserStore{db: db, writer: writer}
}

const userColumns = `id, username, password, role, team_name, team_id,
round1_access, round2_access, round3_access`

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var (
		u        types.User
		role     string
		teamName sql.NullString
		teamID   sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Password, &role, &teamName, &teamID,
		&u.Round1Access, &u.Round2Access, &u.Round3Access,
	)
	if err != nil {
		return types.User{}, err
	}
	u.Role = types.Role(role)
	u.TeamName = teamName.String
	u.TeamID = teamID.String
	return u, nil
}

func (s *UserStore) GetUser(ctx context.Context, id string) (types.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?;`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, store.ErrNotFound
	}
	if err != nil {
		return types.User{}, fmt.Errorf("GetUser: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (types.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?;`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, store.ErrNotFound
	}
	if err != nil {
		return types.User{}, fmt.Errorf("GetUserByUsername: %w", err)
	}
	return u, nil
}

func (s *UserStore) CreateUser(ctx context.Context, u types.User) (types.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = types.RoleParticipant
	}
	for _, access := range []*string{&u.Round1Access, &u.Round2Access, &u.Round3Access} {
		if *access == "" {
			*access = types.AccessLocked
		}
	}
	now := time.Now().UTC().UnixMilli()

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO users(
  id, username, password, role, team_name, team_id,
  round1_access, round2_access, round3_access,
  created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			u.ID, u.Username, u.Password, string(u.Role),
			nullIfEmpty(u.TeamName), nullIfEmpty(u.TeamID),
			u.Round1Access, u.Round2Access, u.Round3Access,
			now, now,
		)
		if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			return store.ErrUsernameTaken
		}
		if err != nil {
			return fmt.Errorf("CreateUser insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.User{}, err
	}
	return u, nil
}

func (s *UserStore) UpdateUserAccess(ctx context.Context, id, round, status string) (types.User, error) {
	var col string
	switch round {
	case "round1":
		col = "round1_access"
	case "round2":
		col = "round2_access"
	case "round3":
		col = "round3_access"
	default:
		return types.User{}, store.ErrNotFound
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET `+col+` = ?, updated_at_ms = ? WHERE id = ?;`,
			status, time.Now().UTC().UnixMilli(), id)
		if err != nil {
			return fmt.Errorf("UpdateUserAccess: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return types.User{}, err
	}
	return s.GetUser(ctx, id)
}

func (s *UserStore) UpdatePassword(ctx context.Context, id, password string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET password = ?, updated_at_ms = ? WHERE id = ?;`,
			password, time.Now().UTC().UnixMilli(), id)
		if err != nil {
			return fmt.Errorf("UpdatePassword: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *UserStore) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at_ms ASC, username ASC;`)
	if err != nil {
		return nil, fmt.Errorf("ListUsers query: %w", err)
	}
	defer rows.Close()

	var out []types.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUsers scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *UserStore) DeleteUser(ctx context.Context, id string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?;`, id)
		if err != nil {
			return fmt.Errorf("DeleteUser: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
