package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SeedOptions struct {
	AdminUsername string
	AdminPassword string
}

// SeedAdmin ensures the organizer account exists so the portal is usable on
// first boot.  Idempotent: an existing admin row is left untouched.
func SeedAdmin(ctx context.Context, db *sql.DB, opt SeedOptions) error {
	if opt.AdminUsername == "" {
		opt.AdminUsername = "admin"
	}
	if opt.AdminPassword == "" {
		opt.AdminPassword = "admin_password"
	}

	now := time.Now().UTC().UnixMilli()

	if _, err := db.ExecContext(ctx, `
INSERT INTO users(
  id, username, password, role, team_name, team_id,
  round1_access, round2_access, round3_access,
  created_at_ms, updated_at_ms
) VALUES (?, ?, ?, 'admin', 'Organizer', 'ADMIN', 'active', 'active', 'active', ?, ?)
ON CONFLICT(username) DO NOTHING;
`, uuid.NewString(), opt.AdminUsername, opt.AdminPassword, now, now); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	return nil
}
