package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/codearena/portal/internal/portal/store"
	sqlitestore "github.com/codearena/portal/internal/portal/store/sqlite"
	"github.com/codearena/portal/internal/portal/types"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	us := sqlitestore.NewUserStore(conn, w)
	ctx := context.Background()

	u, err := us.CreateUser(ctx, types.User{
		Username: "team_alpha",
		Password: "secret1",
		TeamName: "Alpha",
		TeamID:   "A1",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Error("expected id to be assigned")
	}
	if u.Role != types.RoleParticipant {
		t.Errorf("expected default role participant, got %q", u.Role)
	}
	if u.Round1Access != types.AccessLocked {
		t.Errorf("expected round1 locked by default, got %q", u.Round1Access)
	}

	got, err := us.GetUserByUsername(ctx, "team_alpha")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != u.ID || got.TeamName != "Alpha" || got.Password != "secret1" {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestUserStore_DuplicateUsername(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	us := sqlitestore.NewUserStore(conn, w)
	ctx := context.Background()

	if _, err := us.CreateUser(ctx, types.User{Username: "dup", Password: "pw"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := us.CreateUser(ctx, types.User{Username: "dup", Password: "pw2"})
	if !errors.Is(err, store.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserStore_UpdateAccessAndPassword(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	us := sqlitestore.NewUserStore(conn, w)
	ctx := context.Background()

	u, _ := us.CreateUser(ctx, types.User{Username: "team_beta", Password: "pw"})

	updated, err := us.UpdateUserAccess(ctx, u.ID, "round2", types.AccessActive)
	if err != nil {
		t.Fatalf("UpdateUserAccess: %v", err)
	}
	if updated.Round2Access != types.AccessActive {
		t.Errorf("expected round2 active, got %q", updated.Round2Access)
	}

	if _, err := us.UpdateUserAccess(ctx, "missing", "round1", types.AccessActive); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing user, got %v", err)
	}

	if err := us.UpdatePassword(ctx, u.ID, "newpw123"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	got, _ := us.GetUser(ctx, u.ID)
	if got.Password != "newpw123" {
		t.Errorf("expected updated password, got %q", got.Password)
	}
}

func TestUserStore_DeleteUser(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	us := sqlitestore.NewUserStore(conn, w)
	ctx := context.Background()

	u, _ := us.CreateUser(ctx, types.User{Username: "gone", Password: "pw"})
	if err := us.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := us.GetUser(ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := us.DeleteUser(ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
