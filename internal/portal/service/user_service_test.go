package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/codearena/portal/internal/portal/service"
	"github.com/codearena/portal/internal/portal/store/memory"
	"github.com/codearena/portal/internal/portal/types"
)

func newTestUserService(t *testing.T) *service.UserService {
	t.Helper()
	return service.NewUserService(memory.NewUserStore())
}

func TestAuthenticate(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "team_alpha", "secret1", "Alpha", "A1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.Authenticate(ctx, "team_alpha", "secret1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected user %q, got %q", u.ID, got.ID)
	}

	if _, err := svc.Authenticate(ctx, "team_alpha", "wrong"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "secret1"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_StartsLocked(t *testing.T) {
	svc := newTestUserService(t)

	u, err := svc.Register(context.Background(), "team_beta", "pw1234", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != types.RoleParticipant {
		t.Errorf("expected participant role, got %q", u.Role)
	}
	if u.Round1Access != types.AccessLocked || u.Round2Access != types.AccessLocked || u.Round3Access != types.AccessLocked {
		t.Errorf("expected all rounds locked, got %+v", u)
	}
}

func TestUpdateAccess_Validation(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	u, _ := svc.Register(ctx, "team_gamma", "pw1234", "", "")

	if _, err := svc.UpdateAccess(ctx, u.ID, "round4", types.AccessActive); !errors.Is(err, service.ErrInvalidRound) {
		t.Errorf("expected ErrInvalidRound, got %v", err)
	}
	if _, err := svc.UpdateAccess(ctx, u.ID, "round1", "open"); !errors.Is(err, service.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	updated, err := svc.UpdateAccess(ctx, u.ID, "round1", types.AccessActive)
	if err != nil {
		t.Fatalf("UpdateAccess: %v", err)
	}
	if updated.Round1Access != types.AccessActive {
		t.Errorf("expected round1 active, got %q", updated.Round1Access)
	}
}
