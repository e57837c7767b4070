package service

import (
	"context"
	"errors"
	"strings"

	"github.com/codearena/portal/internal/portal/store"
	"github.com/codearena/portal/internal/portal/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRound       = errors.New("round must be round1, round2 or round3")
	ErrInvalidStatus      = errors.New("status must be locked or active")
)

type UserService struct {
	users store.UserStore
}

func NewUserService(us store.UserStore) *UserService {
	return &UserService{users: us}
}

// Authenticate checks a username/password pair and returns the matching
// user.  Passwords are compared in the clear; hashing is out of scope.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return types.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return types.User{}, err
	}
	if u.Password != password {
		return types.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (types.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.users.ListUsers(ctx)
}

// Register creates a participant account.  New users start with every round
// locked until an admin opens access.
func (s *UserService) Register(ctx context.Context, username, password, teamName, teamID string) (types.User, error) {
	return s.users.CreateUser(ctx, types.User{
		Username:     strings.TrimSpace(username),
		Password:     password,
		Role:         types.RoleParticipant,
		TeamName:     strings.TrimSpace(teamName),
		TeamID:       strings.TrimSpace(teamID),
		Round1Access: types.AccessLocked,
		Round2Access: types.AccessLocked,
		Round3Access: types.AccessLocked,
	})
}

// Create adds a user with an explicit role.  Admin-only path.
func (s *UserService) Create(ctx context.Context, u types.User) (types.User, error) {
	if u.Role == "" {
		u.Role = types.RoleParticipant
	}
	for _, access := range []*string{&u.Round1Access, &u.Round2Access, &u.Round3Access} {
		if *access == "" {
			*access = types.AccessLocked
		}
	}
	return s.users.CreateUser(ctx, u)
}

func (s *UserService) UpdateAccess(ctx context.Context, id, round, status string) (types.User, error) {
	switch round {
	case "round1", "round2", "round3":
	default:
		return types.User{}, ErrInvalidRound
	}
	switch status {
	case types.AccessLocked, types.AccessActive:
	default:
		return types.User{}, ErrInvalidStatus
	}
	return s.users.UpdateUserAccess(ctx, id, round, status)
}

func (s *UserService) ChangePassword(ctx context.Context, id, newPassword string) error {
	return s.users.UpdatePassword(ctx, id, newPassword)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.DeleteUser(ctx, id)
}
