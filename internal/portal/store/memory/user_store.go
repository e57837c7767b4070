package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/codearena/portal/internal/portal/store"
	"github.com/codearena/portal/internal/portal/types"
)

// UserStore is an in-memory user directory keyed by id, with a side index
// preserving creation order for listing.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]types.User
	order []string
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]types.User)}
}

func (s *UserStore) GetUser(_ context.Context, id string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) GetUserByUsername(_ context.Context, username string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if u := s.users[id]; u.Username == username {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *UserStore) CreateUser(_ context.Context, u types.User) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		if s.users[id].Username == u.Username {
			return types.User{}, store.ErrUsernameTaken
		}
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = u
	s.order = append(s.order, u.ID)
	return u, nil
}

func (s *UserStore) UpdateUserAccess(_ context.Context, id, round, status string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	switch round {
	case "round1":
		u.Round1Access = status
	case "round2":
		u.Round2Access = status
	case "round3":
		u.Round3Access = status
	default:
		return types.User{}, store.ErrNotFound
	}
	s.users[id] = u
	return u, nil
}

func (s *UserStore) UpdatePassword(_ context.Context, id, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = password
	s.users[id] = u
	return nil
}

func (s *UserStore) ListUsers(_ context.Context) ([]types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *UserStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
