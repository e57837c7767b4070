package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/codearena/portal/internal/portal/severity"
	"github.com/codearena/portal/internal/portal/store"
	"github.com/codearena/portal/internal/portal/types"
)

var (
	ErrInvalidCandidate = errors.New("candidate type is missing or unknown")
	ErrUserNotFound     = errors.New("user not found")
)

// ViolationService owns the ingestion path: it validates candidates, derives
// the authoritative severity, snapshots the acting user's identity, appends
// to the log, and publishes each stored record to live subscribers.
type ViolationService struct {
	violations store.ViolationStore
	users      store.UserStore
	broadcast  *Broadcaster
}

func NewViolationService(vs store.ViolationStore, us store.UserStore, b *Broadcaster) *ViolationService {
	return &ViolationService{violations: vs, users: us, broadcast: b}
}

// Record ingests a batch of candidates on behalf of userID.  The whole batch
// is validated before anything is written, so a malformed entry never leaves
// partial writes behind.  Severity is always recomputed from type and
// details; a client-supplied severity is ignored.
func (s *ViolationService) Record(ctx context.Context, userID string, cands []types.Candidate) ([]types.Violation, error) {
	for i, c := range cands {
		if !c.Type.Valid() {
			return nil, fmt.Errorf("candidate %d: %w", i, ErrInvalidCandidate)
		}
	}

	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	out := make([]types.Violation, 0, len(cands))
	for _, c := range cands {
		details := "{}"
		if len(c.Details) > 0 {
			b, err := json.Marshal(c.Details)
			if err != nil {
				return nil, fmt.Errorf("marshal details: %w", err)
			}
			details = string(b)
		}

		stored, err := s.violations.Append(ctx, types.Violation{
			UserID:   user.ID,
			Username: user.Username,
			TeamName: user.TeamName,
			Type:     c.Type,
			Severity: severity.Resolve(c.Type, c.Details),
			Details:  details,
		})
		if err != nil {
			return nil, err
		}

		// Publish before returning so a live viewer sees the violation no
		// later than the next poll of the log.
		s.broadcast.Publish(stored)
		out = append(out, stored)
	}
	return out, nil
}

// Simulate injects a violation attributed to an arbitrary user.  Intended
// for admin test/demo flows; the caller is responsible for the admin check.
func (s *ViolationService) Simulate(ctx context.Context, userID string, c types.Candidate) (types.Violation, error) {
	vs, err := s.Record(ctx, userID, []types.Candidate{c})
	if err != nil {
		return types.Violation{}, err
	}
	return vs[0], nil
}

// List returns violations matching the filter in insertion order.
func (s *ViolationService) List(ctx context.Context, f store.ViolationFilter) ([]types.Violation, error) {
	return s.violations.List(ctx, f)
}
