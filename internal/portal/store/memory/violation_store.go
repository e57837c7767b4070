package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codearena/portal/internal/portal/store"
	"github.com/codearena/portal/internal/portal/types"
)

// ViolationStore is an in-memory append-only violation log.  This is the
// default backing store; the log is volatile and resets with the process.
type ViolationStore struct {
	mu  sync.RWMutex
	log []types.Violation
}

func NewViolationStore() *ViolationStore {
	return &ViolationStore{}
}

func (s *ViolationStore) Append(_ context.Context, v types.Violation) (types.Violation, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now().UTC()
	}
	if v.Details == "" {
		v.Details = "{}"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, v)
	return v, nil
}

// List returns matching violations in insertion order.
func (s *ViolationStore) List(_ context.Context, f store.ViolationFilter) ([]types.Violation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Violation, 0, len(s.log))
	for _, v := range s.log {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	return out, nil
}
