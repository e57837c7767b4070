package agent

import (
	"encoding/json"
	"time"

	"github.com/codearena/portal/internal/portal/types"
)

// throttle suppresses rapid repeats of the same detection.  The key is the
// candidate's type plus its serialized details, so identical signals within
// the window collapse to one candidate while distinct payloads of the same
// type pass through independently.  Per-key sliding window, not a global
// rate limit.
type throttle struct {
	window time.Duration
	now    func() time.Time
	last   map[string]time.Time
}

func newThrottle(window time.Duration, now func() time.Time) *throttle {
	return &throttle{
		window: window,
		now:    now,
		last:   make(map[string]time.Time),
	}
}

// allow reports whether the candidate should be accepted, recording the
// acceptance time when it is.
func (t *throttle) allow(c types.Candidate) bool {
	key := throttleKey(c)
	now := t.now()

	if last, ok := t.last[key]; ok && now.Sub(last) < t.window {
		return false
	}
	t.last[key] = now
	return true
}

func throttleKey(c types.Candidate) string {
	// encoding/json sorts map keys, so equal detail bags serialize equally.
	b, _ := json.Marshal(c.Details)
	return string(c.Type) + "|" + string(b)
}
