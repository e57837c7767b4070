package httpapi

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "portal_session"

type session struct {
	userID    string
	expiresAt time.Time
}

// SessionManager issues and resolves opaque session ids backed by an
// in-memory table.  Sessions are the only authentication mechanism; a lost
// table on restart just forces everyone to log in again.
type SessionManager struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]session
	now      func() time.Time
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{
		ttl:      ttl,
		sessions: make(map[string]session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new session for userID and returns its id and expiry.
func (m *SessionManager) Create(userID string) (string, time.Time) {
	id := uuid.NewString()
	expires := m.now().Add(m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = session{userID: userID, expiresAt: expires}
	return id, expires
}

// Lookup resolves a session id to its user id.  Expired sessions are removed
// on access.
func (m *SessionManager) Lookup(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return "", false
	}
	if m.now().After(s.expiresAt) {
		delete(m.sessions, id)
		return "", false
	}
	return s.userID, true
}

func (m *SessionManager) Destroy(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// PruneExpired removes expired sessions and returns how many were dropped.
func (m *SessionManager) PruneExpired() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for id, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// SessionJanitor periodically sweeps expired sessions out of the manager.
// It runs as a background goroutine and is safe to stop via its context or
// the Stop method.
type SessionJanitor struct {
	sessions *SessionManager
	interval time.Duration
	logger   *log.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSessionJanitor creates a janitor but does not start it.
func NewSessionJanitor(m *SessionManager, interval time.Duration, logger *log.Logger) *SessionJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionJanitor{
		sessions: m,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.  The loop exits when ctx is
// cancelled or Stop is called.
func (j *SessionJanitor) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	go j.loop(ctx)
	j.logger.Printf("session janitor started (interval=%s)", j.interval)
}

// Stop signals the janitor to exit and waits for it to finish.
func (j *SessionJanitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	<-j.done
}

func (j *SessionJanitor) loop(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := j.sessions.PruneExpired(); n > 0 {
				j.logger.Printf("session janitor: dropped %d expired sessions", n)
			}
		}
	}
}

func setSessionCookie(w http.ResponseWriter, id string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
