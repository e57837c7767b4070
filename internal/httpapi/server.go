package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/codearena/portal/internal/portal/service"
	"github.com/codearena/portal/internal/portal/store"
	"github.com/codearena/portal/internal/portal/types"
)

type Dependencies struct {
	Logger     *log.Logger
	Addr       string
	Users      *service.UserService
	Violations *service.ViolationService
	Broadcast  *service.Broadcaster
	Sessions   *SessionManager // optional; a default 24h manager is created if nil
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	users      *service.UserService
	violations *service.ViolationService
	broadcast  *service.Broadcaster
	sessions   *SessionManager
	validate   *validator.Validate
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:     d.Logger,
		mux:        mux,
		users:      d.Users,
		violations: d.Violations,
		broadcast:  d.Broadcast,
		sessions:   d.Sessions,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	if s.sessions == nil {
		s.sessions = NewSessionManager(24 * time.Hour)
	}

	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /me", s.requireUser(s.handleMe))
	mux.HandleFunc("POST /register", s.handleRegister)

	mux.HandleFunc("POST /violations", s.requireUser(s.handleRecordViolations))
	mux.HandleFunc("GET /admin/violations", s.requireAdmin(s.handleListViolations))
	mux.HandleFunc("GET /admin/violations/stream", s.requireAdmin(s.handleViolationStream))
	mux.HandleFunc("GET /admin/violations/export", s.requireAdmin(s.handleExportViolations))
	mux.HandleFunc("POST /admin/violations/simulate", s.requireAdmin(s.handleSimulateViolation))

	mux.HandleFunc("GET /admin/users", s.requireAdmin(s.handleListUsers))
	mux.HandleFunc("POST /admin/users", s.requireAdmin(s.handleCreateUser))
	mux.HandleFunc("PATCH /admin/users/{id}/access", s.requireAdmin(s.handleUpdateAccess))
	mux.HandleFunc("DELETE /admin/users/{id}", s.requireAdmin(s.handleDeleteUser))
	mux.HandleFunc("POST /admin/change-password", s.requireAdmin(s.handleChangePassword))

	handler := loggingMiddleware(d.Logger, mux)

	// No WriteTimeout: the violation stream is a long-lived SSE connection.
	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Sessions exposes the server's session manager so callers can run a janitor
// against it.
func (s *Server) Sessions() *SessionManager { return s.sessions }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ── Authentication plumbing ──────────────────────────────────────────────────

// sessionUser resolves the request's session cookie to a live user record.
func (s *Server) sessionUser(r *http.Request) (types.User, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return types.User{}, false
	}
	userID, ok := s.sessions.Lookup(c.Value)
	if !ok {
		return types.User{}, false
	}
	u, err := s.users.Get(r.Context(), userID)
	if err != nil {
		// Session outlived the user record (e.g. account deleted).
		return types.User{}, false
	}
	return u, true
}

type authedHandler func(http.ResponseWriter, *http.Request, types.User)

func (s *Server) requireUser(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.sessionUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "login required")
			return
		}
		next(w, r, u)
	}
}

func (s *Server) requireAdmin(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.sessionUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "login required")
			return
		}
		if !u.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next(w, r, u)
	}
}

// ── Auth endpoints ───────────────────────────────────────────────────────────

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	u, err := s.users.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}
	if err != nil {
		s.internalError(w, "login", err)
		return
	}

	id, expires := s.sessions.Create(u.ID)
	setSessionCookie(w, id, expires)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Destroy(c.Value)
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, u types.User) {
	writeJSON(w, http.StatusOK, u)
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	TeamName string `json:"teamName"`
	TeamID   string `json:"teamId"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	u, err := s.users.Register(r.Context(), req.Username, req.Password, req.TeamName, req.TeamID)
	if errors.Is(err, store.ErrUsernameTaken) {
		writeError(w, http.StatusConflict, "username_taken", "username already taken")
		return
	}
	if err != nil {
		s.internalError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// ── Admin user management ────────────────────────────────────────────────────

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ types.User) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.internalError(w, "list users", err)
		return
	}
	if users == nil {
		users = []types.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin participant"`
	TeamName string `json:"teamName"`
	TeamID   string `json:"teamId"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, _ types.User) {
	var req createUserRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	u, err := s.users.Create(r.Context(), types.User{
		Username: req.Username,
		Password: req.Password,
		Role:     types.Role(req.Role),
		TeamName: req.TeamName,
		TeamID:   req.TeamID,
	})
	if errors.Is(err, store.ErrUsernameTaken) {
		writeError(w, http.StatusConflict, "username_taken", "username already taken")
		return
	}
	if err != nil {
		s.internalError(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type accessUpdateRequest struct {
	Round  string `json:"round" validate:"required,oneof=round1 round2 round3"`
	Status string `json:"status" validate:"required,oneof=locked active"`
}

func (s *Server) handleUpdateAccess(w http.ResponseWriter, r *http.Request, _ types.User) {
	var req accessUpdateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	u, err := s.users.UpdateAccess(r.Context(), r.PathValue("id"), req.Round, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user_not_found", "no such user")
		return
	}
	if err != nil {
		s.internalError(w, "update access", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, _ types.User) {
	err := s.users.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user_not_found", "no such user")
		return
	}
	if err != nil {
		s.internalError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type changePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, u types.User) {
	var req changePasswordRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.users.ChangePassword(r.Context(), u.ID, req.NewPassword); err != nil {
		s.internalError(w, "change password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Printf("%s error: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
}
