package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/HerbHall/pollnow/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Failed logins per username: a burst of loginBurst, then one attempt per
// loginRefill.
const (
	loginBurst  = 5
	loginRefill = time.Minute
)

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"changeme123"`
}

// Handler provides HTTP handlers for authentication endpoints.
type Handler struct {
	service  *Service
	logger   *zap.Logger
	mu       sync.Mutex
	failures map[string]*rate.Limiter
}

// NewHandler creates an auth Handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		logger:   logger,
		failures: make(map[string]*rate.Limiter),
	}
}

// lockedOut reports whether username has used up its failed attempts.
func (h *Handler) lockedOut(username string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.failures[username]
	return ok && l.Tokens() < 1
}

func (h *Handler) recordFailure(username string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.failures[username]
	if !ok {
		l = rate.NewLimiter(rate.Every(loginRefill), loginBurst)
		h.failures[username] = l
	}
	l.Allow()
}

func (h *Handler) resetFailures(username string) {
	h.mu.Lock()
	delete(h.failures, username)
	h.mu.Unlock()
}

// RegisterRoutes registers auth-related routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/login", h.handleLogin)
}

// Middleware returns the JWT authentication middleware.
func (h *Handler) Middleware() func(http.Handler) http.Handler {
	return AuthMiddleware(h.service.Tokens())
}

// handleLogin authenticates the admin account and returns an access token.
//
//	@Summary		Login
//	@Description	Authenticate with username and password to receive a JWT access token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login credentials"
//	@Success		200		{object}	TokenPair
//	@Failure		400		{object}	models.APIProblem
//	@Failure		401		{object}	models.APIProblem
//	@Failure		429		{object}	models.APIProblem
//	@Failure		500		{object}	models.APIProblem
//	@Router			/auth/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeAuthError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	key := strings.ToLower(req.Username)
	if h.lockedOut(key) {
		w.Header().Set("Retry-After", strconv.Itoa(int(loginRefill.Seconds())))
		writeAuthError(w, http.StatusTooManyRequests, "too many failed login attempts")
		return
	}

	pair, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.recordFailure(key)
			h.logger.Warn("failed login",
				zap.String("username", req.Username),
				zap.String("remote", r.RemoteAddr),
			)
			writeAuthError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.logger.Error("login error", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	h.resetFailures(key)
	writeJSON(w, http.StatusOK, pair)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.APIProblem{
		Type:   "https://pollnow.dev/problems/auth-error",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
