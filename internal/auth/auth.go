// Package auth gates admin endpoints behind the x-admin-token header.
// The shared secret always works; when a session store is configured the
// admin UI can exchange the secret for a short-lived session id instead
// of holding the secret in the browser. Sessions live in an external
// store so they survive restarts and work across instances.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

// TokenHeader is the header checked on every admin request.
const TokenHeader = "x-admin-token"

// SessionTTL is how long an exchanged admin session stays valid.
const SessionTTL = 12 * time.Hour

// SessionStore keeps issued admin sessions in shared storage.
type SessionStore interface {
	Create(ctx context.Context, ttl time.Duration) (string, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Service checks admin credentials.
type Service struct {
	adminToken string
	sessions   SessionStore
	logger     *logger.Logger
}

// NewService builds the auth service. sessions may be nil, in which case
// only the raw shared token is accepted.
func NewService(adminToken string, sessions SessionStore, log *logger.Logger) *Service {
	return &Service{
		adminToken: adminToken,
		sessions:   sessions,
		logger:     log.WithComponent("auth"),
	}
}

// LoginResult tells the admin UI which credential to keep.
type LoginResult struct {
	Mode      string `json:"mode"` // "session" or "token"
	SessionID string `json:"session_id,omitempty"`
}

// Login exchanges the shared token for a session when a store is
// configured. Without a store the client keeps sending the raw token.
func (s *Service) Login(ctx context.Context, token string) (*LoginResult, bool) {
	if !s.tokenValid(token) {
		return nil, false
	}

	if s.sessions == nil {
		return &LoginResult{Mode: "token"}, true
	}

	id, err := s.sessions.Create(ctx, SessionTTL)
	if err != nil {
		s.logger.Error("Failed to create admin session, falling back to token mode", "error", err)
		return &LoginResult{Mode: "token"}, true
	}

	s.logger.Info("Issued admin session")
	return &LoginResult{Mode: "session", SessionID: id}, true
}

// Authorized reports whether the credential in the header is the shared
// token or a live session id.
func (s *Service) Authorized(ctx context.Context, credential string) bool {
	if credential == "" {
		return false
	}

	if s.tokenValid(credential) {
		return true
	}

	if s.sessions != nil {
		ok, err := s.sessions.Exists(ctx, credential)
		if err != nil {
			s.logger.Error("Session lookup failed", "error", err)
			return false
		}
		return ok
	}

	return false
}

// tokenValid compares against the configured shared secret. When no
// secret is configured any non-empty token passes; that matches the
// original development behavior and is logged loudly.
func (s *Service) tokenValid(token string) bool {
	if s.adminToken == "" {
		if token != "" {
			s.logger.Warn("ADMIN_TOKEN not configured, accepting any token")
			return true
		}
		return false
	}
	return token == s.adminToken
}

// Middleware rejects requests without a valid admin credential. The 401
// body never echoes configuration state.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := r.Header.Get(TokenHeader)
		if !s.Authorized(r.Context(), credential) {
			s.logger.Warn("Unauthorized admin request", "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "Unauthorized",
				"message": "Invalid or missing admin token",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
