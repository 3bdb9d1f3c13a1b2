package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stderr"})
}

type memorySessionStore struct {
	sessions map[string]bool
	next     int
	failing  bool
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]bool)}
}

func (s *memorySessionStore) Create(_ context.Context, _ time.Duration) (string, error) {
	if s.failing {
		return "", assert.AnError
	}
	s.next++
	id := string(rune('a' + s.next))
	s.sessions[id] = true
	return id, nil
}

func (s *memorySessionStore) Exists(_ context.Context, id string) (bool, error) {
	if s.failing {
		return false, assert.AnError
	}
	return s.sessions[id], nil
}

func TestLogin_ExchangesTokenForSession(t *testing.T) {
	store := newMemorySessionStore()
	svc := NewService("secret-token", store, testLogger())

	result, ok := svc.Login(context.Background(), "secret-token")
	require.True(t, ok)
	assert.Equal(t, "session", result.Mode)
	assert.NotEmpty(t, result.SessionID)

	// The issued session now authorizes requests.
	assert.True(t, svc.Authorized(context.Background(), result.SessionID))

	_, ok = svc.Login(context.Background(), "wrong")
	assert.False(t, ok)
}

func TestLogin_FallsBackToTokenMode(t *testing.T) {
	svc := NewService("secret-token", nil, testLogger())

	result, ok := svc.Login(context.Background(), "secret-token")
	require.True(t, ok)
	assert.Equal(t, "token", result.Mode)
	assert.Empty(t, result.SessionID)

	store := newMemorySessionStore()
	store.failing = true
	svc = NewService("secret-token", store, testLogger())

	result, ok = svc.Login(context.Background(), "secret-token")
	require.True(t, ok)
	assert.Equal(t, "token", result.Mode)
}

func TestAuthorized(t *testing.T) {
	store := newMemorySessionStore()
	svc := NewService("secret-token", store, testLogger())

	assert.True(t, svc.Authorized(context.Background(), "secret-token"))
	assert.False(t, svc.Authorized(context.Background(), ""))
	assert.False(t, svc.Authorized(context.Background(), "nope"))
}

func TestMiddleware(t *testing.T) {
	svc := NewService("secret-token", nil, testLogger())

	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/overview", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
	assert.NotContains(t, rec.Body.String(), "secret-token")

	req = httptest.NewRequest(http.MethodGet, "/api/admin/overview", nil)
	req.Header.Set(TokenHeader, "secret-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
