package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopledger/shopledger/internal/auth"
	"github.com/shopledger/shopledger/internal/shared"
	_ "github.com/shopledger/shopledger/testing"
)

type stubRepo struct {
	user            *auth.User
	sessions        map[string]int64
	deletedSessions []string
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deletedSessions = append(s.deletedSessions, id)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(discardLogger(), auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func shopkeeper(t *testing.T) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{
		ID:           7,
		Username:     "keeper",
		PasswordHash: string(hashed),
		Role:         shared.RoleShopkeeper,
		IsActive:     true,
	}
}

func doLogin(t *testing.T, handler *auth.Handler, sessionManager *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.Login(res, req)
	if err := sessionManager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{user: shopkeeper(t)}
	handler, sessionManager := newAuthHandler(t, repo)

	res, sess := doLogin(t, handler, sessionManager, `{"username":"keeper","password":"correctpass"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		User      *auth.User `json:"user"`
		CSRFToken string     `json:"csrf_token"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.User == nil || payload.User.Username != "keeper" {
		t.Fatalf("expected user in response, got %+v", payload.User)
	}
	if payload.CSRFToken == "" {
		t.Fatalf("expected csrf token in response")
	}
	if strings.Contains(res.Body.String(), "password_hash") {
		t.Fatalf("password hash leaked in response")
	}
	if sess.User() != "7" {
		t.Fatalf("expected session user 7, got %q", sess.User())
	}
	if _, ok := repo.sessions[sess.ID]; !ok {
		t.Fatalf("expected session row registered")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: shopkeeper(t)})

	for _, body := range []string{
		`{"username":"keeper","password":"wrongpass"}`,
		`{"username":"nobody","password":"correctpass"}`,
	} {
		res, sess := doLogin(t, handler, sessionManager, body)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", res.Code)
		}
		if sess.User() != "" {
			t.Fatalf("session must not carry a user after failed login")
		}
	}
}

func TestLoginInactiveUser(t *testing.T) {
	user := shopkeeper(t)
	user.IsActive = false
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: user})

	res, _ := doLogin(t, handler, sessionManager, `{"username":"keeper","password":"correctpass"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for inactive user, got %d", res.Code)
	}
}

func TestLogout(t *testing.T) {
	repo := &stubRepo{user: shopkeeper(t)}
	handler, sessionManager := newAuthHandler(t, repo)

	_, sess := doLogin(t, handler, sessionManager, `{"username":"keeper","password":"correctpass"}`)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sess.ID})
	loaded, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), loaded)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.Logout(res, req)
	if err := sessionManager.Commit(ctx, res, req, loaded); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if len(repo.deletedSessions) != 1 {
		t.Fatalf("expected session row deleted")
	}
}

func TestMe(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: shopkeeper(t)})

	_, sess := doLogin(t, handler, sessionManager, `{"username":"keeper","password":"correctpass"}`)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sess.ID})
	loaded, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), loaded))

	res := httptest.NewRecorder()
	handler.Me(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var current shared.CurrentUser
	if err := json.Unmarshal(res.Body.Bytes(), &current); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if current.ID != 7 || current.Username != "keeper" || current.Role != shared.RoleShopkeeper {
		t.Fatalf("unexpected current user: %+v", current)
	}
}

func TestMeUnauthenticated(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	handler.Me(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}
