package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/queue-info-api/internal/api/http/handlers"
	"github.com/spec-kit/queue-info-api/internal/auth"
	"github.com/spec-kit/queue-info-api/internal/config"
	"github.com/spec-kit/queue-info-api/internal/domain"
	"github.com/spec-kit/queue-info-api/internal/events"
	"github.com/spec-kit/queue-info-api/internal/observability"
	"github.com/spec-kit/queue-info-api/internal/persistence"
	"github.com/spec-kit/queue-info-api/internal/service"
)

type memUserRepo struct {
	mu     sync.Mutex
	byID   map[int64]*domain.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[int64]*domain.User{}, nextID: 1}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, id int64, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.HashedPassword = hashedPassword
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *memDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *memDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type testEnv struct {
	app        *fiber.App
	repo       *memUserRepo
	svc        *service.AuthService
	dispatcher *memDispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{APIPrefix: "/api/v1"},
		Auth: config.AuthConfig{
			Secret:                 "test-secret",
			SigningAlgorithm:       "HS256",
			AccessTokenTTLMinutes:  15,
			RefreshTokenTTLMinutes: 60 * 24 * 30,
			ResetTokenTTLHours:     48,
			BcryptCost:             bcrypt.MinCost,
			MaxConcurrentHashes:    2,
		},
		Users: config.UsersConfig{OpenRegistration: true},
	}

	repo := newMemUserRepo()
	dispatcher := &memDispatcher{}
	authService, err := service.NewAuthService(cfg, repo, dispatcher)
	require.NoError(t, err)

	app := fiber.New()
	stats := observability.NewStatsRecorder(config.StatsConfig{}, nil)
	RegisterMiddlewares(app, zap.NewNop(), stats, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		APIPrefix:      cfg.App.APIPrefix,
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.RefreshTokenTTL()),
		Users:          handlers.NewUsersHandler(authService),
		Items:          handlers.NewItemsHandler(service.NewItemService(nil)),
		Metrics:        handlers.NewMetricsHandler(service.NewMetricService(nil, nil)),
		AuthMiddleware: auth.NewMiddleware(authService.Codec(), repo),
	})

	return &testEnv{app: app, repo: repo, svc: authService, dispatcher: dispatcher}
}

func (e *testEnv) seedUser(t *testing.T, email, password string, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{Email: email, HashedPassword: string(hash), IsActive: active}
	require.NoError(t, e.repo.Create(context.Background(), user))
	return user
}

func loginRequest(email, password string) *http.Request {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/access-token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func refreshCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "refresh-token" {
			return cookie
		}
	}
	t.Fatal("refresh-token cookie not set")
	return nil
}

func decodeToken(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestAccessToken_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedUser(t, "user@example.com", "pw", true)

	resp, err := env.app.Test(loginRequest("user@example.com", "pw"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeToken(t, resp)
	require.NotEmpty(t, payload["access_token"])
	require.Equal(t, "bearer", payload["token_type"])

	cookie := refreshCookie(t, resp)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
}

func TestAccessToken_BadCredentialsAndInactive(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedUser(t, "user@example.com", "pw", true)
	env.seedUser(t, "frozen@example.com", "pw", false)

	resp, err := env.app.Test(loginRequest("user@example.com", "wrong"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = env.app.Test(loginRequest("ghost@example.com", "pw"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = env.app.Test(loginRequest("frozen@example.com", "pw"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshToken_Rotation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedUser(t, "user@example.com", "pw", true)

	resp, err := env.app.Test(loginRequest("user@example.com", "pw"))
	require.NoError(t, err)
	cookie := refreshCookie(t, resp)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	req.AddCookie(cookie)

	resp, err = env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeToken(t, resp)
	require.NotEmpty(t, payload["access_token"])
	require.NotEmpty(t, refreshCookie(t, resp).Value)
}

func TestRefreshToken_Failures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := env.seedUser(t, "user@example.com", "pw", true)

	// No cookie at all.
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Garbage cookie.
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh-token", Value: "garbage"})
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Access token presented as refresh token.
	loginResp, err := env.app.Test(loginRequest("user@example.com", "pw"))
	require.NoError(t, err)
	accessToken := decodeToken(t, loginResp)["access_token"]
	cookie := refreshCookie(t, loginResp)

	req, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh-token", Value: accessToken})
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Subject deleted after issuance.
	env.repo.mu.Lock()
	delete(env.repo.byID, user.ID)
	env.repo.mu.Unlock()

	req, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	req.AddCookie(cookie)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTestToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedUser(t, "user@example.com", "pw", true)

	loginResp, err := env.app.Test(loginRequest("user@example.com", "pw"))
	require.NoError(t, err)
	accessToken := decodeToken(t, loginResp)["access_token"]

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/test-token", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "user@example.com")

	// No token at all.
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/test-token", nil)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordRecoveryAndReset(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedUser(t, "user@example.com", "old-pw", true)

	// Unknown email leaks a 404; kept for compatibility with the legacy API.
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/password-recovery/ghost@example.com", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/password-recovery/user@example.com", nil)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env.dispatcher.mu.Lock()
	require.NotEmpty(t, env.dispatcher.events)
	payload, ok := env.dispatcher.events[len(env.dispatcher.events)-1].Payload.(events.PasswordResetRequestedPayload)
	env.dispatcher.mu.Unlock()
	require.True(t, ok)

	resetBody := `{"token":"` + payload.ResetToken + `","new_password":"new-pw"}`
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/reset-password/", strings.NewReader(resetBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Old password no longer works, new one does.
	resp, err = env.app.Test(loginRequest("user@example.com", "old-pw"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = env.app.Test(loginRequest("user@example.com", "new-pw"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedUser(t, "user@example.com", "pw", true)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/reset-password/", strings.NewReader(`{"token":"junk","new_password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_CreatesAccount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	body := `{"email":"new@example.com","password":"pw","full_name":"New User"}`
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/users/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = env.app.Test(loginRequest("new@example.com", "pw"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
