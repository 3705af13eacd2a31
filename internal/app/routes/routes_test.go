package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scedev/parkpermit/internal/app/controllers"
	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/middleware"
	"github.com/scedev/parkpermit/internal/pkg/auth"
)

// stubRosterService answers user routes with canned data.
type stubRosterService struct{}

func (s *stubRosterService) CreateUser(_ context.Context, req dto.CreateUserRequest) (*models.User, error) {
	return &models.User{ID: 1, Username: req.Username, Email: req.Email}, nil
}

func (s *stubRosterService) ListUsers(_ context.Context) ([]*models.User, error) {
	return []*models.User{{ID: 1, Username: "idan", Email: "idan@sce.edu"}}, nil
}

func (s *stubRosterService) GetUser(_ context.Context, username string) (*models.User, error) {
	return &models.User{ID: 1, Username: username}, nil
}

func (s *stubRosterService) UpdateUser(_ context.Context, username string, _ dto.UpdateUserRequest) (*models.User, error) {
	return &models.User{ID: 1, Username: username}, nil
}

func (s *stubRosterService) PromoteUser(_ context.Context, username string) (*models.User, error) {
	return &models.User{ID: 1, Username: username, IsAdmin: true}, nil
}

func (s *stubRosterService) DeleteUser(_ context.Context, _ int64) error { return nil }

type routerFixture struct {
	router *gin.Engine
	jwt    *auth.JWTService
	deps   *Deps
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "routes-test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "parkpermit-test",
	})

	deps := &Deps{
		ApplicationController: controllers.NewApplicationController(nil, nil),
		RequestController:     controllers.NewRequestController(nil),
		UserController:        controllers.NewUserController(&stubRosterService{}),
		AuthController:        controllers.NewAuthController(nil),
		AuthMiddleware:        middleware.NewAuthMiddleware(jwtService),
		SubmitLimiter:         middleware.NewRateLimiter(100, 100),
		UploadsDir:            t.TempDir(),
	}

	router := gin.New()
	SetupRouter(router, *deps)

	return &routerFixture{router: router, jwt: jwtService, deps: deps}
}

func (f *routerFixture) token(t *testing.T, isAdmin bool) string {
	t.Helper()
	access, _, _, _, err := f.jwt.GenerateTokenPair(&models.User{ID: 1, Username: "idan", IsAdmin: isAdmin})
	require.NoError(t, err)
	return "Bearer " + access
}

func (f *routerFixture) do(method, path, body, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRegistrationIsPublic(t *testing.T) {
	f := newRouterFixture(t)

	body := `{"username":"idan","email":"idan@sce.edu","password":"hunter2hunter2"}`
	rec := f.do(http.MethodPost, "/api/users", body, "")

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUserAdministrationRequiresAdmin(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous listing must be rejected")

	rec = f.do(http.MethodGet, "/api/users", "", f.token(t, false))
	assert.Equal(t, http.StatusForbidden, rec.Code, "regular accounts must not list users")

	rec = f.do(http.MethodGet, "/api/users", "", f.token(t, true))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzReportsRedisWithoutGating(t *testing.T) {
	f := newRouterFixture(t)
	f.deps.Healthcheck = func() error { return nil }
	f.deps.CacheCheck = func() error { return errors.New("connection refused") }

	router := gin.New()
	SetupRouter(router, *f.deps)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code, "an unreachable cache must not degrade health")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
	assert.Equal(t, "unavailable", body["redis"])
}

func TestHealthzDegradedWhenDatabaseDown(t *testing.T) {
	f := newRouterFixture(t)
	f.deps.Healthcheck = func() error { return errors.New("no reachable servers") }
	f.deps.CacheCheck = func() error { return nil }

	router := gin.New()
	SetupRouter(router, *f.deps)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unavailable", body["database"])
	assert.Equal(t, "ok", body["redis"])
}
