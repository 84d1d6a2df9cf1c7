package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "fleet_console_backend/internal/http"
	"fleet_console_backend/platform/httpkit"
	"fleet_console_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const secret = "router-test-secret"

type testConfig struct{}

func (testConfig) GetHTTPAddr() string        { return ":0" }
func (testConfig) GetCORSAllowAll() bool      { return false }
func (testConfig) GetCORSOrigins() []string   { return []string{"http://localhost:4200"} }
func (testConfig) GetCORSAllowCreds() bool    { return true }
func (testConfig) GetJWTAccessSecret() string { return secret }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/whoami", ctx.RateLimit(), func(c *gin.Context) {
		c.String(http.StatusOK, httpkit.GetIdentity(c).UserID().String())
	})
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newApp(health apphttp.HealthChecker) *apphttp.App {
	return &apphttp.App{
		Config:  testConfig{},
		Logger:  logger.Discard(),
		Health:  health,
		Modules: []apphttp.Module{echoModule{}},
	}
}

func TestHealthReflectsDatabase(t *testing.T) {
	healthy := New(newApp(pingFunc(func(context.Context) error { return nil })))
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(httpkit.HeaderRequestID) == "" {
		t.Fatalf("expected request id header")
	}

	down := New(newApp(pingFunc(func(context.Context) error { return errors.New("down") })))
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestModuleRoutesRequireAuth(t *testing.T) {
	engine := New(newApp(nil))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	userID := uuid.New()
	token, err := httpkit.SignAccessToken(secret, userID, nil, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != userID.String() {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}
