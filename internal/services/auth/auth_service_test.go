package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajivgeraev/swapplace-api/internal/api"
	"github.com/rajivgeraev/swapplace-api/internal/config"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/repository/memory"
	"github.com/rajivgeraev/swapplace-api/internal/utils"
)

func newService(t *testing.T, botToken string) *AuthService {
	t.Helper()
	cfg := &config.Config{JWTSecret: "secret", JWTTTL: time.Hour, TelegramBotToken: botToken}
	svc := NewAuthService(cfg, memory.NewStore(), utils.NewJWTService(cfg.JWTSecret, cfg.JWTTTL), zap.NewNop())
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t, "")
	ctx := context.Background()

	user, err := svc.Register(ctx, " ana ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	_, err = svc.Register(ctx, "ana", "other")
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = svc.Register(ctx, "", "x")
	assert.ErrorIs(t, err, models.ErrValidation)

	token, logged, err := svc.Login(ctx, "ana", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	actor, err := svc.GetJWTService().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ana", actor.Username)

	_, _, err = svc.Login(ctx, "ana", "wrong")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestTelegramLogin_Rejects(t *testing.T) {
	ctx := context.Background()

	_, _, err := newService(t, "").TelegramLogin(ctx, "query_id=1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, _, err = newService(t, "123:bot").TelegramLogin(ctx, "user=%7B%22id%22%3A1%7D&auth_date=1&hash=bad")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestHandlers(t *testing.T) {
	svc := newService(t, "")
	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler(zap.NewNop())})
	svc.SetupRoutes(app, middleware.AuthMiddleware(svc.GetJWTService()))

	post := func(path, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := post("/api/auth/register", `{"username":"ana","password":"pw"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = post("/api/auth/register", `{"username":"ana","password":"pw"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = post("/api/auth/login", `{"username":"ana","password":"nope"}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = post("/api/auth/login", `{"username":"ana","password":"pw"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var tokenCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.TokenCookie {
			tokenCookie = cookie
		}
	}
	require.NotNil(t, tokenCookie)
	assert.True(t, tokenCookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: tokenCookie.Value})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		User map[string]any `json:"user"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "ana", body.User["username"])
	assert.NotContains(t, body.User, "PasswordHash")

	resp = post("/api/auth/logout", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var cleared *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.TokenCookie {
			cleared = cookie
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, "/", cleared.Path)
	assert.True(t, cleared.Expires.Before(time.Now()))
}
