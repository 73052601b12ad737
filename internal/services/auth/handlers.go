package auth

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/swapplace-api/internal/api"
	"github.com/rajivgeraev/swapplace-api/internal/db"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

type credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func readCredentials(c fiber.Ctx) (credentials, error) {
	var payload credentials
	if err := c.Bind().Body(&payload); err != nil {
		return payload, models.Validation("Formato inválido")
	}
	return payload, nil
}

// setTokenCookie сохраняет токен в cookie для запросов из форм
func (s *AuthService) setTokenCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.cfg.JWTTTL),
		HTTPOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// LogoutHandler удаляет cookie с токеном
func (s *AuthService) LogoutHandler(c fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return api.OK(c, nil)
}

// RegisterHandler регистрирует пользователя по имени и паролю
func (s *AuthService) RegisterHandler(c fiber.Ctx) error {
	payload, err := readCredentials(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := s.Register(ctx, payload.Username, payload.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":   true,
		"user": user,
	})
}

// LoginHandler проверяет пароль, выдает JWT и сохраняет его в cookie
func (s *AuthService) LoginHandler(c fiber.Ctx) error {
	payload, err := readCredentials(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	token, user, err := s.Login(ctx, payload.Username, payload.Password)
	if err != nil {
		return err
	}

	s.setTokenCookie(c, token)
	return api.OK(c, fiber.Map{
		"token": token,
		"user":  user,
	})
}

// TelegramAuthHandler проверяет initData, создает JWT и возвращает его
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return models.Validation("Formato inválido")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	token, user, err := s.TelegramLogin(ctx, payload.InitData)
	if err != nil {
		return err
	}

	s.setTokenCookie(c, token)
	return api.OK(c, fiber.Map{
		"token": token,
		"user":  user,
	})
}

// ProfileHandler возвращает профиль текущего пользователя
func (s *AuthService) ProfileHandler(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := s.Profile(ctx, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}
