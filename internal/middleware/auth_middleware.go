package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/utils"
)

// TokenCookie - имя cookie с токеном для запросов из форм
const TokenCookie = "swap_token"

const actorKey = "actor"

// AuthMiddleware создаёт middleware для проверки JWT из заголовка Authorization или cookie
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		tokenString := c.Cookies(TokenCookie)

		if authHeader := c.Get("Authorization"); authHeader != "" {
			// Проверяем Bearer токен
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return models.Unauthorized("Formato de autorización inválido")
			}
			tokenString = parts[1]
		}

		if tokenString == "" {
			return models.Unauthorized("Autenticación requerida")
		}

		actor, err := jwtService.ParseToken(tokenString)
		if err != nil {
			return models.Unauthorized("Token inválido o expirado")
		}

		// Добавляем пользователя в контекст
		c.Locals(actorKey, actor)
		c.Locals("userID", actor.ID.String())

		return c.Next()
	}
}

// ActorFrom возвращает пользователя, установленного AuthMiddleware
func ActorFrom(c fiber.Ctx) (models.Actor, bool) {
	actor, ok := c.Locals(actorKey).(models.Actor)
	return actor, ok
}

// RequireActor возвращает пользователя запроса или ошибку 401
func RequireActor(c fiber.Ctx) (models.Actor, error) {
	actor, ok := ActorFrom(c)
	if !ok {
		return models.Actor{}, models.Unauthorized("Autenticación requerida")
	}
	return actor, nil
}
