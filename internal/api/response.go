// Package api содержит общий формат ответов HTTP обработчиков.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

const (
	msgInternal         = "Error interno del servidor"
	msgMethodNotAllowed = "Método no permitido"
)

// StatusFor возвращает HTTP статус для ошибки
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.Is(err, models.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail отправляет ошибку в едином формате {"ok": false, "error": ...}.
// Подробности внутренних ошибок пишутся только в лог.
func Fail(c fiber.Ctx, logger *zap.Logger, err error) error {
	status := StatusFor(err)

	msg, ok := models.UserMessage(err)
	if !ok {
		var fe *fiber.Error
		switch {
		case status == fiber.StatusMethodNotAllowed:
			msg = msgMethodNotAllowed
		case status < fiber.StatusInternalServerError && errors.As(err, &fe):
			msg = fe.Message
		default:
			msg = msgInternal
		}
	}

	if status >= fiber.StatusInternalServerError {
		logger.Error("Ошибка при обработке запроса",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(fiber.Map{
		"ok":    false,
		"error": msg,
	})
}

// ErrorHandler - обработчик ошибок fiber, приводящий их к единому формату
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		return Fail(c, logger, err)
	}
}

// MethodNotAllowed отвечает 405 для неподдерживаемых методов
func MethodNotAllowed(c fiber.Ctx) error {
	return fiber.ErrMethodNotAllowed
}

// OK отправляет успешный ответ {"ok": true, ...}
func OK(c fiber.Ctx, fields fiber.Map) error {
	body := fiber.Map{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(body)
}
