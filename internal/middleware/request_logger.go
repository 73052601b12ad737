package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/metrics"
)

// RequestLogger логирует каждый запрос и записывает метрики HTTP
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// Ошибку нужно превратить в ответ до чтения статуса
			if handlerErr := c.App().Config().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("ip", c.IP()),
		}
		if actor, ok := ActorFrom(c); ok {
			fields = append(fields, zap.String("user", actor.Username))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("Запрос обработан с ошибкой", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("Запрос отклонен", fields...)
		default:
			logger.Info("Запрос обработан", fields...)
		}

		m.ObserveRequest(c.Method(), route, status, elapsed)
		return nil
	}
}
