package middleware

import (
	"sync"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/time/rate"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// maxLimiters - при превышении карта лимитеров сбрасывается
const maxLimiters = 10000

// RateLimiter ограничивает частоту запросов отдельно для каждого пользователя
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter создает лимитер с requestsPerSecond запросов в секунду и запасом burst
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		if len(rl.limiters) >= maxLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Allow сообщает, можно ли выполнить еще один запрос для ключа
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Handler возвращает middleware. Ключ - пользователь, если он известен, иначе IP.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		key := c.IP()
		if actor, ok := ActorFrom(c); ok {
			key = actor.ID.String()
		}

		if !rl.Allow(key) {
			return models.RateLimited("Demasiados mensajes, intenta más tarde")
		}
		return c.Next()
	}
}
