package api

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// FlashCookie - имя cookie с одноразовым сообщением для главной страницы
const FlashCookie = "swap_flash"

// SetFlash сохраняет сообщение до следующего запроса
func SetFlash(c fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PopFlash читает сообщение и удаляет cookie
func PopFlash(c fiber.Ctx) string {
	raw := c.Cookies(FlashCookie)
	if raw == "" {
		return ""
	}

	c.Cookie(&fiber.Cookie{
		Name:    FlashCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	})

	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}

// RedirectHome перенаправляет на главную страницу с сообщением
func RedirectHome(c fiber.Ctx, msg string) error {
	if msg != "" {
		SetFlash(c, msg)
	}
	return c.Redirect().Status(fiber.StatusSeeOther).To("/")
}

// FormResult завершает запрос формы: ошибки валидации и попытка обмена на свой товар
// превращаются в сообщение и редирект, остальные ошибки уходят в единый формат.
func FormResult(c fiber.Ctx, err error, success string) error {
	if err == nil {
		return RedirectHome(c, success)
	}
	if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrOwnProduct) {
		msg, _ := models.UserMessage(err)
		return RedirectHome(c, msg)
	}
	return err
}
