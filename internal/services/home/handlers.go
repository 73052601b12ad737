package home

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/swapplace-api/internal/api"
	"github.com/rajivgeraev/swapplace-api/internal/db"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// GetHome возвращает данные главной страницы вместе с flash-сообщением
func (s *HomeService) GetHome(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	dashboard, err := s.Dashboard(ctx, actor)
	if err != nil {
		return err
	}

	dashboard.Flash = api.PopFlash(c)
	return c.JSON(dashboard)
}

// PostHome разбирает поле action общей формы и передает запрос нужному обработчику
func (s *HomeService) PostHome(c fiber.Ctx) error {
	if _, err := middleware.RequireActor(c); err != nil {
		return err
	}

	switch c.FormValue("action") {
	case ActionCreateProduct:
		return s.catalog.HandleCreate(c)
	case ActionEditProduct:
		return s.catalog.HandleUpdate(c, c.FormValue("producto_id"))
	case ActionDeleteProduct:
		return s.catalog.HandleDelete(c, c.FormValue("producto_id"))
	case ActionOfferTrade:
		return s.trades.HandleOffer(c, c.FormValue("producto_id"))
	case ActionRespondToTrade:
		var decision models.Decision
		switch c.FormValue("decision") {
		case "aceptar":
			decision = models.DecisionAccept
		case "rechazar":
			decision = models.DecisionReject
		default:
			return api.FormResult(c, models.Validation("Decisión inválida"), "")
		}
		return s.trades.HandleRespond(c, c.FormValue("trueque_id"), decision)
	default:
		return api.FormResult(c, models.Validation("Acción no reconocida."), "")
	}
}
