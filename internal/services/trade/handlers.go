package trade

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/api"
	"github.com/rajivgeraev/swapplace-api/internal/db"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

func parseID(raw, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NotFound(notFound)
	}
	return id, nil
}

// HandleOffer обрабатывает форму предложения обмена на товар rawProductID
func (s *TradeService) HandleOffer(c fiber.Ctx, rawProductID string) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	productID, err := parseID(rawProductID, "Producto no encontrado")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	_, err = s.Propose(ctx, actor, productID)
	return api.FormResult(c, err, "Solicitud de trueque enviada.")
}

// HandleRespond обрабатывает форму ответа на обмен rawTradeID
func (s *TradeService) HandleRespond(c fiber.Ctx, rawTradeID string, decision models.Decision) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	tradeID, err := parseID(rawTradeID, "Trueque no encontrado")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	success := "Trueque rechazado."
	if decision == models.DecisionAccept {
		success = "Trueque aceptado. Chat creado."
	}

	_, err = s.Respond(ctx, actor, tradeID, decision)
	return api.FormResult(c, err, success)
}

// CreateTrade создает предложение обмена через JSON API
func (s *TradeService) CreateTrade(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	var requestData struct {
		ProductID string `json:"product_id"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return models.Validation("Formato JSON inválido")
	}

	productID, err := parseID(requestData.ProductID, "Producto no encontrado")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	trade, err := s.Propose(ctx, actor, productID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":    true,
		"trade": trade,
	})
}

// GetMyTrades возвращает список входящих и исходящих предложений обмена
func (s *TradeService) GetMyTrades(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// all, incoming, outgoing / all, pending, accepted, rejected
	trades, err := s.List(ctx, actor, c.Query("type", "all"), c.Query("status", "all"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"trades": trades,
		"count":  len(trades),
	})
}

// UpdateTradeStatus принимает или отклоняет обмен через JSON API
func (s *TradeService) UpdateTradeStatus(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	tradeID, err := parseID(c.Params("id"), "Trueque no encontrado")
	if err != nil {
		return err
	}

	var requestData struct {
		Status string `json:"status"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return models.Validation("Formato JSON inválido")
	}

	var decision models.Decision
	switch requestData.Status {
	case models.TradeAccepted:
		decision = models.DecisionAccept
	case models.TradeRejected:
		decision = models.DecisionReject
	default:
		return models.Validation("Estado de trueque inválido")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	result, err := s.Respond(ctx, actor, tradeID, decision)
	if err != nil {
		return err
	}

	return api.OK(c, fiber.Map{
		"trade": result.Trade,
		"chat":  result.Chat,
	})
}
