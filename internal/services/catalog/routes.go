package catalog

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты каталога товаров
func (s *CatalogService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Post("/crear-producto", s.HandleCreate, authMiddleware)

	app.Post("/editar-producto/:id", func(c fiber.Ctx) error {
		return s.HandleUpdate(c, c.Params("id"))
	}, authMiddleware)

	app.Post("/eliminar-producto/:id", func(c fiber.Ctx) error {
		return s.HandleDelete(c, c.Params("id"))
	}, authMiddleware)

	app.Get("/buscar-productos", s.SearchProducts, authMiddleware)
}
