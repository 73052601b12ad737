package catalog

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/api"
	"github.com/rajivgeraev/swapplace-api/internal/db"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// readInput читает поля формы товара. Файл изображения необязателен.
func readInput(c fiber.Ctx) (ProductInput, func(), error) {
	input := ProductInput{
		Name:        c.FormValue("nombre"),
		Description: c.FormValue("descripcion"),
	}

	fileHeader, err := c.FormFile("imagen")
	if err != nil || fileHeader == nil || fileHeader.Size == 0 {
		return input, func() {}, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return input, func() {}, models.Validation("No se pudo leer la imagen.")
	}

	input.Image = &Image{Filename: fileHeader.Filename, Reader: file}
	return input, func() { file.Close() }, nil
}

func productID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NotFound("Producto no encontrado")
	}
	return id, nil
}

// HandleCreate создает товар из формы и перенаправляет на главную страницу
func (s *CatalogService) HandleCreate(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	input, closeFile, err := readInput(c)
	if err != nil {
		return api.FormResult(c, err, "")
	}
	defer closeFile()

	ctx, cancel := db.GetContext()
	defer cancel()

	_, err = s.Create(ctx, actor, input)
	return api.FormResult(c, err, "Producto creado correctamente.")
}

// HandleUpdate изменяет товар rawID из формы
func (s *CatalogService) HandleUpdate(c fiber.Ctx, rawID string) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := productID(rawID)
	if err != nil {
		return err
	}

	input, closeFile, err := readInput(c)
	if err != nil {
		return api.FormResult(c, err, "")
	}
	defer closeFile()

	ctx, cancel := db.GetContext()
	defer cancel()

	_, err = s.Update(ctx, actor, id, input)
	return api.FormResult(c, err, "Producto actualizado correctamente.")
}

// HandleDelete удаляет товар rawID
func (s *CatalogService) HandleDelete(c fiber.Ctx, rawID string) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := productID(rawID)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	err = s.Delete(ctx, actor, id)
	return api.FormResult(c, err, "Producto eliminado correctamente.")
}

// SearchProducts ищет товары по параметру q
func (s *CatalogService) SearchProducts(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	results, err := s.Search(ctx, actor, c.Query("q"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"productos": results})
}
