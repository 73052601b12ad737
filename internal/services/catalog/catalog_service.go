// Package catalog реализует каталог товаров: создание, изменение, удаление и поиск.
package catalog

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/cache"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
	"github.com/rajivgeraev/swapplace-api/internal/services/cloudinary"
)

const (
	// SearchLimit - максимальное количество результатов поиска
	SearchLimit = 100
	// DescriptionPreviewLength - длина описания в результатах поиска
	DescriptionPreviewLength = 120
	// DefaultImage - изображение товара без фотографии
	DefaultImage = "/static/img/logo.png"
)

// Image - загружаемый файл изображения
type Image struct {
	Filename string
	Reader   io.Reader
}

// ProductInput - данные формы товара
type ProductInput struct {
	Name        string
	Description string
	Image       *Image
}

// SearchResult - товар в результатах поиска
type SearchResult struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	Username    string    `json:"usuario"`
	Image       string    `json:"imagen"`
	IsOwner     bool      `json:"es_dueno"`
}

// CatalogService представляет сервис для работы с товарами
type CatalogService struct {
	store  repository.Store
	images cloudinary.ImageStore
	cache  cache.SearchCache
	logger *zap.Logger
}

// NewCatalogService создает новый экземпляр CatalogService
func NewCatalogService(store repository.Store, images cloudinary.ImageStore, searchCache cache.SearchCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		images: images,
		cache:  searchCache,
		logger: logger,
	}
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" || in.Description == "" {
		return models.Validation("Completa nombre y descripción.")
	}
	if utf8.RuneCountInString(in.Name) > models.MaxProductNameLength {
		return models.Validation("El nombre no puede superar 100 caracteres.")
	}
	return nil
}

// Create создает товар пользователя
func (s *CatalogService) Create(ctx context.Context, actor models.Actor, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:            uuid.New(),
		OwnerID:       actor.ID,
		OwnerUsername: actor.Username,
		Name:          input.Name,
		Description:   input.Description,
	}

	if input.Image != nil {
		uploaded, err := s.images.Upload(ctx, input.Image.Reader, input.Image.Filename)
		if err != nil {
			return nil, err
		}
		product.ImageURL = uploaded.URL
		product.ImagePublicID = uploaded.PublicID
	}

	if err := s.store.Products().Create(ctx, product); err != nil {
		s.deleteImage(ctx, product.ImagePublicID)
		return nil, err
	}

	s.logger.Info("Создан товар",
		zap.String("product_id", product.ID.String()),
		zap.String("owner", actor.Username),
	)
	s.invalidate(ctx)
	return product, nil
}

// ownedProduct возвращает товар, если пользователь его владелец
func (s *CatalogService) ownedProduct(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsOwnedBy(actor.ID) {
		return nil, models.Forbidden("No autorizado")
	}
	return product, nil
}

// Update изменяет товар. Новое изображение заменяет старое.
func (s *CatalogService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, input ProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description

	oldPublicID := ""
	if input.Image != nil {
		uploaded, err := s.images.Upload(ctx, input.Image.Reader, input.Image.Filename)
		if err != nil {
			return nil, err
		}
		oldPublicID = product.ImagePublicID
		product.ImageURL = uploaded.URL
		product.ImagePublicID = uploaded.PublicID
	}

	if err := s.store.Products().Update(ctx, product); err != nil {
		if input.Image != nil {
			s.deleteImage(ctx, product.ImagePublicID)
		}
		return nil, err
	}

	s.deleteImage(ctx, oldPublicID)
	s.invalidate(ctx)
	return product, nil
}

// Delete удаляет товар вместе с его обменами и чатами
func (s *CatalogService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	product, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.store.Products().Delete(ctx, product.ID); err != nil {
		return err
	}

	s.logger.Info("Удален товар",
		zap.String("product_id", product.ID.String()),
		zap.String("owner", actor.Username),
	)
	s.deleteImage(ctx, product.ImagePublicID)
	s.invalidate(ctx)
	return nil
}

// Search ищет товары по названию или имени владельца
func (s *CatalogService) Search(ctx context.Context, actor models.Actor, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)

	products, gen, hit, cacheErr := s.cache.Get(ctx, query)
	if cacheErr != nil {
		s.logger.Warn("Ошибка чтения кэша поиска", zap.Error(cacheErr))
	}

	if !hit {
		var err error
		products, err = s.store.Products().Search(ctx, query, SearchLimit)
		if err != nil {
			return nil, err
		}
		// Без известного поколения результат не кэшируется
		if cacheErr == nil {
			if err := s.cache.Set(ctx, gen, query, products); err != nil {
				s.logger.Warn("Ошибка записи кэша поиска", zap.Error(err))
			}
		}
	}

	results := make([]SearchResult, 0, len(products))
	for _, p := range products {
		results = append(results, toResult(p, actor, preview(p.Description)))
	}
	return results, nil
}

// List возвращает все товары для главной страницы: без ограничения количества
// и с полными описаниями
func (s *CatalogService) List(ctx context.Context, actor models.Actor) ([]SearchResult, error) {
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(products))
	for _, p := range products {
		results = append(results, toResult(p, actor, p.Description))
	}
	return results, nil
}

func toResult(p models.Product, actor models.Actor, description string) SearchResult {
	image := p.ImageURL
	if image == "" {
		image = DefaultImage
	}
	return SearchResult{
		ID:          p.ID,
		Name:        p.Name,
		Description: description,
		Username:    p.OwnerUsername,
		Image:       image,
		IsOwner:     p.IsOwnedBy(actor.ID) || actor.IsAdmin(),
	}
}

// preview обрезает описание до DescriptionPreviewLength символов
func preview(description string) string {
	runes := []rune(description)
	if len(runes) <= DescriptionPreviewLength {
		return description
	}
	return string(runes[:DescriptionPreviewLength]) + "..."
}

func (s *CatalogService) deleteImage(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.logger.Warn("Не удалось удалить изображение", zap.String("public_id", publicID), zap.Error(err))
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Не удалось сбросить кэш поиска", zap.Error(err))
	}
}
