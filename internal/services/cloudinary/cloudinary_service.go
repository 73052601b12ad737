package cloudinary

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/config"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// UploadedImage - изображение, сохраненное во внешнем хранилище
type UploadedImage struct {
	URL      string
	PublicID string
}

// ImageStore сохраняет и удаляет изображения товаров
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*UploadedImage, error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryService предоставляет методы для работы с Cloudinary
type CloudinaryService struct {
	cfg          config.CloudinaryConfig
	cld          *cloudinary.Cloudinary
	uploadFolder string
	logger       *zap.Logger
	now          func() time.Time
}

// NewCloudinaryService создает новый экземпляр CloudinaryService
func NewCloudinaryService(cfg config.CloudinaryConfig, logger *zap.Logger) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка при инициализации Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryService{
		cfg:          cfg,
		cld:          cld,
		uploadFolder: cfg.UploadFolder,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Upload загружает изображение в папку приложения
func (s *CloudinaryService) Upload(ctx context.Context, file io.Reader, filename string) (*UploadedImage, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: s.uploadFolder,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при загрузке изображения %s: %w", filename, err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("Cloudinary отклонил изображение %s: %s", filename, result.Error.Message)
	}

	s.logger.Debug("Изображение загружено",
		zap.String("public_id", result.PublicID),
		zap.String("filename", filename),
	)
	return &UploadedImage{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// Delete удаляет изображение по public id
func (s *CloudinaryService) Delete(ctx context.Context, publicID string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("ошибка при удалении изображения %s: %w", publicID, err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("Cloudinary не удалил изображение %s: %s", publicID, result.Error.Message)
	}
	return nil
}

// UploadParams создаёт подписанные параметры для загрузки изображения из браузера
func (s *CloudinaryService) UploadParams() (fiber.Map, error) {
	timestamp := strconv.FormatInt(s.now().Unix(), 10)

	// Параметры для подписи
	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", s.uploadFolder)

	signature, err := api.SignParameters(params, s.cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подписи параметров загрузки: %w", err)
	}

	return fiber.Map{
		"timestamp":  timestamp,
		"signature":  signature,
		"folder":     s.uploadFolder,
		"api_key":    s.cfg.APIKey,
		"cloud_name": s.cfg.CloudName,
	}, nil
}

// GenerateUploadParams отдает параметры для загрузки изображений
func (s *CloudinaryService) GenerateUploadParams(c fiber.Ctx) error {
	params, err := s.UploadParams()
	if err != nil {
		return err
	}
	return c.JSON(params)
}

// Disabled используется, когда Cloudinary не настроен: загрузка изображений отклоняется
type Disabled struct{}

func (Disabled) Upload(ctx context.Context, file io.Reader, filename string) (*UploadedImage, error) {
	return nil, models.Validation("La carga de imágenes no está disponible.")
}

func (Disabled) Delete(ctx context.Context, publicID string) error { return nil }
