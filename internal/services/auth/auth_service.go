package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajivgeraev/swapplace-api/internal/config"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
	"github.com/rajivgeraev/swapplace-api/internal/utils"
)

// initDataExpiration - срок действия initData Telegram
const initDataExpiration = 24 * time.Hour

const maxUsernameLength = 150

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	store      repository.Store
	jwtService *utils.JWTService
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService – конструктор AuthService
func NewAuthService(cfg *config.Config, store repository.Store, jwtService *utils.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		cfg:        cfg,
		store:      store,
		jwtService: jwtService,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// GetJWTService возвращает сервис токенов
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// Register создает пользователя с паролем
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, models.Validation("Usuario y contraseña son obligatorios.")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return nil, models.Validation("El nombre de usuario es demasiado largo.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Зарегистрирован пользователь", zap.String("username", username))
	return user, nil
}

// Login проверяет пароль и выдает токен
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	invalid := models.Unauthorized("Usuario o contraseña incorrectos.")

	user, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, invalid
		}
		return "", nil, err
	}

	if user.PasswordHash == "" {
		return "", nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, invalid
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// TelegramLogin проверяет initData Mini App, создает или обновляет пользователя и выдает токен
func (s *AuthService) TelegramLogin(ctx context.Context, rawInitData string) (string, *models.User, error) {
	if s.cfg.TelegramBotToken == "" {
		return "", nil, models.Unauthorized("Inicio de sesión con Telegram no disponible.")
	}

	// Проверяем initData
	if err := initdata.Validate(rawInitData, s.cfg.TelegramBotToken, initDataExpiration); err != nil {
		return "", nil, models.Unauthorized("Datos de Telegram inválidos.")
	}

	// Парсим данные
	data, err := initdata.Parse(rawInitData)
	if err != nil {
		return "", nil, models.Validation("No se pudieron leer los datos de Telegram.")
	}

	telegramID := data.User.ID
	username := data.User.Username
	if username == "" {
		username = fmt.Sprintf("tg_%d", telegramID)
	}

	user, err := s.store.Users().UpsertTelegram(ctx, &models.User{
		ID:         uuid.New(),
		Username:   username,
		TelegramID: &telegramID,
		FirstName:  data.User.FirstName,
		LastName:   data.User.LastName,
		AvatarURL:  data.User.PhotoURL,
		Role:       models.RoleUser,
	})
	if err != nil {
		return "", nil, err
	}

	// Генерируем JWT
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Profile возвращает запись текущего пользователя
func (s *AuthService) Profile(ctx context.Context, actor models.Actor) (*models.User, error) {
	return s.store.Users().GetByID(ctx, actor.ID)
}
