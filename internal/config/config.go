package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // зоны нужны в контейнерах без системной базы

	"github.com/joho/godotenv"
)

// Виды хранилища
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config структура конфигурации
type Config struct {
	HTTPPort         string
	AppEnv           string
	LogLevel         string
	TelegramBotToken string
	JWTSecret        string
	JWTTTL           time.Duration
	Storage          string
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	CloudinaryConfig CloudinaryConfig
	RedisConfig      RedisConfig
	NatsURL          string
	Location         *time.Location

	SearchCacheTTL        time.Duration
	ChatRateLimit         float64
	ChatRateBurst         int
	NotificationRetention time.Duration
	CleanupInterval       time.Duration
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}

// Enabled сообщает, заданы ли учетные данные Cloudinary
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// RedisConfig содержит конфигурацию Redis. Пустой Addr отключает кэш.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// IsProduction сообщает, запущено ли приложение в production окружении
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LoadConfig загружает переменные из .env и окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	p := &parser{}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "swap_user"),
		Password: getEnv("PGPASSWORD", "swap_pass"),
		Name:     getEnv("PGDATABASE", "swapplace"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
		MaxConns: int32(p.int("DB_MAX_CONNS", 10)),
		MinConns: int32(p.int("DB_MIN_CONNS", 2)),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		AppEnv:           getEnv("APP_ENV", "production"), // По умолчанию production
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTTTL:           p.duration("JWT_TTL", 72*time.Hour),
		Storage:          getEnv("STORAGE", StoragePostgres),
		DatabaseURL:      dbURL,
		DatabaseConfig:   dbConfig,
		CloudinaryConfig: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "swapplace"),
		},
		RedisConfig: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       p.int("REDIS_DB", 0),
		},
		NatsURL: getEnv("NATS_URL", ""),

		SearchCacheTTL:        p.duration("SEARCH_CACHE_TTL", 30*time.Second),
		ChatRateLimit:         p.float("CHAT_RATE_LIMIT", 5),
		ChatRateBurst:         p.int("CHAT_RATE_BURST", 10),
		NotificationRetention: p.duration("NOTIFICATION_RETENTION", 720*time.Hour),
		CleanupInterval:       p.duration("CLEANUP_INTERVAL", time.Hour),
	}

	if p.err != nil {
		return nil, p.err
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("неверная временная зона: %w", err)
	}
	cfg.Location = loc

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("не задана обязательная переменная окружения JWT_SECRET")
	}
	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("неизвестный тип хранилища: %s", cfg.Storage)
	}

	return cfg, nil
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// parser разбирает числовые переменные окружения и запоминает первую ошибку
type parser struct {
	err error
}

func (p *parser) int(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || p.err != nil {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		p.err = fmt.Errorf("неверное значение %s: %w", key, err)
		return defaultValue
	}
	return n
}

func (p *parser) float(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || p.err != nil {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.err = fmt.Errorf("неверное значение %s: %w", key, err)
		return defaultValue
	}
	return f
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || p.err != nil {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.err = fmt.Errorf("неверное значение %s: %w", key, err)
		return defaultValue
	}
	return d
}
