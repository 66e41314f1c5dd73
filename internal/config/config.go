package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	OCR      OCRConfig
	Storage  StorageConfig
	Captcha  CaptchaConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret    string
	APIKeyHeader string
}

type OCRConfig struct {
	OCRSpaceKey      string
	Language         string
	Engine           int
	Timeout          time.Duration
	OpenAIKey        string
	AnthropicKey     string
	DefaultProvider  string
	FallbackProvider string
	MaxRetries       int
}

type StorageConfig struct {
	SupabaseURL     string
	SupabaseKey     string
	PhotosBucket    string
	BarcodesBucket  string
	TemplatesBucket string
	ScansBucket     string
}

type CaptchaConfig struct {
	Secret    string
	Action    string
	MinScore  float64
	VerifyURL string
	CacheTTL  time.Duration
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	ocrEngine, err := getEnvInt("OCR_ENGINE", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid OCR_ENGINE: %w", err)
	}

	ocrTimeout, err := getEnvInt("OCR_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid OCR_TIMEOUT_SECONDS: %w", err)
	}

	maxRetries, err := getEnvInt("OCR_MAX_RETRIES", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid OCR_MAX_RETRIES: %w", err)
	}

	minScore, err := getEnvFloat("CAPTCHA_MIN_SCORE", 0.5)
	if err != nil {
		return nil, fmt.Errorf("invalid CAPTCHA_MIN_SCORE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-Key"),
		},
		OCR: OCRConfig{
			OCRSpaceKey:      getEnv("OCRSPACE_API_KEY", ""),
			Language:         getEnv("OCR_LANGUAGE", "fre"),
			Engine:           ocrEngine,
			Timeout:          time.Duration(ocrTimeout) * time.Second,
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			DefaultProvider:  getEnv("OCR_DEFAULT_PROVIDER", "ocrspace"),
			FallbackProvider: getEnv("OCR_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
		},
		Storage: StorageConfig{
			SupabaseURL:     getEnv("SUPABASE_URL", ""),
			SupabaseKey:     getEnv("SUPABASE_SERVICE_KEY", ""),
			PhotosBucket:    getEnv("STORAGE_PHOTOS_BUCKET", "client-photos"),
			BarcodesBucket:  getEnv("STORAGE_BARCODES_BUCKET", "barcodes"),
			TemplatesBucket: getEnv("STORAGE_TEMPLATES_BUCKET", "pdf-templates"),
			ScansBucket:     getEnv("STORAGE_SCANS_BUCKET", "document-scans"),
		},
		Captcha: CaptchaConfig{
			Secret:    getEnv("RECAPTCHA_SECRET", ""),
			Action:    getEnv("RECAPTCHA_ACTION", "submit"),
			MinScore:  minScore,
			VerifyURL: getEnv("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
			CacheTTL:  5 * time.Minute,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
