package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del proceso (api y manage).
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Mail     MailConfig
	Log      LogConfig
	Shop     ShopConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        string
	BaseURL     string

	// DevAuth habilita X-Debug-User-ID / X-Debug-Role (solo desarrollo y tests).
	DevAuth bool
}

type DatabaseConfig struct {
	// DSN tiene prioridad sobre los campos sueltos.
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	SlowQuery time.Duration
}

type SessionConfig struct {
	Name   string
	Secret string
	MaxAge time.Duration
	Secure bool
}

type MailConfig struct {
	From       string
	AdminEmail string
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	WebhookURL string
}

type LogConfig struct {
	Level  string
	Format string
}

type ShopConfig struct {
	StockWarningThreshold int
}

// Load carga .env (si existe) y luego variables de entorno con defaults.
func Load() (*Config, error) {
	// En producción es normal que no exista .env.
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "petkimlik"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("PORT", "8080"),
			BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
			DevAuth:     getBool("DEV_AUTH", false),
		},
		Database: DatabaseConfig{
			DSN:       getEnv("DB_DSN", ""),
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "5432"),
			User:      getEnv("DB_USER", "postgres"),
			Password:  getEnv("DB_PASSWORD", ""),
			DBName:    getEnv("DB_NAME", "petkimlik"),
			SSLMode:   getEnv("DB_SSLMODE", "disable"),
			SlowQuery: getDuration("DB_SLOW_QUERY", 200*time.Millisecond),
		},
		Session: SessionConfig{
			Name:   getEnv("SESSION_NAME", "petkimlik_session"),
			Secret: getEnv("SESSION_SECRET", ""),
			MaxAge: getDuration("SESSION_MAX_AGE", 14*24*time.Hour),
			Secure: getBool("SESSION_SECURE", false),
		},
		Mail: MailConfig{
			From:       getEnv("SMTP_FROM", "no-reply@petkimlik.local"),
			AdminEmail: getEnv("ADMIN_EMAIL", ""),
			SMTPHost:   getEnv("SMTP_HOST", ""),
			SMTPPort:   getEnv("SMTP_PORT", "587"),
			SMTPUser:   getEnv("SMTP_USER", ""),
			SMTPPass:   getEnv("SMTP_PASSWORD", ""),
			WebhookURL: getEnv("MAIL_WEBHOOK_URL", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Shop: ShopConfig{
			StockWarningThreshold: getInt("STOCK_WARNING_THRESHOLD", 5),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.App.Environment == "production" {
		if len(c.Session.Secret) < 32 {
			return fmt.Errorf("config: SESSION_SECRET must be at least 32 bytes in production")
		}
		if c.App.DevAuth {
			return fmt.Errorf("config: DEV_AUTH cannot be enabled in production")
		}
	}
	if c.Shop.StockWarningThreshold < 0 {
		return fmt.Errorf("config: STOCK_WARNING_THRESHOLD must be >= 0")
	}
	return nil
}

// GetDSN devuelve DB_DSN o lo arma con los campos sueltos.
func (c *DatabaseConfig) GetDSN() string {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// HasDatabase indica si hay una base configurada explícitamente.
func (c *DatabaseConfig) HasDatabase() bool {
	if strings.TrimSpace(c.DSN) != "" {
		return true
	}
	_, ok := os.LookupEnv("DB_HOST")
	return ok
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return d
}
