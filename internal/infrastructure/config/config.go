package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"dadosabertos/relatorio/internal/core/report"
)

// AppConfig encapsulates all runtime configuration knobs.
type AppConfig struct {
	App       AppSettings
	HTTP      HTTPSettings
	Log       LogSettings
	ReportAPI ReportAPISettings
	RateLimit RateLimitSettings
	Download  DownloadSettings
}

type AppSettings struct {
	Name        string
	Version     string
	Environment string
}

type HTTPSettings struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ReportTimeout   time.Duration // extended deadline for POST /relatorio
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type LogSettings struct {
	Level string
}

// ReportAPISettings points at the spreadsheet generator.
type ReportAPISettings struct {
	BaseURL       string
	Timeout       time.Duration
	MaxConcurrent int
}

type RateLimitSettings struct {
	Enabled   bool
	PerMinute int
	Burst     int
}

type DownloadSettings struct {
	Dir string
}

// Load resolves the application configuration from environment variables.
// Variables from envFiles (default ".env") are loaded first; a missing default file is
// ignored. Environment variables set in the system take precedence over file values.
func Load(envFiles ...string) (AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "relatorio"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
			Environment: getEnv("APP_ENV", "local"),
		},
		HTTP: HTTPSettings{
			Port:            getEnvAsInt("APP_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Minute),
			ReportTimeout:   getEnvAsDuration("HTTP_REPORT_TIMEOUT", 6*time.Minute),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getEnvAsCSV("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		ReportAPI: ReportAPISettings{
			BaseURL:       strings.TrimSpace(getEnv("REPORT_API_BASE_URL", report.DefaultEndpoint)),
			Timeout:       getEnvAsDuration("REPORT_API_TIMEOUT", 5*time.Minute),
			MaxConcurrent: getEnvAsInt("REPORT_MAX_CONCURRENT", 4),
		},
		RateLimit: RateLimitSettings{
			Enabled:   getEnvAsBool("RATE_LIMIT_ENABLED", true),
			PerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
			Burst:     getEnvAsInt("RATE_LIMIT_BURST", 3),
		},
		Download: DownloadSettings{
			Dir: getEnv("DOWNLOAD_DIR", "."),
		},
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted silently.
func (c AppConfig) Validate() error {
	u, err := url.Parse(c.ReportAPI.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid config: REPORT_API_BASE_URL must be an absolute http(s) URL, got %q", c.ReportAPI.BaseURL)
	}
	if c.ReportAPI.MaxConcurrent < 1 || c.ReportAPI.MaxConcurrent > 100 {
		return errors.New("invalid config: REPORT_MAX_CONCURRENT must be between 1 and 100")
	}
	if c.ReportAPI.Timeout <= 0 {
		return errors.New("invalid config: REPORT_API_TIMEOUT must be greater than 0")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid config: APP_PORT out of range: %d", c.HTTP.Port)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.PerMinute <= 0 {
			return errors.New("invalid config: RATE_LIMIT_PER_MINUTE must be greater than 0")
		}
		if c.RateLimit.Burst <= 0 {
			return errors.New("invalid config: RATE_LIMIT_BURST must be greater than 0")
		}
	}
	return nil
}

// Address returns the HTTP listen address in host:port form.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsCSV(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
