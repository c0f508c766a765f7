package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dadosabertos/relatorio/internal/core/report"
)

var configKeys = []string{
	"APP_NAME", "APP_VERSION", "APP_ENV", "APP_PORT",
	"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_REPORT_TIMEOUT", "HTTP_IDLE_TIMEOUT",
	"HTTP_SHUTDOWN_TIMEOUT", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
	"REPORT_API_BASE_URL", "REPORT_API_TIMEOUT", "REPORT_MAX_CONCURRENT",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_BURST", "DOWNLOAD_DIR",
}

// clearEnv unsets keys for the duration of the test and restores them afterwards.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, value) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t, configKeys...)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "relatorio" {
		t.Errorf("expected default app name 'relatorio', got %q", cfg.App.Name)
	}
	if cfg.App.Environment != "local" {
		t.Errorf("expected default environment 'local', got %q", cfg.App.Environment)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReportTimeout != 6*time.Minute {
		t.Errorf("expected default report timeout 6m, got %v", cfg.HTTP.ReportTimeout)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "*" {
		t.Errorf("expected default origins [*], got %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.ReportAPI.BaseURL != report.DefaultEndpoint {
		t.Errorf("expected default base URL %q, got %q", report.DefaultEndpoint, cfg.ReportAPI.BaseURL)
	}
	if cfg.ReportAPI.Timeout != 5*time.Minute {
		t.Errorf("expected default API timeout 5m, got %v", cfg.ReportAPI.Timeout)
	}
	if cfg.ReportAPI.MaxConcurrent != 4 {
		t.Errorf("expected default max concurrent 4, got %d", cfg.ReportAPI.MaxConcurrent)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.PerMinute != 10 || cfg.RateLimit.Burst != 3 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Download.Dir != "." {
		t.Errorf("expected default download dir '.', got %q", cfg.Download.Dir)
	}
}

func TestLoad_WithCustomValues(t *testing.T) {
	clearEnv(t, configKeys...)
	t.Setenv("APP_NAME", "relatorio-test")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("HTTP_REPORT_TIMEOUT", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REPORT_API_BASE_URL", "http://localhost:7071/api/gerar_relatorio_matricula")
	t.Setenv("REPORT_API_TIMEOUT", "30s")
	t.Setenv("REPORT_MAX_CONCURRENT", "16")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("DOWNLOAD_DIR", "/tmp/relatorios")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "relatorio-test" {
		t.Errorf("expected app name 'relatorio-test', got %q", cfg.App.Name)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReportTimeout != 90*time.Second {
		t.Errorf("expected report timeout 90s, got %v", cfg.HTTP.ReportTimeout)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.ReportAPI.BaseURL != "http://localhost:7071/api/gerar_relatorio_matricula" {
		t.Errorf("unexpected base URL %q", cfg.ReportAPI.BaseURL)
	}
	if cfg.ReportAPI.Timeout != 30*time.Second {
		t.Errorf("expected API timeout 30s, got %v", cfg.ReportAPI.Timeout)
	}
	if cfg.ReportAPI.MaxConcurrent != 16 {
		t.Errorf("expected max concurrent 16, got %d", cfg.ReportAPI.MaxConcurrent)
	}
	if cfg.RateLimit.Enabled {
		t.Error("expected rate limit disabled")
	}
	if cfg.Download.Dir != "/tmp/relatorios" {
		t.Errorf("unexpected download dir %q", cfg.Download.Dir)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "relative base URL",
			env:     map[string]string{"REPORT_API_BASE_URL": "/api/gerar_relatorio_matricula"},
			wantErr: "REPORT_API_BASE_URL",
		},
		{
			name:    "unsupported scheme",
			env:     map[string]string{"REPORT_API_BASE_URL": "ftp://relatorios.example/api"},
			wantErr: "REPORT_API_BASE_URL",
		},
		{
			name:    "zero concurrency",
			env:     map[string]string{"REPORT_MAX_CONCURRENT": "0"},
			wantErr: "REPORT_MAX_CONCURRENT",
		},
		{
			name:    "concurrency above limit",
			env:     map[string]string{"REPORT_MAX_CONCURRENT": "101"},
			wantErr: "REPORT_MAX_CONCURRENT",
		},
		{
			name:    "non-positive rate",
			env:     map[string]string{"RATE_LIMIT_PER_MINUTE": "0"},
			wantErr: "RATE_LIMIT_PER_MINUTE",
		},
		{
			name:    "non-positive burst",
			env:     map[string]string{"RATE_LIMIT_BURST": "-1"},
			wantErr: "RATE_LIMIT_BURST",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"APP_PORT": "70000"},
			wantErr: "APP_PORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, configKeys...)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.HasPrefix(err.Error(), "invalid config: ") {
				t.Errorf("expected 'invalid config' prefix, got %q", err.Error())
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error to mention %s, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoad_RateLimitDisabledSkipsChecks(t *testing.T) {
	clearEnv(t, configKeys...)
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t, configKeys...)
	path := filepath.Join(t.TempDir(), "relatorio.env")
	content := "APP_PORT=8181\nREPORT_API_BASE_URL=https://relatorios.example/api\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("APP_PORT"); os.Unsetenv("REPORT_API_BASE_URL") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8181 {
		t.Errorf("expected port from env file, got %d", cfg.HTTP.Port)
	}
	if cfg.ReportAPI.BaseURL != "https://relatorios.example/api" {
		t.Errorf("expected base URL from env file, got %q", cfg.ReportAPI.BaseURL)
	}
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t, configKeys...)
	path := filepath.Join(t.TempDir(), "relatorio.env")
	if err := os.WriteFile(path, []byte("APP_PORT=8181\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("APP_PORT", "9191")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9191 {
		t.Errorf("expected environment to win, got %d", cfg.HTTP.Port)
	}
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	clearEnv(t, configKeys...)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	if err == nil {
		t.Fatal("expected error for missing env file")
	}
	if !strings.Contains(err.Error(), "load env file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHTTPSettings_Address(t *testing.T) {
	settings := HTTPSettings{Port: 8181}
	if got := settings.Address(); got != ":8181" {
		t.Errorf("expected ':8181', got %q", got)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("RELATORIO_TEST_STRING", "valor")
	t.Setenv("RELATORIO_TEST_BOOL", "TRUE")
	t.Setenv("RELATORIO_TEST_BAD_BOOL", "sim")
	t.Setenv("RELATORIO_TEST_INT", "-3")
	t.Setenv("RELATORIO_TEST_BAD_INT", "três")
	t.Setenv("RELATORIO_TEST_DURATION", "1m30s")
	t.Setenv("RELATORIO_TEST_EMPTY_DURATION", "")

	if got := getEnv("RELATORIO_TEST_STRING", "x"); got != "valor" {
		t.Errorf("getEnv: got %q", got)
	}
	if got := getEnv("RELATORIO_TEST_ABSENT", "x"); got != "x" {
		t.Errorf("getEnv fallback: got %q", got)
	}
	if got := getEnvAsBool("RELATORIO_TEST_BOOL", false); !got {
		t.Error("getEnvAsBool: expected true")
	}
	if got := getEnvAsBool("RELATORIO_TEST_BAD_BOOL", true); !got {
		t.Error("getEnvAsBool: expected fallback true for unparsable value")
	}
	if got := getEnvAsInt("RELATORIO_TEST_INT", 0); got != -3 {
		t.Errorf("getEnvAsInt: got %d", got)
	}
	if got := getEnvAsInt("RELATORIO_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvAsInt fallback: got %d", got)
	}
	if got := getEnvAsDuration("RELATORIO_TEST_DURATION", 0); got != 90*time.Second {
		t.Errorf("getEnvAsDuration: got %v", got)
	}
	if got := getEnvAsDuration("RELATORIO_TEST_EMPTY_DURATION", time.Second); got != time.Second {
		t.Errorf("getEnvAsDuration fallback: got %v", got)
	}
}

func TestGetEnvAsCSV(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		fallback []string
		expected []string
	}{
		{"single value", "https://a.example", []string{"*"}, []string{"https://a.example"}},
		{"trims and filters", " https://a.example, ,https://b.example ", []string{"*"}, []string{"https://a.example", "https://b.example"}},
		{"empty string", "", []string{"*"}, []string{"*"}},
		{"only separators", " , , ", []string{"*"}, []string{"*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RELATORIO_TEST_CSV", tt.envValue)

			result := getEnvAsCSV("RELATORIO_TEST_CSV", tt.fallback)
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, result)
			}
			for i, expected := range tt.expected {
				if result[i] != expected {
					t.Errorf("expected[%d] %q, got %q", i, expected, result[i])
				}
			}
		})
	}
}
