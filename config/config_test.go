package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every known variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ADDRESS", "127.0.0.1")
	t.Setenv("ENV", "dev")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.OrangeBookURL != "https://www.fda.gov/media/76860/download" {
		t.Errorf("Unexpected default archive URL %s", cfg.OrangeBookURL)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("Expected 24h cache TTL, got %s", cfg.CacheTTL)
	}
	if cfg.RegistryInterval != 300*time.Millisecond {
		t.Errorf("Expected 300ms registry interval, got %s", cfg.RegistryInterval)
	}
	if cfg.ScanPacing != 400*time.Millisecond {
		t.Errorf("Expected 400ms scan pacing, got %s", cfg.ScanPacing)
	}
	if cfg.ScanLimit != 20 {
		t.Errorf("Expected scan limit 20, got %d", cfg.ScanLimit)
	}
	if cfg.RefreshHour != 6 || cfg.RefreshMinute != 0 {
		t.Errorf("Expected refresh at 06:00, got %02d:%02d", cfg.RefreshHour, cfg.RefreshMinute)
	}
}

func TestLoadDurationOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_TTL", "12h")
	t.Setenv("REGISTRY_INTERVAL", "1s")
	t.Setenv("SCAN_PACING", "0s")
	t.Setenv("REFRESH_AT", "23:45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.CacheTTL != 12*time.Hour {
		t.Errorf("Expected 12h, got %s", cfg.CacheTTL)
	}
	if cfg.RegistryInterval != time.Second {
		t.Errorf("Expected 1s, got %s", cfg.RegistryInterval)
	}
	if cfg.ScanPacing != 0 {
		t.Errorf("Expected zero pacing, got %s", cfg.ScanPacing)
	}
	if cfg.RefreshHour != 23 || cfg.RefreshMinute != 45 {
		t.Errorf("Expected 23:45, got %02d:%02d", cfg.RefreshHour, cfg.RefreshMinute)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "invalid"},
		{"PORT", "80"},
		{"PORT", "70000"},
		{"ADDRESS", "invalid-ip"},
		{"ADDRESS", "8.8.8.8"},
		{"ENV", "invalid"},
		{"LOG_LEVEL", "verbose"},
		{"LOG_RETENTION_WEEKS", "60"},
		{"ORANGE_BOOK_URL", "ftp://fda.gov/archive.zip"},
		{"OPENFDA_BASE_URL", "not a url"},
		{"CACHE_TTL", "forever"},
		{"CACHE_TTL", "-1h"},
		{"ARCHIVE_TIMEOUT", "0s"},
		{"REGISTRY_INTERVAL", "-5ms"},
		{"SCAN_LIMIT", "21"},
		{"SCAN_LIMIT", "0"},
		{"REFRESH_AT", "25:99"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "loe.yaml")
	content := `
server:
  port: "9100"
  env: production
logging:
  level: debug
  retentionWeeks: 8
orangeBook:
  cacheDir: /var/cache/loe
  cacheTtl: 6h
  refreshAt: "04:30"
registry:
  apiKey: file-key
  interval: 250ms
scan:
  limit: 10
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("OPENFDA_API_KEY", "env-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "9100" {
		t.Errorf("Expected port from file, got %s", cfg.Port)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Expected prod, got %s", cfg.Env)
	}
	if cfg.LogLevel != "debug" || cfg.LogRetentionWeeks != 8 {
		t.Errorf("Unexpected logging config %s/%d", cfg.LogLevel, cfg.LogRetentionWeeks)
	}
	if cfg.CacheDir != "/var/cache/loe" || cfg.CacheTTL != 6*time.Hour {
		t.Errorf("Unexpected cache config %s/%s", cfg.CacheDir, cfg.CacheTTL)
	}
	if cfg.RefreshHour != 4 || cfg.RefreshMinute != 30 {
		t.Errorf("Expected 04:30, got %02d:%02d", cfg.RefreshHour, cfg.RefreshMinute)
	}
	if cfg.RegistryInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %s", cfg.RegistryInterval)
	}
	if cfg.ScanLimit != 10 {
		t.Errorf("Expected scan limit 10, got %d", cfg.ScanLimit)
	}
	if cfg.OpenFDAAPIKey != "env-key" {
		t.Errorf("Expected environment to override file, got %s", cfg.OpenFDAAPIKey)
	}
	// untouched keys keep their defaults
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address, got %s", cfg.Address)
	}
}

func TestLoadYAMLFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("server: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	badDuration := filepath.Join(dir, "duration.yaml")
	if err := os.WriteFile(badDuration, []byte("scan:\n  pacing: soon\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	for name, path := range map[string]string{
		"missing":      filepath.Join(dir, "missing.yaml"),
		"malformed":    bad,
		"bad duration": badDuration,
	} {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(ConfigFileEnv, path)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s config file", name)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SCAN_LIMIT=5\nPORT=9200\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9300")
	// godotenv only fills variables that are unset
	if err := os.Unsetenv("SCAN_LIMIT"); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.ScanLimit != 5 {
		t.Errorf("Expected SCAN_LIMIT from .env, got %d", cfg.ScanLimit)
	}
	if cfg.Port != "9300" {
		t.Errorf("Expected existing PORT to win, got %s", cfg.Port)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Missing .env should be ignored, got %v", err)
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		hasError bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"staging", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"production", EnvProduction, false},
		{"test", EnvTest, false},
		{"PROD", EnvProduction, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for %s, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.input, err)
			}
			if env != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, env)
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input  string
		hour   int
		minute int
		valid  bool
	}{
		{"06:00", 6, 0, true},
		{"23:59", 23, 59, true},
		{"00:00", 0, 0, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"6:00", 0, 0, false},
		{"0600", 0, 0, false},
		{"ab:cd", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hour, minute, err := ParseClock(tt.input)
			if tt.valid != (err == nil) {
				t.Fatalf("ParseClock(%q) error = %v, want valid=%v", tt.input, err, tt.valid)
			}
			if tt.valid && (hour != tt.hour || minute != tt.minute) {
				t.Errorf("ParseClock(%q) = %d:%d", tt.input, hour, minute)
			}
		})
	}
}
