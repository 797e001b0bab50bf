// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML file read before environment overrides
const ConfigFileEnv = "LOE_CONFIG_FILE"

// Environment is the deployment environment of the service
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvTest        Environment = "test"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
)

// ParseEnvironment accepts the short and long names of each environment
func ParseEnvironment(value string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "test":
		return EnvTest, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", value)
}

func (e Environment) String() string {
	return string(e)
}

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int

	// Orange Book archive
	OrangeBookURL  string
	CacheDir       string
	CacheTTL       time.Duration
	ArchiveTimeout time.Duration

	// Drugs@FDA registry
	OpenFDABaseURL   string
	OpenFDAAPIKey    string
	RegistryTimeout  time.Duration
	RegistryInterval time.Duration

	ScanPacing time.Duration
	ScanLimit  int

	// RefreshAt is the daily HH:MM of the scheduled archive download
	RefreshAt     string
	RefreshHour   int
	RefreshMinute int
}

// fileConfig mirrors Config in the YAML file. Durations are Go duration strings.
type fileConfig struct {
	Server struct {
		Port    string `yaml:"port"`
		Address string `yaml:"address"`
		Env     string `yaml:"env"`
	} `yaml:"server"`
	Logging struct {
		Level          string `yaml:"level"`
		Dir            string `yaml:"dir"`
		RetentionWeeks int    `yaml:"retentionWeeks"`
	} `yaml:"logging"`
	OrangeBook struct {
		URL            string `yaml:"url"`
		CacheDir       string `yaml:"cacheDir"`
		CacheTTL       string `yaml:"cacheTtl"`
		ArchiveTimeout string `yaml:"archiveTimeout"`
		RefreshAt      string `yaml:"refreshAt"`
	} `yaml:"orangeBook"`
	Registry struct {
		BaseURL  string `yaml:"baseUrl"`
		APIKey   string `yaml:"apiKey"`
		Timeout  string `yaml:"timeout"`
		Interval string `yaml:"interval"`
	} `yaml:"registry"`
	Scan struct {
		Pacing string `yaml:"pacing"`
		Limit  int    `yaml:"limit"`
	} `yaml:"scan"`
}

func defaultConfig() *Config {
	return &Config{
		Port:              "8000",
		Address:           "127.0.0.1",
		Env:               EnvDevelopment,
		LogLevel:          "info",
		LogDir:            "logs",
		LogRetentionWeeks: 4,
		OrangeBookURL:     "https://www.fda.gov/media/76860/download",
		CacheDir:          "data/orangebook",
		CacheTTL:          24 * time.Hour,
		ArchiveTimeout:    30 * time.Second,
		OpenFDABaseURL:    "https://api.fda.gov/drug/drugsfda.json",
		RegistryTimeout:   15 * time.Second,
		RegistryInterval:  300 * time.Millisecond,
		ScanPacing:        400 * time.Millisecond,
		ScanLimit:         20,
		RefreshAt:         "06:00",
	}
}

// LoadDotEnv reads a .env file into the process environment. A missing file
// is not an error; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, the optional YAML file named
// by LOE_CONFIG_FILE and environment variables, in that order, then validates it
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	setString(&c.Port, file.Server.Port)
	setString(&c.Address, file.Server.Address)
	if file.Server.Env != "" {
		env, err := ParseEnvironment(file.Server.Env)
		if err != nil {
			return fmt.Errorf("invalid server.env in %s: %w", path, err)
		}
		c.Env = env
	}

	setString(&c.LogLevel, file.Logging.Level)
	setString(&c.LogDir, file.Logging.Dir)
	if file.Logging.RetentionWeeks != 0 {
		c.LogRetentionWeeks = file.Logging.RetentionWeeks
	}

	setString(&c.OrangeBookURL, file.OrangeBook.URL)
	setString(&c.CacheDir, file.OrangeBook.CacheDir)
	setString(&c.RefreshAt, file.OrangeBook.RefreshAt)
	setString(&c.OpenFDABaseURL, file.Registry.BaseURL)
	setString(&c.OpenFDAAPIKey, file.Registry.APIKey)
	if file.Scan.Limit != 0 {
		c.ScanLimit = file.Scan.Limit
	}

	durations := []struct {
		name   string
		value  string
		target *time.Duration
	}{
		{"orangeBook.cacheTtl", file.OrangeBook.CacheTTL, &c.CacheTTL},
		{"orangeBook.archiveTimeout", file.OrangeBook.ArchiveTimeout, &c.ArchiveTimeout},
		{"registry.timeout", file.Registry.Timeout, &c.RegistryTimeout},
		{"registry.interval", file.Registry.Interval, &c.RegistryInterval},
		{"scan.pacing", file.Scan.Pacing, &c.ScanPacing},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s in %s: %w", d.name, path, err)
		}
		*d.target = parsed
	}

	return nil
}

func (c *Config) applyEnvOverrides() error {
	c.Port = getEnvWithDefault("PORT", c.Port)
	c.Address = getEnvWithDefault("ADDRESS", c.Address)
	if value := os.Getenv("ENV"); value != "" {
		env, err := ParseEnvironment(value)
		if err != nil {
			return fmt.Errorf("invalid ENV: %w", err)
		}
		c.Env = env
	}
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)
	c.LogDir = getEnvWithDefault("LOG_DIR", c.LogDir)
	c.LogRetentionWeeks = getIntEnvWithDefault("LOG_RETENTION_WEEKS", c.LogRetentionWeeks)

	c.OrangeBookURL = getEnvWithDefault("ORANGE_BOOK_URL", c.OrangeBookURL)
	c.CacheDir = getEnvWithDefault("CACHE_DIR", c.CacheDir)
	c.OpenFDABaseURL = getEnvWithDefault("OPENFDA_BASE_URL", c.OpenFDABaseURL)
	c.OpenFDAAPIKey = getEnvWithDefault("OPENFDA_API_KEY", c.OpenFDAAPIKey)
	c.ScanLimit = getIntEnvWithDefault("SCAN_LIMIT", c.ScanLimit)
	c.RefreshAt = getEnvWithDefault("REFRESH_AT", c.RefreshAt)

	var err error
	if c.CacheTTL, err = getDurationEnvWithDefault("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.ArchiveTimeout, err = getDurationEnvWithDefault("ARCHIVE_TIMEOUT", c.ArchiveTimeout); err != nil {
		return err
	}
	if c.RegistryTimeout, err = getDurationEnvWithDefault("REGISTRY_TIMEOUT", c.RegistryTimeout); err != nil {
		return err
	}
	if c.RegistryInterval, err = getDurationEnvWithDefault("REGISTRY_INTERVAL", c.RegistryInterval); err != nil {
		return err
	}
	if c.ScanPacing, err = getDurationEnvWithDefault("SCAN_PACING", c.ScanPacing); err != nil {
		return err
	}

	return nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateURL(cfg.OrangeBookURL); err != nil {
		return fmt.Errorf("invalid ORANGE_BOOK_URL: %w", err)
	}

	if err := validateURL(cfg.OpenFDABaseURL); err != nil {
		return fmt.Errorf("invalid OPENFDA_BASE_URL: %w", err)
	}

	if cfg.CacheDir == "" {
		return fmt.Errorf("invalid CACHE_DIR: cannot be empty")
	}

	positive := []struct {
		name  string
		value time.Duration
	}{
		{"CACHE_TTL", cfg.CacheTTL},
		{"ARCHIVE_TIMEOUT", cfg.ArchiveTimeout},
		{"REGISTRY_TIMEOUT", cfg.RegistryTimeout},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("invalid %s: must be positive, got: %s", p.name, p.value)
		}
	}

	if cfg.RegistryInterval < 0 {
		return fmt.Errorf("invalid REGISTRY_INTERVAL: cannot be negative, got: %s", cfg.RegistryInterval)
	}
	if cfg.ScanPacing < 0 {
		return fmt.Errorf("invalid SCAN_PACING: cannot be negative, got: %s", cfg.ScanPacing)
	}

	if err := validateScanLimit(cfg.ScanLimit); err != nil {
		return fmt.Errorf("invalid SCAN_LIMIT: %w", err)
	}

	hour, minute, err := ParseClock(cfg.RefreshAt)
	if err != nil {
		return fmt.Errorf("invalid REFRESH_AT: %w", err)
	}
	cfg.RefreshHour, cfg.RefreshMinute = hour, minute

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("URL is malformed: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https, got: %s", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}
	return nil
}

// validateScanLimit keeps condition scans at 20 candidates or fewer
func validateScanLimit(limit int) error {
	if limit < 1 || limit > 20 {
		return fmt.Errorf("SCAN_LIMIT must be between 1 and 20, got: %d", limit)
	}
	return nil
}

// ParseClock parses a 24-hour HH:MM time of day
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("time must be HH:MM, got: %q", value)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("hour must be between 00 and 23, got: %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("minute must be between 00 and 59, got: %q", value)
	}

	return hour, minute, nil
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnvWithDefault parses a Go duration such as "24h" or "300ms"
func getDurationEnvWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		ConfigFileEnv,
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"ORANGE_BOOK_URL",
		"CACHE_DIR",
		"CACHE_TTL",
		"ARCHIVE_TIMEOUT",
		"OPENFDA_BASE_URL",
		"OPENFDA_API_KEY",
		"REGISTRY_TIMEOUT",
		"REGISTRY_INTERVAL",
		"SCAN_PACING",
		"SCAN_LIMIT",
		"REFRESH_AT",
	}
}
