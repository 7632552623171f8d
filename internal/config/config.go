package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourcePostgres = "postgres"
	SourceUpstream = "upstream"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Upstream  UpstreamConfig
	Dashboard DashboardConfig
	Export    ExportConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
	// Migrate applies the bundled schema on startup
	Migrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	// MetricSource selects where datasets are read from: postgres or upstream
	MetricSource string
}

// UpstreamConfig points at the KPI HTTP API; credentials are optional
type UpstreamConfig struct {
	BaseURL      string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

type DashboardConfig struct {
	PageSize     int
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	FetchLimit   time.Duration
	SessionIdle  time.Duration
}

type ExportConfig struct {
	Dir         string
	BaseURL     string
	RasterScale float64
	Retention   time.Duration
}

// Load reads the environment, optionally seeded from a .env file in the working directory
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env file: %w", err)
		}
		slog.Debug("no .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 1)
	if err != nil {
		return nil, err
	}
	migrate, err := getEnvBool("DB_MIGRATE", false)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_dashboard"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
		Migrate:  migrate,
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:         appPort,
		Env:          getEnv("APP_ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		FrontendURL:  getEnv("APP_FRONTEND_URL", "http://localhost:3000"),
		MetricSource: strings.ToLower(getEnv("METRIC_SOURCE", SourcePostgres)),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Upstream KPI API
	upstreamTimeout, err := getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	config.Upstream = UpstreamConfig{
		BaseURL:      getEnv("UPSTREAM_BASE_URL", ""),
		Timeout:      upstreamTimeout,
		ClientID:     getEnv("UPSTREAM_CLIENT_ID", ""),
		ClientSecret: getEnv("UPSTREAM_CLIENT_SECRET", ""),
		TokenURL:     getEnv("UPSTREAM_TOKEN_URL", ""),
		Scopes:       getEnvSlice("UPSTREAM_SCOPES"),
	}

	// Dashboard
	pageSize, err := getEnvInt("DASHBOARD_PAGE_SIZE", 5)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("DASHBOARD_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := getEnvDuration("DASHBOARD_FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	fetchLimit, err := getEnvDuration("DASHBOARD_FETCH_LIMIT", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	sessionIdle, err := getEnvDuration("DASHBOARD_SESSION_IDLE", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	config.Dashboard = DashboardConfig{
		PageSize:     pageSize,
		CacheTTL:     cacheTTL,
		FetchTimeout: fetchTimeout,
		FetchLimit:   fetchLimit,
		SessionIdle:  sessionIdle,
	}

	// Export
	rasterScale, err := getEnvFloat("EXPORT_RASTER_SCALE", 1.5)
	if err != nil {
		return nil, err
	}
	retention, err := getEnvDuration("EXPORT_RETENTION", 168*time.Hour)
	if err != nil {
		return nil, err
	}

	config.Export = ExportConfig{
		Dir:         getEnv("EXPORT_DIR", "./storage/exports"),
		BaseURL:     getEnv("EXPORT_BASE_URL", "/api/v1/reports/files"),
		RasterScale: rasterScale,
		Retention:   retention,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	// filter state is always kept in PostgreSQL
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	switch c.App.MetricSource {
	case SourcePostgres:
	case SourceUpstream:
		if c.Upstream.BaseURL == "" {
			return fmt.Errorf("UPSTREAM_BASE_URL is required when METRIC_SOURCE=upstream")
		}
		if c.Upstream.ClientID != "" && c.Upstream.TokenURL == "" {
			return fmt.Errorf("UPSTREAM_TOKEN_URL is required when UPSTREAM_CLIENT_ID is set")
		}
	default:
		return fmt.Errorf("METRIC_SOURCE must be %s or %s", SourcePostgres, SourceUpstream)
	}

	if c.Dashboard.PageSize <= 0 {
		return fmt.Errorf("DASHBOARD_PAGE_SIZE must be positive")
	}
	if c.Dashboard.CacheTTL <= 0 || c.Dashboard.FetchTimeout <= 0 {
		return fmt.Errorf("DASHBOARD_CACHE_TTL and DASHBOARD_FETCH_TIMEOUT must be positive")
	}
	if c.Dashboard.FetchLimit < c.Dashboard.FetchTimeout {
		return fmt.Errorf("DASHBOARD_FETCH_LIMIT must not be shorter than DASHBOARD_FETCH_TIMEOUT")
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("EXPORT_DIR is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
