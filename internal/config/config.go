package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store backends selectable with KANBAN_STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Store    string
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Log      LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string //nolint:gosec // G117: DB connection config
	DBName       string
	SSLMode      string
	MaxConns     int
	TxMaxRetries int
	AutoMigrate  bool
}

// RedisConfig holds Redis connection settings. An empty Addr disables the
// live board feed.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
	Channel  string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
}

// LogConfig holds zerolog settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("KANBAN_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("KANBAN_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	txMaxRetries, err := getEnvInt("KANBAN_DB_TX_MAX_RETRIES", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	autoMigrate, err := getEnvBool("KANBAN_DB_AUTO_MIGRATE", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("KANBAN_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("KANBAN_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("KANBAN_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	shutdownTimeout, err := getEnvDuration("KANBAN_SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateLimitRPS, err := getEnvFloat("KANBAN_SERVER_RATE_LIMIT_RPS", 50)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateLimitBurst, err := getEnvInt("KANBAN_SERVER_RATE_LIMIT_BURST", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("KANBAN_SERVER_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Store: getEnv("KANBAN_STORE", StorePostgres),
		Database: DatabaseConfig{
			URL:          getEnv("KANBAN_DB_URL", ""),
			Host:         getEnv("KANBAN_DB_HOST", "localhost"),
			Port:         dbPort,
			User:         getEnv("KANBAN_DB_USER", "kanban"),
			Password:     getEnv("KANBAN_DB_PASSWORD", ""),
			DBName:       getEnv("KANBAN_DB_NAME", "kanban_dev"),
			SSLMode:      getEnv("KANBAN_DB_SSLMODE", "disable"),
			MaxConns:     dbMaxConns,
			TxMaxRetries: txMaxRetries,
			AutoMigrate:  autoMigrate,
		},
		Redis: RedisConfig{
			Addr:     getEnv("KANBAN_REDIS_ADDR", ""),
			Password: getEnv("KANBAN_REDIS_PASSWORD", ""),
			DB:       redisDB,
			Channel:  getEnv("KANBAN_REDIS_CHANNEL", "kanban:board"),
		},
		Server: ServerConfig{
			Addr:            getEnv("KANBAN_SERVER_ADDR", ":8080"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			CORSOrigins:     corsOrigins,
			RateLimitRPS:    rateLimitRPS,
			RateLimitBurst:  rateLimitBurst,
		},
		Log: LogConfig{
			Level:  getEnv("KANBAN_LOG_LEVEL", "info"),
			Format: getEnv("KANBAN_LOG_FORMAT", "json"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("KANBAN_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	if c.Store == StorePostgres && c.Database.URL == "" && c.Database.SSLMode == "disable" && !isLocalHost(c.Database.Host) {
		log.Warn().Msg("KANBAN_DB_SSLMODE=disable is insecure for remote databases; set to 'require' or 'verify-full'")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("KANBAN_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("KANBAN_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Database.TxMaxRetries < 0 {
		return fmt.Errorf("KANBAN_DB_TX_MAX_RETRIES must be >= 0, got %d", c.Database.TxMaxRetries)
	}
	if c.Redis.Addr != "" && c.Redis.Channel == "" {
		return errors.New("KANBAN_REDIS_CHANNEL must not be empty when KANBAN_REDIS_ADDR is set")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("KANBAN_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("KANBAN_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("KANBAN_SERVER_SHUTDOWN_TIMEOUT must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("KANBAN_SERVER_RATE_LIMIT_RPS must be >= 0, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("KANBAN_SERVER_RATE_LIMIT_BURST must be >= 1, got %d", c.Server.RateLimitBurst)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("KANBAN_LOG_LEVEL: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("KANBAN_LOG_FORMAT must be \"json\" or \"text\", got %q", c.Log.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string. KANBAN_DB_URL wins over the
// individual fields when set.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func isLocalHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1" || strings.HasPrefix(host, "/")
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
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
