// internal/config/config.go

package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Aggregator  AggregatorConfig
	Collector   CollectorConfig
	Content     ContentConfig
	Images      ImagesConfig
	Store       StoreConfig
}

// ServerConfig holds read API configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// DSN returns the postgres connection string with credentials escaped
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Database,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// NATSConfig holds NATS configuration. An empty URL disables publishing.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// AggregatorConfig holds merge, filter and selection thresholds
type AggregatorConfig struct {
	MinPlatforms     int
	MaxTrendsPerRun  int
	HistoryLimit     int
	HighTrustSources []string
	ScanInterval     time.Duration
}

// CollectorConfig holds collector configuration
type CollectorConfig struct {
	Sources                 []string
	MaxConcurrentCollectors int
	RequestTimeout          time.Duration
	RetryDelay              time.Duration
	UserAgents              []string
	TwitterBearerToken      string
	SourcesFile             string
}

// ContentConfig holds content generator configuration
type ContentConfig struct {
	AnthropicAPIKey string
	Model           string
	MaxTokens       int
	Timeout         time.Duration
	BaseURL         string
}

// ImagesConfig holds the photo lookup configuration. An empty key disables it.
type ImagesConfig struct {
	UnsplashAccessKey string
	UnsplashBaseURL   string
}

// StoreConfig holds persistence and event configuration
type StoreConfig struct {
	Backend     string
	DataDir     string
	EventsTopic string
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0",
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendradar"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Aggregator: AggregatorConfig{
			MinPlatforms:     getEnvAsInt("RADAR_MIN_PLATFORMS", 1),
			MaxTrendsPerRun:  getEnvAsInt("RADAR_MAX_TRENDS_PER_RUN", 15),
			HistoryLimit:     getEnvAsInt("RADAR_HISTORY_LIMIT", 24),
			HighTrustSources: getEnvAsSlice("RADAR_HIGH_TRUST_SOURCES", []string{"coingecko"}),
			ScanInterval:     getEnvAsDuration("RADAR_SCAN_INTERVAL", 0),
		},
		Collector: CollectorConfig{
			Sources:                 getEnvAsSlice("RADAR_SOURCES", []string{"google", "x", "tiktok", "instagram", "reddit", "coingecko"}),
			MaxConcurrentCollectors: getEnvAsInt("RADAR_MAX_CONCURRENT_COLLECTORS", 4),
			RequestTimeout:          getEnvAsDuration("RADAR_REQUEST_TIMEOUT", 15*time.Second),
			RetryDelay:              getEnvAsDuration("RADAR_RETRY_DELAY", 5*time.Second),
			UserAgents:              getEnvAsSlice("RADAR_USER_AGENTS", defaultUserAgents),
			TwitterBearerToken:      getEnv("TWITTER_BEARER_TOKEN", ""),
			SourcesFile:             getEnv("RADAR_SOURCES_FILE", ""),
		},
		Content: ContentConfig{
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:           getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
			MaxTokens:       getEnvAsInt("ANTHROPIC_MAX_TOKENS", 500),
			Timeout:         getEnvAsDuration("ANTHROPIC_TIMEOUT", 30*time.Second),
			BaseURL:         getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		},
		Images: ImagesConfig{
			UnsplashAccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),
			UnsplashBaseURL:   getEnv("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
		},
		Store: StoreConfig{
			Backend:     getEnv("RADAR_STORE", BackendFile),
			DataDir:     getEnv("RADAR_DATA_DIR", "data"),
			EventsTopic: getEnv("TREND_EVENTS_TOPIC", "trend"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Aggregator.MinPlatforms < 1 {
		return fmt.Errorf("min platforms must be at least 1, got %d", config.Aggregator.MinPlatforms)
	}
	if config.Aggregator.MaxTrendsPerRun < 1 {
		return fmt.Errorf("max trends per run must be at least 1, got %d", config.Aggregator.MaxTrendsPerRun)
	}
	if config.Aggregator.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1, got %d", config.Aggregator.HistoryLimit)
	}
	if config.Aggregator.ScanInterval < 0 {
		return fmt.Errorf("scan interval must not be negative")
	}

	switch config.Store.Backend {
	case BackendFile:
		if config.Store.DataDir == "" {
			return fmt.Errorf("data directory must be set for the file store")
		}
	case BackendPostgres:
		if config.Database.Host == "" || config.Database.Database == "" {
			return fmt.Errorf("database host and name must be set for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", config.Store.Backend)
	}

	if len(config.Collector.UserAgents) == 0 {
		return fmt.Errorf("at least one user agent is required")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
