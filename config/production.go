// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database     DatabaseConfig     `json:"database"`
	Server       ServerConfig       `json:"server"`
	Security     SecurityConfig     `json:"security"`
	TMDB         TMDBConfig         `json:"tmdb"`
	PodcastIndex PodcastIndexConfig `json:"podcast_index"`
	Freshness    FreshnessConfig    `json:"freshness"`
	Cache        CacheConfig        `json:"cache"`
	Logging      LoggingConfig      `json:"logging"`
	Metrics      MetricsConfig      `json:"metrics"`
	Retention    RetentionConfig    `json:"retention"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
	EnableMetrics   bool          `json:"enable_metrics"`
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per window
	WriteRateLimit  int           `json:"write_rate_limit"`  // requests per window for event/vote writes
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

type TMDBConfig struct {
	BaseURL    string        `json:"base_url"`
	APIKey     string        `json:"api_key"`
	Timeout    time.Duration `json:"timeout"`
	RetryCount int           `json:"retry_count"`
}

type PodcastIndexConfig struct {
	BaseURL    string        `json:"base_url"`
	APIKey     string        `json:"api_key"`
	APISecret  string        `json:"api_secret"`
	UserAgent  string        `json:"user_agent"`
	Timeout    time.Duration `json:"timeout"`
	RetryCount int           `json:"retry_count"`
}

// FreshnessConfig holds the per-category staleness thresholds for the
// response cache. Categories differ in how often the underlying truth
// changes and in the cost of a miss.
type FreshnessConfig struct {
	TrendingTTL  time.Duration `json:"trending_ttl"`
	TitleTTL     time.Duration `json:"title_ttl"`
	ProvidersTTL time.Duration `json:"providers_ttl"`
	PodcastTTL   time.Duration `json:"podcast_ttl"`
}

type CacheConfig struct {
	Enabled      bool          `json:"enabled"`
	Provider     string        `json:"provider"` // redis
	RedisURL     string        `json:"redis_url"`
	RedisDB      int           `json:"redis_db"`
	RedisPrefix  string        `json:"redis_prefix"`
	PingInterval time.Duration `json:"ping_interval"`
}

type LoggingConfig struct {
	Level      string `json:"level"`  // debug, info, warn, error
	Format     string `json:"format"` // json, text
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`

	// Access Logs
	EnableAccessLog bool `json:"enable_access_log"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// RetentionConfig drives the background compaction job: interaction
// events older than EventRetention and cache rows stale beyond
// PayloadRetention are pruned outside the request path.
type RetentionConfig struct {
	Enabled          bool          `json:"enabled"`
	Interval         time.Duration `json:"interval"`
	EventRetention   time.Duration `json:"event_retention"`
	PayloadRetention time.Duration `json:"payload_retention"`
	WarmRegions      []string      `json:"warm_regions"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "buzzreel"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 4000),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 1024*1024), // 1MB
			EnableMetrics:   getEnvBool("SERVER_ENABLE_METRICS", true),
		},
		Security: SecurityConfig{
			AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://buzzreel.app", "https://api.buzzreel.app"}),
			AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-Request-ID"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
			CORSMaxAge:       getEnvInt("CORS_MAX_AGE", 86400),
			GlobalRateLimit:  getEnvInt("GLOBAL_RATE_LIMIT", 2000),
			WriteRateLimit:   getEnvInt("WRITE_RATE_LIMIT", 120),
			RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		TMDB: TMDBConfig{
			BaseURL:    getEnvString("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			APIKey:     getEnvString("TMDB_API_KEY", ""),
			Timeout:    getEnvDuration("TMDB_TIMEOUT", 10*time.Second),
			RetryCount: getEnvInt("TMDB_RETRY_COUNT", 3),
		},
		PodcastIndex: PodcastIndexConfig{
			BaseURL:    getEnvString("PODCASTINDEX_BASE_URL", "https://api.podcastindex.org/api/1.0"),
			APIKey:     getEnvString("PODCASTINDEX_API_KEY", ""),
			APISecret:  getEnvString("PODCASTINDEX_API_SECRET", ""),
			UserAgent:  getEnvString("PODCASTINDEX_USER_AGENT", "Buzzreel/1.0"),
			Timeout:    getEnvDuration("PODCASTINDEX_TIMEOUT", 10*time.Second),
			RetryCount: getEnvInt("PODCASTINDEX_RETRY_COUNT", 3),
		},
		Freshness: FreshnessConfig{
			TrendingTTL:  getEnvDuration("FRESHNESS_TRENDING_TTL", 6*time.Hour),
			TitleTTL:     getEnvDuration("FRESHNESS_TITLE_TTL", 24*time.Hour),
			ProvidersTTL: getEnvDuration("FRESHNESS_PROVIDERS_TTL", 12*time.Hour),
			PodcastTTL:   getEnvDuration("FRESHNESS_PODCAST_TTL", 6*time.Hour),
		},
		Cache: CacheConfig{
			Enabled:      getEnvBool("CACHE_ENABLED", true),
			Provider:     getEnvString("CACHE_PROVIDER", "redis"),
			RedisURL:     getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:      getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix:  getEnvString("CACHE_REDIS_PREFIX", "buzzreel:"),
			PingInterval: getEnvDuration("CACHE_PING_INTERVAL", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:           getEnvString("LOG_LEVEL", "info"),
			Format:          getEnvString("LOG_FORMAT", "json"),
			Output:          getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:        getEnvString("LOG_FILE_PATH", "/var/log/buzzreel/app.log"),
			MaxSize:         getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:          getEnvInt("LOG_MAX_AGE", 30),
			Compress:        getEnvBool("LOG_COMPRESS", true),
			EnableAccessLog: getEnvBool("LOG_ENABLE_ACCESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Retention: RetentionConfig{
			Enabled:          getEnvBool("RETENTION_ENABLED", true),
			Interval:         getEnvDuration("RETENTION_INTERVAL", 1*time.Hour),
			EventRetention:   getEnvDuration("RETENTION_EVENT_AGE", 72*time.Hour),
			PayloadRetention: getEnvDuration("RETENTION_PAYLOAD_AGE", 7*24*time.Hour),
			WarmRegions:      getEnvStringSlice("RETENTION_WARM_REGIONS", []string{"US"}),
		},
	}

	// Validate the loaded configuration
	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads environment variables from .env file if it exists
func loadEnvFile() error {
	envFile := ".env"

	// Check if .env file exists
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// .env file doesn't exist, continue with environment variables
		return nil
	}

	// Open .env file
	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	// Read file line by line
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value pairs
		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.TrimSpace(parts[1])

				// Remove quotes if present
				if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
					(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
					value = value[1 : len(value)-1]
				}

				// Set environment variable if not already set
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	// Validate database configuration
	if cfg.Database.Host == "" {
		errors = append(errors, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errors = append(errors, "DB_USER is required")
	}
	if cfg.Database.Password == "" {
		errors = append(errors, "DB_PASSWORD is required")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.Server.IdleTimeout <= 0 {
		errors = append(errors, "SERVER_IDLE_TIMEOUT must be positive")
	}

	// Validate external API configuration
	if cfg.TMDB.APIKey == "" {
		errors = append(errors, "TMDB_API_KEY is required")
	}
	if cfg.TMDB.Timeout <= 0 {
		errors = append(errors, "TMDB_TIMEOUT must be positive")
	}
	if cfg.PodcastIndex.APIKey == "" || cfg.PodcastIndex.APISecret == "" {
		errors = append(errors, "PODCASTINDEX_API_KEY and PODCASTINDEX_API_SECRET are required")
	}

	// Validate freshness thresholds
	if cfg.Freshness.TrendingTTL <= 0 {
		errors = append(errors, "FRESHNESS_TRENDING_TTL must be positive")
	}
	if cfg.Freshness.TitleTTL <= 0 {
		errors = append(errors, "FRESHNESS_TITLE_TTL must be positive")
	}
	if cfg.Freshness.ProvidersTTL <= 0 {
		errors = append(errors, "FRESHNESS_PROVIDERS_TTL must be positive")
	}
	if cfg.Freshness.PodcastTTL <= 0 {
		errors = append(errors, "FRESHNESS_PODCAST_TTL must be positive")
	}

	// Validate logging configuration
	if cfg.Logging.Level != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		valid := false
		for _, level := range validLevels {
			if cfg.Logging.Level == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %v", validLevels))
		}
	}

	// Validate cache configuration if enabled
	if cfg.Cache.Enabled {
		if cfg.Cache.Provider == "redis" && cfg.Cache.RedisURL == "" {
			errors = append(errors, "CACHE_REDIS_URL is required when cache is enabled with redis provider")
		}
	}

	// Validate retention configuration
	if cfg.Retention.Enabled {
		if cfg.Retention.Interval <= 0 {
			errors = append(errors, "RETENTION_INTERVAL must be positive")
		}
		if cfg.Retention.EventRetention < 24*time.Hour {
			errors = append(errors, "RETENTION_EVENT_AGE must cover the full scoring window (24h)")
		}
	}

	// Return validation errors if any
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
