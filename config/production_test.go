package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ProductionConfig {
	return &ProductionConfig{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "buzzreel",
			User:     "postgres",
			Password: "secret",
		},
		Server: ServerConfig{
			Port:         4000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		TMDB: TMDBConfig{
			APIKey:  "tmdb-key",
			Timeout: 10 * time.Second,
		},
		PodcastIndex: PodcastIndexConfig{
			APIKey:    "pi-key",
			APISecret: "pi-secret",
		},
		Freshness: FreshnessConfig{
			TrendingTTL:  6 * time.Hour,
			TitleTTL:     24 * time.Hour,
			ProvidersTTL: 12 * time.Hour,
			PodcastTTL:   6 * time.Hour,
		},
		Logging: LoggingConfig{Level: "info"},
		Retention: RetentionConfig{
			Enabled:          true,
			Interval:         time.Hour,
			EventRetention:   72 * time.Hour,
			PayloadRetention: 7 * 24 * time.Hour,
			WarmRegions:      []string{"US"},
		},
	}
}

func TestValidateProductionConfig(t *testing.T) {
	t.Run("ValidConfigPasses", func(t *testing.T) {
		require.NoError(t, ValidateProductionConfig(validConfig()))
	})

	t.Run("MissingDatabasePassword", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Password = ""
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_PASSWORD is required")
	})

	t.Run("MissingUpstreamCredentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.TMDB.APIKey = ""
		cfg.PodcastIndex.APISecret = ""
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TMDB_API_KEY is required")
		assert.Contains(t, err.Error(), "PODCASTINDEX_API_KEY and PODCASTINDEX_API_SECRET are required")
	})

	t.Run("FreshnessMustBePositive", func(t *testing.T) {
		cfg := validConfig()
		cfg.Freshness.TrendingTTL = 0
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FRESHNESS_TRENDING_TTL must be positive")
	})

	t.Run("EventRetentionMustCoverScoringWindow", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retention.EventRetention = 12 * time.Hour
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RETENTION_EVENT_AGE")
	})

	t.Run("RetentionDisabledSkipsRetentionChecks", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retention.Enabled = false
		cfg.Retention.EventRetention = 0
		assert.NoError(t, ValidateProductionConfig(cfg))
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Level = "verbose"
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOG_LEVEL")
	})
}

func TestLoadProductionConfigDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("PODCASTINDEX_API_KEY", "pi-key")
	t.Setenv("PODCASTINDEX_API_SECRET", "pi-secret")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 6*time.Hour, cfg.Freshness.TrendingTTL)
	assert.Equal(t, 24*time.Hour, cfg.Freshness.TitleTTL)
	assert.Equal(t, 12*time.Hour, cfg.Freshness.ProvidersTTL)
	assert.Equal(t, 6*time.Hour, cfg.Freshness.PodcastTTL)
	assert.Equal(t, 72*time.Hour, cfg.Retention.EventRetention)
	assert.Equal(t, []string{"US"}, cfg.Retention.WarmRegions)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, "https://api.podcastindex.org/api/1.0", cfg.PodcastIndex.BaseURL)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SOME_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("SOME_DURATION", time.Minute))
	assert.Equal(t, time.Minute, getEnvDuration("UNSET_DURATION", time.Minute))

	t.Setenv("SOME_SLICE", "US, DE ,FR")
	assert.Equal(t, []string{"US", "DE", "FR"}, getEnvStringSlice("SOME_SLICE", nil))

	t.Setenv("SOME_BOOL", "false")
	assert.False(t, getEnvBool("SOME_BOOL", true))
}
