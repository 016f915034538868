package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/KohlJary/project-cass-sub004/pkg/errors"
)

// Config holds all engine configuration
type Config struct {
	// App
	Env        string `yaml:"env"`
	InstanceID string `yaml:"instance_id"`

	// Persistence
	SnapshotPath string `yaml:"snapshot_path"`

	// Embedding provider
	EmbeddingBaseURL string        `yaml:"embedding_base_url"`
	EmbeddingAPIKey  string        `yaml:"embedding_api_key"`
	EmbeddingModel   string        `yaml:"embedding_model"`
	EmbeddingTimeout time.Duration `yaml:"embedding_timeout"`

	// Similarity
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	SimilarityLimit     int     `yaml:"similarity_limit"`

	// Friction detection defaults
	FrictionMinAttempts    int     `yaml:"friction_min_attempts"`
	FrictionMaxSuccessRate float64 `yaml:"friction_max_success_rate"`
}

// Load reads configuration from an optional YAML file and environment
// variables. Environment variables always win over file values.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("SELFMODEL_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("config file load failed: %w", err)
		}
	}

	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.InstanceID = getEnv("SELFMODEL_INSTANCE_ID", cfg.InstanceID)
	cfg.SnapshotPath = getEnv("SELFMODEL_SNAPSHOT_PATH", cfg.SnapshotPath)
	cfg.EmbeddingBaseURL = getEnv("EMBEDDING_BASE_URL", cfg.EmbeddingBaseURL)
	cfg.EmbeddingAPIKey = getEnv("EMBEDDING_API_KEY", cfg.EmbeddingAPIKey)
	cfg.EmbeddingModel = getEnv("EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.EmbeddingTimeout = getEnvDuration("EMBEDDING_TIMEOUT", cfg.EmbeddingTimeout)
	cfg.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", cfg.SimilarityThreshold)
	cfg.SimilarityLimit = getEnvInt("SIMILARITY_LIMIT", cfg.SimilarityLimit)
	cfg.FrictionMinAttempts = getEnvInt("FRICTION_MIN_ATTEMPTS", cfg.FrictionMinAttempts)
	cfg.FrictionMaxSuccessRate = getEnvFloat("FRICTION_MAX_SUCCESS_RATE", cfg.FrictionMaxSuccessRate)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Env:                    "development",
		InstanceID:             "cass",
		SnapshotPath:           "data/self_model.json",
		EmbeddingBaseURL:       "http://localhost:4000",
		EmbeddingModel:         "text-embedding-3-small",
		EmbeddingTimeout:       15 * time.Second,
		SimilarityThreshold:    0.35,
		SimilarityLimit:        5,
		FrictionMinAttempts:    3,
		FrictionMaxSuccessRate: 0.5,
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.InstanceID == "" {
		return errors.NewConfigInvalid("instance_id", "must not be empty")
	}
	if c.SnapshotPath == "" {
		return errors.NewConfigInvalid("snapshot_path", "must not be empty")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return errors.NewConfigInvalid("similarity_threshold", "must be in (0, 1]")
	}
	if c.FrictionMinAttempts < 1 {
		return errors.NewConfigInvalid("friction_min_attempts", "must be at least 1")
	}
	if c.FrictionMaxSuccessRate < 0 || c.FrictionMaxSuccessRate > 1 {
		return errors.NewConfigInvalid("friction_max_success_rate", "must be in [0, 1]")
	}
	// Embedding API key is optional; the engine degrades to no similarity
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
