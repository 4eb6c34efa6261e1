// Package config provides configuration management for OpenEngine.
// Values come from environment variables first, then the optional config
// file read by viper, then package defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Version is the release version reported by the CLI.
const Version = "1.0.0"

// Default configuration values.
const (
	DefaultServerAddress  = ":8080"
	DefaultPostgresPort   = "5432"
	DefaultQdrantPort     = 6334
	DefaultCollection     = "embeddings"
	DefaultEmbedderURL    = "http://localhost:8081"
	DefaultDimension      = 384
	DefaultAlgorithm      = "HS256"
	DefaultTokenLifetime  = 30 * time.Minute
	DefaultFetchTimeout   = 7 * time.Second
	DefaultRevisitDelta   = 24 * time.Hour
	DefaultParsedCapacity = 64
	UnboundedIterations   = -1
)

// Config aggregates every component configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Postgres PostgresConfig
	Qdrant   QdrantConfig
	Embedder EmbedderConfig
	Auth     AuthConfig
	Crawler  CrawlerConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level       string
	Development bool
	Encoding    string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// PostgresConfig holds relational store settings.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// QdrantConfig holds vector store settings.
type QdrantConfig struct {
	URL        string
	Port       int
	Collection string
}

// EmbedderConfig holds sentence-encoder client settings.
type EmbedderConfig struct {
	URL       string
	Dimension int
	Timeout   time.Duration
}

// AuthConfig holds token and credential settings.
type AuthConfig struct {
	SecretKey     string
	Algorithm     string
	TokenLifetime time.Duration
	Dev           bool
}

// CrawlerConfig holds crawl pipeline settings.
type CrawlerConfig struct {
	RevisitDelta   time.Duration
	FetchTimeout   time.Duration
	MaxIterations  int
	ParsedCapacity int
	Schedule       string
}

// Load builds the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFromViper(viper.GetViper())
}

// LoadFromViper builds the configuration from the given viper instance.
// Environment variables take precedence over file values.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getConfigValue("APP_NAME", "app.name", "openengine", v),
			Environment: getConfigValue("APP_ENV", "app.environment", "production", v),
			Debug:       getBool("APP_DEBUG", "app.debug", false, v),
		},
		Logger: LoggerConfig{
			Level:       getConfigValue("LOG_LEVEL", "logger.level", "info", v),
			Development: getBool("LOG_DEVELOPMENT", "logger.development", false, v),
			Encoding:    getConfigValue("LOG_FORMAT", "logger.encoding", "json", v),
		},
		Server: ServerConfig{
			Address:      getConfigValue("SERVER_ADDRESS", "server.address", DefaultServerAddress, v),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", "server.read_timeout", 15*time.Second, v),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", "server.write_timeout", 15*time.Second, v),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", "server.idle_timeout", 60*time.Second, v),
		},
		Postgres: PostgresConfig{
			Host:     getConfigValue("POSTGRES_HOST", "postgres.host", "localhost", v),
			Port:     getConfigValue("POSTGRES_PORT", "postgres.port", DefaultPostgresPort, v),
			User:     getConfigValue("POSTGRES_USER", "postgres.user", "postgres", v),
			Password: getConfigValue("POSTGRES_PASSWORD", "postgres.password", "", v),
			DBName:   getConfigValue("POSTGRES_DB", "postgres.db", "openengine", v),
			SSLMode:  getConfigValue("POSTGRES_SSLMODE", "postgres.sslmode", "disable", v),
		},
		Qdrant: QdrantConfig{
			URL:        getConfigValue("QDRANT_URL", "qdrant.url", "http://localhost", v),
			Port:       getInt("QDRANT_PORT", "qdrant.port", DefaultQdrantPort, v),
			Collection: getConfigValue("QDRANT_COLLECTION", "qdrant.collection", DefaultCollection, v),
		},
		Embedder: EmbedderConfig{
			URL:       getConfigValue("EMBEDDER_URL", "embedder.url", DefaultEmbedderURL, v),
			Dimension: getInt("EMBEDDER_DIMENSION", "embedder.dimension", DefaultDimension, v),
			Timeout:   getDuration("EMBEDDER_TIMEOUT", "embedder.timeout", 30*time.Second, v),
		},
		Auth: AuthConfig{
			SecretKey:     getConfigValue("SECRET_KEY", "auth.secret_key", "", v),
			Algorithm:     getConfigValue("ALGORITHM", "auth.algorithm", DefaultAlgorithm, v),
			TokenLifetime: getDuration("TOKEN_LIFETIME", "auth.token_lifetime", DefaultTokenLifetime, v),
			Dev:           getBool("DEV", "auth.dev", false, v),
		},
		Crawler: CrawlerConfig{
			RevisitDelta:   getDuration("REVISIT_DELTA", "crawler.revisit_delta", DefaultRevisitDelta, v),
			FetchTimeout:   getDuration("FETCH_TIMEOUT", "crawler.fetch_timeout", DefaultFetchTimeout, v),
			MaxIterations:  getInt("MAX_ITERATIONS", "crawler.max_iterations", UnboundedIterations, v),
			ParsedCapacity: getInt("PARSED_CAPACITY", "crawler.parsed_capacity", DefaultParsedCapacity, v),
			Schedule:       getConfigValue("CRAWL_SCHEDULE", "crawler.schedule", "", v),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if !c.Auth.Dev && c.Auth.SecretKey == "" {
		return fmt.Errorf("%w: SECRET_KEY is required outside DEV mode", ErrMissingValue)
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w: ALGORITHM must be HS256, HS384 or HS512, got %q",
			ErrInvalidValue, c.Auth.Algorithm)
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("%w: embedder dimension must be positive", ErrInvalidValue)
	}
	if c.Postgres.Host == "" || c.Postgres.DBName == "" {
		return fmt.Errorf("%w: postgres host and db are required", ErrMissingValue)
	}
	if c.Crawler.ParsedCapacity <= 0 {
		return fmt.Errorf("%w: parsed queue capacity must be positive", ErrInvalidValue)
	}
	return nil
}

// getConfigValue retrieves a string from environment or viper, with a
// default fallback. Environment wins.
func getConfigValue(envKey, viperKey, defaultValue string, v *viper.Viper) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if val := v.GetString(viperKey); val != "" {
		return val
	}
	return defaultValue
}

func getInt(envKey, viperKey string, defaultValue int, v *viper.Viper) int {
	raw := getConfigValue(envKey, viperKey, "", v)
	if raw == "" {
		return defaultValue
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return defaultValue
	}
	return n
}

func getBool(envKey, viperKey string, defaultValue bool, v *viper.Viper) bool {
	raw := getConfigValue(envKey, viperKey, "", v)
	switch raw {
	case "true", "TRUE", "True", "1":
		return true
	case "false", "FALSE", "False", "0":
		return false
	default:
		return defaultValue
	}
}

func getDuration(envKey, viperKey string, defaultValue time.Duration, v *viper.Viper) time.Duration {
	raw := getConfigValue(envKey, viperKey, "", v)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
