package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// Config holds all configuration for the moderation service
type Config struct {
	Database    DatabaseConfig
	Kafka       KafkaConfig
	Logging     LoggingConfig
	Service     ServiceConfig
	RemoteStore RemoteStoreConfig
	Moderation  ModerationConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers       []string
	GroupID       string
	TopicIngested string
	TopicEdited   string
	TopicDeleted  string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// RemoteStoreConfig holds moderation API client configuration
type RemoteStoreConfig struct {
	URL     string
	Timeout time.Duration
}

// ModerationConfig holds scoring defaults and the tenant used when an event
// arrives without one.
type ModerationConfig struct {
	DefaultThreshold float64
	AnchorTerms      []string
	DaemonZip        string
}

// Result is fx.Out struct for providing config dependencies
type Result struct {
	fx.Out

	Config            *Config
	DatabaseConfig    *DatabaseConfig
	KafkaConfig       *KafkaConfig
	LoggingConfig     *LoggingConfig
	ServiceConfig     *ServiceConfig
	RemoteStoreConfig *RemoteStoreConfig
	ModerationConfig  *ModerationConfig
}

// Out returns fx-compatible config result
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:            cfg,
		DatabaseConfig:    &cfg.Database,
		KafkaConfig:       &cfg.Kafka,
		LoggingConfig:     &cfg.Logging,
		ServiceConfig:     &cfg.Service,
		RemoteStoreConfig: &cfg.RemoteStore,
		ModerationConfig:  &cfg.Moderation,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "moderation_user"),
			Password: getEnv("DATABASE_PASSWORD", "moderation_pass"),
			DBName:   getEnv("DATABASE_NAME", "moderation_db"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9093"), ","),
			GroupID:       getEnv("KAFKA_GROUP_ID", "moderation-service-group"),
			TopicIngested: getEnv("KAFKA_TOPIC_ARTICLE_INGESTED", "article.ingested"),
			TopicEdited:   getEnv("KAFKA_TOPIC_ARTICLE_EDITED", "article.edited"),
			TopicDeleted:  getEnv("KAFKA_TOPIC_ARTICLE_DELETED", "article.deleted"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "moderation-service"),
			Port: getEnv("SERVICE_PORT", "8084"),
		},
		RemoteStore: RemoteStoreConfig{
			URL:     getEnv("MODERATION_API_URL", "http://news-api:8080"),
			Timeout: getEnvDuration("MODERATION_API_TIMEOUT", 30*time.Second),
		},
		Moderation: ModerationConfig{
			DefaultThreshold: getEnvFloat("MODERATION_DEFAULT_THRESHOLD", 10),
			AnchorTerms:      strings.Split(getEnv("MODERATION_ANCHOR_TERMS", "fall river,fallriver"), ","),
			DaemonZip:        getEnv("MODERATION_DAEMON_ZIP", "02720"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DATABASE_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DATABASE_USER is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("DATABASE_NAME is required")
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	if c.RemoteStore.URL == "" {
		return fmt.Errorf("MODERATION_API_URL is required")
	}

	if c.Moderation.DefaultThreshold < 0 {
		return fmt.Errorf("MODERATION_DEFAULT_THRESHOLD must be non-negative")
	}

	if !zipPattern.MatchString(c.Moderation.DaemonZip) {
		return fmt.Errorf("MODERATION_DAEMON_ZIP must be a 5-digit zip code")
	}

	return nil
}

// GetDSN returns database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration gets environment variable as duration with default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getEnvFloat gets environment variable as float with default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
