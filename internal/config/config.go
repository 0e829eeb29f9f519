package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Storage     string // STORAGE: postgres or memory
	Database    DatabaseConfig
	Auth        AuthConfig
	Kafka       KafkaConfig

	// TrackingNodeID is this instance's snowflake node (0-1023). Instances
	// sharing a database need distinct ids.
	TrackingNodeID int64
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AuthConfig verifies actor tokens
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// KafkaConfig is where status change events go. No brokers disables publishing.
type KafkaConfig struct {
	Brokers string // comma separated
	Topic   string
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads the configuration. Variables from an optional .env file fill in
// whatever the environment does not set.
func Load() (*Config, error) {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_TOPIC", "shipment-events")
	v.SetDefault("TRACKING_NODE_ID", "1")
	v.AutomaticEnv()

	cfg := &Config{
		Port:        getEnvOrViper(v, "PORT", "8080"),
		Environment: getEnvOrViper(v, "ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper(v, "LOG_LEVEL", "info"),
		Storage:     strings.ToLower(strings.TrimSpace(getEnvOrViper(v, "STORAGE", StoragePostgres))),
		Database: DatabaseConfig{
			Host:     getEnvOrViper(v, "DB_HOST", "localhost"),
			Port:     getEnvOrViper(v, "DB_PORT", "5432"),
			User:     getEnvOrViper(v, "DB_USER", "postgres"),
			Password: getEnvOrViper(v, "DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper(v, "DB_NAME", "shipments"),
			SSLMode:  getEnvOrViper(v, "DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(getEnvOrViper(v, "JWT_SECRET", "")),
			JWTIssuer: strings.TrimSpace(getEnvOrViper(v, "JWT_ISSUER", "")),
		},
		Kafka: KafkaConfig{
			Brokers: strings.TrimSpace(getEnvOrViper(v, "KAFKA_BROKERS", "")),
			Topic:   strings.TrimSpace(getEnvOrViper(v, "KAFKA_TOPIC", "shipment-events")),
		},
	}

	nodeID, err := strconv.ParseInt(getEnvOrViper(v, "TRACKING_NODE_ID", "1"), 10, 64)
	if err != nil || nodeID < 0 || nodeID > 1023 {
		return nil, fmt.Errorf("TRACKING_NODE_ID must be an integer between 0 and 1023")
	}
	cfg.TrackingNodeID = nodeID

	// Validate required fields
	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}
	if cfg.IsProduction() && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func getEnvOrViper(v *viper.Viper, key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return defaultValue
}
