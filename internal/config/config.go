package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config aggregates the API server configuration.
type Config struct {
	HTTP      HTTPConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

type HTTPConfig struct {
	Port               string        `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout     time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ReadTimeout        time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout       time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout        time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxRequestBodySize int64         `env:"HTTP_MAX_BODY_BYTES" envDefault:"1048576"`
}

// MongoConfig is shared by the API server and the admin CLI.
type MongoConfig struct {
	URI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGODB_DATABASE" envDefault:"nexicart"`
}

// RedisConfig leaves caching disabled when Addr is empty.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"15m"`
}

// KafkaConfig leaves order events disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers       []string `env:"KAFKA_BROKERS" envSeparator:","`
	OrdersTopic   string   `env:"KAFKA_ORDERS_TOPIC" envDefault:"order-events"`
	ConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"nexicart-cart"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"720h"`
	Issuer    string        `env:"JWT_ISSUER" envDefault:"nexicart"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json|console
}

type TelemetryConfig struct {
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"nexicart-api"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Load reads the API configuration from the environment, after merging an
// optional .env file from the working directory.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}
	if cfg.HTTP.MaxRequestBodySize <= 0 {
		return Config{}, fmt.Errorf("HTTP_MAX_BODY_BYTES must be positive, got %d", cfg.HTTP.MaxRequestBodySize)
	}
	return cfg, nil
}

// LoadMongo reads only the database settings. The admin CLI uses it so it
// does not need the server's secrets.
func LoadMongo() (MongoConfig, error) {
	if err := loadDotEnv(); err != nil {
		return MongoConfig{}, err
	}

	var cfg MongoConfig
	if err := env.Parse(&cfg); err != nil {
		return MongoConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func loadDotEnv() error {
	// Variables already present in the environment win over .env values.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
