package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// HTTP server
	Server ServerConfig `mapstructure:"server"`

	// Key-value store selection
	Store StoreConfig `mapstructure:"store"`

	// Paste behaviour
	Paste PasteConfig `mapstructure:"paste"`

	// Redis backend
	Redis RedisConfig `mapstructure:"redis"`

	// Bolt backend
	Bolt BoltConfig `mapstructure:"bolt"`

	// MongoDB backend
	Mongo MongoConfig `mapstructure:"mongo"`

	// DynamoDB backend
	Dynamo DynamoConfig `mapstructure:"dynamo"`

	// PostgreSQL (paste event storage)
	Postgres PostgresConfig `mapstructure:"postgres"`

	// NATS (paste event stream)
	NATS NATSConfig `mapstructure:"nats"`

	// Event pipeline
	Events EventsConfig `mapstructure:"events"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
	// BaseURL is the externally visible origin used when building share
	// links. Empty means links are derived from the incoming request.
	BaseURL string `mapstructure:"base_url"`
}

type StoreConfig struct {
	// Backend selects the key-value store implementation: redis
	// (default), bolt, mongodb or dynamodb.
	Backend string `mapstructure:"backend"`
}

type PasteConfig struct {
	IDLength int `mapstructure:"id_length"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type BoltConfig struct {
	Path string `mapstructure:"path"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type DynamoConfig struct {
	Table  string `mapstructure:"table"`
	Region string `mapstructure:"region"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type NATSConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	MonitorPort int    `mapstructure:"monitor_port"`
}

type EventsConfig struct {
	// Enabled turns the NATS/Postgres event pipeline on. When false the
	// service runs against the key-value store alone.
	Enabled bool `mapstructure:"enabled"`
	// Retention bounds how long stored events are kept, as a Go duration
	// string. Empty means 24h.
	Retention string `mapstructure:"retention"`
}

type PrometheusConfig struct {
	Port int `mapstructure:"port"`
}

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.base_url", "BASE_URL")

	// Store selection
	v.BindEnv("store.backend", "STORE_BACKEND")

	// Paste behaviour
	v.BindEnv("paste.id_length", "PASTE_ID_LENGTH")

	// Redis
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// Bolt
	v.BindEnv("bolt.path", "BOLT_PATH")

	// MongoDB
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DB")
	v.BindEnv("mongo.collection", "MONGO_COLLECTION")

	// DynamoDB
	v.BindEnv("dynamo.table", "DYNAMO_TABLE")
	v.BindEnv("dynamo.region", "DYNAMO_REGION")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")
	v.BindEnv("postgres.max_conns", "PG_MAX_CONNS")
	v.BindEnv("postgres.min_conns", "PG_MIN_CONNS")
	v.BindEnv("postgres.max_conn_lifetime", "PG_MAX_CONN_LIFETIME")
	v.BindEnv("postgres.max_conn_idle_time", "PG_MAX_CONN_IDLE_TIME")
	v.BindEnv("postgres.health_check_period", "PG_HEALTH_CHECK_PERIOD")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")
	v.BindEnv("nats.monitor_port", "NATS_MONITOR_PORT")

	// Events
	v.BindEnv("events.enabled", "EVENTS_ENABLED")
	v.BindEnv("events.retention", "EVENTS_RETENTION")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")
}
