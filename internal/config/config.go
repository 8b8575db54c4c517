package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Env      string         `json:"env"`
	Http     HttpConfig     `json:"http"`
	Storage  StorageConfig  `json:"storage"`
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	Engine   EngineConfig   `json:"engine"`
	MQTT     MQTTConfig     `json:"mqtt"`
	Kafka    KafkaConfig    `json:"kafka"`
	Webhook  WebhookConfig  `json:"webhook"`
	Hint     HintConfig     `json:"hint"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	RateLimitRPS    float64       `json:"rate_limit_rps"`
	RateLimitBurst  int           `json:"rate_limit_burst"`
}

type StorageConfig struct {
	Driver string `json:"driver"`
	// DirectorySeed is a JSON file of directory records loaded into the
	// memory driver at startup.
	DirectorySeed string `json:"directory_seed"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	Migrate         bool `json:"migrate"`
}

type RedisConfig struct {
	Addr           string        `json:"addr"`
	Password       string        `json:"password,omitempty"`
	DB             int           `json:"db"`
	Disabled       bool          `json:"disabled"`
	TargetCacheTTL time.Duration `json:"target_cache_ttl"`
}

// EngineConfig holds the guard thresholds. MaxDistanceMeters is the single
// default for both checkpoints; each can be overridden on its own.
type EngineConfig struct {
	MaxDistanceMeters         float64       `json:"max_distance_meters"`
	ScanMaxDistanceMeters     float64       `json:"scan_max_distance_meters"`
	RegisterMaxDistanceMeters float64       `json:"register_max_distance_meters"`
	MinEventInterval          time.Duration `json:"min_event_interval"`
	DebounceAtScan            bool          `json:"debounce_at_scan"`
	PositionMaxAge            time.Duration `json:"position_max_age"`
	SessionIdleTTL            time.Duration `json:"session_idle_ttl"`
	SweepInterval             time.Duration `json:"sweep_interval"`
	NotifyTimeout             time.Duration `json:"notify_timeout"`
}

type MQTTConfig struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	TopicPrefix string `json:"topic_prefix"`
	Username    string `json:"username"`
	Password    string `json:"password,omitempty"`
	Disabled    bool   `json:"disabled"`
	Workers     int    `json:"workers"`
	QueueSize   int    `json:"queue_size"`
}

type KafkaConfig struct {
	Brokers        []string      `json:"brokers"`
	Topic          string        `json:"topic"`
	Disabled       bool          `json:"disabled"`
	ProduceTimeout time.Duration `json:"produce_timeout"`
}

type WebhookConfig struct {
	URL        string        `json:"url"`
	Disabled   bool          `json:"disabled"`
	QueueKey   string        `json:"queue_key"`
	MaxRetries int           `json:"max_retries"`
	Timeout    time.Duration `json:"timeout"`
}

type HintConfig struct {
	Path     string `json:"path"`
	Disabled bool   `json:"disabled"`
}

func Load(ctx context.Context) (*Config, error) {

	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	maxDistance := getEnvFloat("MAX_DISTANCE_METERS", 100)

	cfg := &Config{
		Env: getEnv("ENV", "local"),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimitRPS:    getEnvFloat("HTTP_RATE_LIMIT_RPS", 10),
			RateLimitBurst:  getEnvInt("HTTP_RATE_LIMIT_BURST", 20),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", StorageDriverPostgres),
			DirectorySeed: getEnv("DIRECTORY_SEED", ""),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "pg-local"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "fieldcheck"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        20,
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
			Migrate:         getEnvBool("POSTGRES_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "redis-local:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			Disabled:       getEnvBool("REDIS_DISABLED", false),
			TargetCacheTTL: getEnvDuration("TARGET_CACHE_TTL", 5*time.Minute),
		},
		Engine: EngineConfig{
			MaxDistanceMeters:         maxDistance,
			ScanMaxDistanceMeters:     getEnvFloat("SCAN_MAX_DISTANCE_METERS", maxDistance),
			RegisterMaxDistanceMeters: getEnvFloat("REGISTER_MAX_DISTANCE_METERS", maxDistance),
			MinEventInterval:          getEnvDuration("MIN_EVENT_INTERVAL", 5*time.Minute),
			DebounceAtScan:            getEnvBool("DEBOUNCE_AT_SCAN", false),
			PositionMaxAge:            getEnvDuration("POSITION_MAX_AGE", 0),
			SessionIdleTTL:            getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
			SweepInterval:             getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
			NotifyTimeout:             getEnvDuration("NOTIFY_TIMEOUT", 5*time.Second),
		},
		MQTT: MQTTConfig{
			Broker:      getEnv("MQTT_BROKER", "tcp://mqtt-local:1883"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "fieldcheck"),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "fieldcheck"),
			Username:    getEnv("MQTT_USERNAME", ""),
			Password:    getEnv("MQTT_PASSWORD", ""),
			Disabled:    getEnvBool("MQTT_DISABLED", false),
			Workers:     getEnvInt("MQTT_WORKERS", 4),
			QueueSize:   getEnvInt("MQTT_QUEUE_SIZE", 256),
		},
		Kafka: KafkaConfig{
			Brokers:        getEnvList("KAFKA_BROKERS", []string{"kafka-local:9092"}),
			Topic:          getEnv("KAFKA_TOPIC", "attendance-events"),
			Disabled:       getEnvBool("KAFKA_DISABLED", true),
			ProduceTimeout: getEnvDuration("KAFKA_PRODUCE_TIMEOUT", 5*time.Second),
		},
		Webhook: WebhookConfig{
			URL:        getEnv("WEBHOOK_URL", ""),
			Disabled:   getEnvBool("WEBHOOK_DISABLED", true),
			QueueKey:   getEnv("WEBHOOK_QUEUE_KEY", "attendance:webhooks"),
			MaxRetries: getEnvInt("WEBHOOK_MAX_RETRIES", 3),
			Timeout:    getEnvDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		},
		Hint: HintConfig{
			Path:     getEnv("HINT_DB_PATH", "fieldcheck-hints.db"),
			Disabled: getEnvBool("HINT_DISABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("http_port", cfg.Http.Port),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("redis_addr", cfg.Redis.Addr),
		slog.Float64("scan_max_distance_meters", cfg.Engine.ScanMaxDistanceMeters),
		slog.Float64("register_max_distance_meters", cfg.Engine.RegisterMaxDistanceMeters),
		slog.Duration("min_event_interval", cfg.Engine.MinEventInterval))

	return cfg, nil
}

func (c *Config) Validate() error {

	if c.Http.Port == "" || (len(c.Http.Port) > 0 && c.Http.Port[0] != ':') {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.Host == "" {
			return errors.New("POSTGRES_HOST required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER %q: want %q or %q", c.Storage.Driver, StorageDriverPostgres, StorageDriverMemory)
	}

	if c.Engine.ScanMaxDistanceMeters <= 0 || c.Engine.RegisterMaxDistanceMeters <= 0 {
		return errors.New("distance thresholds must be positive")
	}
	if c.Engine.MinEventInterval < 0 {
		return errors.New("MIN_EVENT_INTERVAL must not be negative")
	}
	if c.Engine.PositionMaxAge < 0 {
		return errors.New("POSITION_MAX_AGE must not be negative")
	}

	if !c.MQTT.Disabled {
		if c.MQTT.Broker == "" {
			return errors.New("MQTT_BROKER required unless MQTT_DISABLED=true")
		}
		if c.MQTT.Workers <= 0 {
			return errors.New("MQTT_WORKERS must be positive")
		}
	}

	if !c.Kafka.Disabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("KAFKA_BROKERS and KAFKA_TOPIC required unless KAFKA_DISABLED=true")
	}

	if !c.Webhook.Disabled {
		if c.Webhook.URL == "" {
			return errors.New("WEBHOOK_URL required unless WEBHOOK_DISABLED=true")
		}
		if c.Redis.Disabled {
			return errors.New("webhooks are queued in redis: enable redis or set WEBHOOK_DISABLED=true")
		}
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
