package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Kafka   KafkaConfig
	Seed    SeedConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StorageConfig selects the key-value backend. "sqlite" keeps everything in
// a local file, "postgres" and "redis" point at a server.
type StorageConfig struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	RedisAddr   string

	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type KafkaConfig struct {
	Brokers  []string
	Enabled  bool
	MockMode bool
	Topics   TopicConfig
}

type TopicConfig struct {
	GameUpdated string
	SaleSaved   string
	SaleDeleted string
}

// SeedConfig points at the schedule file the scraper produces.
type SeedConfig struct {
	GamesFile string
}

func Load() *Config {
	kafkaEnabled := getEnvBool("KAFKA_ENABLED", false)
	mockMode := getEnvBool("KAFKA_MOCK_MODE", false)

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8085"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORAGE_DRIVER", "sqlite"),
			SQLitePath:   getEnv("SQLITE_PATH", "ballpark-tracker.db"),
			PostgresDSN:  getEnv("POSTGRES_DSN", ""),
			RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:  strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Enabled:  kafkaEnabled,
			MockMode: mockMode,
			Topics: TopicConfig{
				GameUpdated: getEnv("KAFKA_TOPIC_GAME_UPDATED", "tracker.game.updated"),
				SaleSaved:   getEnv("KAFKA_TOPIC_SALE_SAVED", "tracker.sale.saved"),
				SaleDeleted: getEnv("KAFKA_TOPIC_SALE_DELETED", "tracker.sale.deleted"),
			},
		},
		Seed: SeedConfig{
			GamesFile: getEnv("SEED_GAMES_FILE", "games.json"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
