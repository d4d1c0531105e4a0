package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration for one replica.
type Server struct {
	Addr           string
	ReplicaID      string
	AdminSignKey   string
	AdminAuthority string
}

// RedisConfig captures connection settings for the optional Redis-backed
// global status store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RelayConfig captures settings for the Kafka-backed relay adapter.
type RelayConfig struct {
	Brokers     []string
	TopicPrefix string
	// FlatFee is the quoted cost per outbound message when no per-peer
	// override is configured.
	FlatFee uint64
}

// Postgres captures the optional SQL store DSN. Empty means memory stores.
type Postgres struct {
	DSN string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("MINTGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	replica := os.Getenv("MINTGATE_REPLICA_ID")
	if replica == "" {
		replica = "replica-0"
	}

	signKey := os.Getenv("MINTGATE_ADMIN_SIGNING_KEY")
	if signKey == "" {
		// Use a default for development - should be overridden in production
		signKey = "dev-secret-key-change-in-production"
	}
	authority := os.Getenv("MINTGATE_ADMIN_AUTHORITY")
	if authority == "" {
		authority = "admin"
	}

	return Server{
		Addr:           addr,
		ReplicaID:      replica,
		AdminSignKey:   signKey,
		AdminAuthority: authority,
	}
}

// RedisFromEnv builds Redis settings. An empty URL disables Redis.
func RedisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("MINTGATE_REDIS_URL"),
		PoolSize:     envInt("MINTGATE_REDIS_POOL_SIZE", 10),
		MinIdleConns: envInt("MINTGATE_REDIS_MIN_IDLE", 2),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RelayFromEnv builds relay settings. Empty brokers disable the Kafka relay
// (the in-process loopback is used instead, which keeps single-replica dev
// deployments self-contained).
func RelayFromEnv() RelayConfig {
	cfg := RelayConfig{
		TopicPrefix: os.Getenv("MINTGATE_RELAY_TOPIC_PREFIX"),
		FlatFee:     uint64(envInt("MINTGATE_RELAY_FLAT_FEE", 1)),
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "mintgate.relay"
	}
	if brokers := os.Getenv("MINTGATE_KAFKA_BROKERS"); brokers != "" {
		cfg.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

// PostgresFromEnv builds the SQL store DSN. Empty DSN means memory stores.
func PostgresFromEnv() Postgres {
	return Postgres{DSN: os.Getenv("MINTGATE_POSTGRES_URL")}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
