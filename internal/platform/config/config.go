package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	DatabaseURL   string
	Redis         RedisConfig
	Kafka         KafkaConfig
	Ledger        LedgerConfig
}

// RedisConfig holds the balance cache connection settings. An empty URL
// disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the event stream settings. No brokers disables
// publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LedgerConfig holds the process-wide ledger constants.
type LedgerConfig struct {
	StakingAssetID    domain.AssetID
	SpendingAssetID   domain.AssetID
	ReservedThreshold domain.AssetID
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:          envOr("LEDGER_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_LEDGER_TOPIC", "ledger.events"),
		},
		Ledger: LedgerConfig{
			StakingAssetID:    assetID("LEDGER_STAKING_ASSET_ID", 16000),
			SpendingAssetID:   assetID("LEDGER_SPENDING_ASSET_ID", 16001),
			ReservedThreshold: assetID("LEDGER_RESERVED_THRESHOLD", 1000),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func assetID(key string, fallback domain.AssetID) domain.AssetID {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	id, err := domain.ParseAssetID(v)
	if err != nil {
		return fallback
	}
	return id
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
