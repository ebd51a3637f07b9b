// Package config builds per-service configuration from environment variables
// so mains stay lean. Every service reads the same struct and ignores the
// fields it does not use.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Service captures everything a fundflow service can be configured with.
type Service struct {
	Addr        string
	PostgresDSN string

	// Sibling service base URLs for cross-service reads.
	DonationsURL  string
	CategoriesURL string
	UsersURL      string

	// Broker seed addresses for the shared message channel.
	KafkaBrokers []string

	// Bearer credential signing.
	JWTSigningKey string
	JWTExpiry     time.Duration

	// Optional category name cache.
	RedisURL string

	// Optional admin seed for the users service.
	SeedAdminEmail    string
	SeedAdminPassword string

	// Bound on broker connect attempts when subscribing.
	SubscribeRetries int
}

// FromEnv builds a Service config from environment variables, applying
// development defaults where unset.
func FromEnv() Service {
	return Service{
		Addr:              envOr("ADDR", ":8080"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		DonationsURL:      envOr("DONATIONS_URL", "http://donations:8080"),
		CategoriesURL:     envOr("CATEGORIES_URL", "http://categories:8080"),
		UsersURL:          envOr("USERS_URL", "http://users:8080"),
		KafkaBrokers:      splitList(envOr("KAFKA_BROKERS", "kafka:9092")),
		JWTSigningKey:     envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTExpiry:         envDurationOr("JWT_EXPIRY", 15*time.Minute),
		RedisURL:          os.Getenv("REDIS_URL"),
		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		SubscribeRetries:  envIntOr("SUBSCRIBE_RETRIES", 5),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
