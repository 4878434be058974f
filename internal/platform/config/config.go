package config

import (
	"os"
	"strings"
	"time"

	stringsutil "namereg/pkg/platform/strings"
)

// Server captures the process-level configuration for the registry service.
type Server struct {
	Addr            string
	DatabaseURL     string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	AdminIdentity   string
	Redis           RedisConfig
	Kafka           KafkaConfig
	ShutdownTimeout time.Duration
}

// RedisConfig configures the optional owner-lookup cache.
type RedisConfig struct {
	URL          string
	LookupTTL    time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("NAMEREG_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}
	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "namereg"
	}
	jwtAudience := os.Getenv("JWT_AUDIENCE")
	if jwtAudience == "" {
		jwtAudience = "namereg-api"
	}

	kafkaTopic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = "namereg.audit"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     jwtIssuer,
		JWTAudience:   jwtAudience,
		AdminIdentity: os.Getenv("NAMEREG_ADMIN_IDENTITY"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			LookupTTL:    durationFromEnv("REDIS_LOOKUP_TTL", 5*time.Minute),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   kafkaTopic,
		},
		ShutdownTimeout: durationFromEnv("NAMEREG_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return stringsutil.DedupeAndTrim(strings.Split(raw, ","))
}
