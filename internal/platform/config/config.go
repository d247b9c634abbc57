// Package config loads process configuration from the environment so main
// stays lean and components receive plain values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures everything cmd/server needs to wire the process.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string

	// UploadDir is the File Vault root. Created on startup if absent.
	UploadDir string
	// MaxRequestBytes caps the whole multipart submission body. Individual
	// evidence files are additionally capped by the vault.
	MaxRequestBytes int64

	// DatabaseURL selects the Postgres record store; empty keeps the
	// in-memory stores (development and tests).
	DatabaseURL string
	// RedisURL enables the token revocation check; empty disables it.
	RedisURL string
	// KafkaBrokers enables the Kafka audit sink; empty keeps audit events
	// in memory only.
	KafkaBrokers []string
	// AuditTopic is the Kafka topic audit events are produced to.
	AuditTopic string

	// DevMode widens error bodies and enables the token debug endpoint.
	// Never enable in production.
	DevMode bool
}

// RedisConfig tunes the go-redis client pool.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables with development
// defaults.
func FromEnv() Server {
	cfg := Server{
		Addr:            getenv("VERIFLOW_ADDR", ":8080"),
		JWTSigningKey:   getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       getenv("JWT_ISSUER", "veriflow"),
		UploadDir:       getenv("UPLOAD_DIR", "private-uploads"),
		MaxRequestBytes: getenvInt64("MAX_REQUEST_BYTES", 200<<20),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		AuditTopic:      getenv("AUDIT_TOPIC", "veriflow.audit"),
		DevMode:         os.Getenv("DEV_MODE") == "true",
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

// Redis returns pool settings for the revocation store client.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
