package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr           string
	JWTSigningKey  string
	AdminTokenHash string

	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Storage     StorageConfig

	// MaxUploadBytes caps document uploads before they reach storage.
	MaxUploadBytes int64
}

// RedisConfig captures connection tuning for the Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the audit sink configuration.
// An empty broker list disables the Kafka sink.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// StorageConfig points at the hosted document-storage service.
type StorageConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// DraftTTL bounds how long an unsubmitted wizard draft is retained.
var DraftTTL = 30 * 24 * time.Hour

// StatusCacheTTL bounds the read-side status cache.
var StatusCacheTTL = 30 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VOUCH_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	maxUpload := int64(10 << 20)
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxUpload = parsed
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = splitAndTrim(raw)
	}
	auditTopic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "vouch.audit"
	}

	storageTimeout := 30 * time.Second
	if raw := os.Getenv("STORAGE_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			storageTimeout = parsed
		}
	}

	return Server{
		Addr: addr,
		// No default: secrets are never defaulted. main refuses to start
		// without a signing key.
		JWTSigningKey:  os.Getenv("JWT_SIGNING_KEY"),
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    brokers,
			AuditTopic: auditTopic,
		},
		Storage: StorageConfig{
			Endpoint: os.Getenv("STORAGE_ENDPOINT"),
			APIKey:   os.Getenv("STORAGE_API_KEY"),
			Timeout:  storageTimeout,
		},
		MaxUploadBytes: maxUpload,
	}
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
