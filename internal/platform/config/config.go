package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisAddr     string
	JWTSigningKey string
	TokenTTL      time.Duration
	UploadDir     string
	// AuditBrokers is empty when audit events stay local (postgres only).
	AuditBrokers []string
	AuditTopic   string
	// SecureCookies must be on behind TLS; off only for local development.
	SecureCookies bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("LOCALITY_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:      durationOr("TOKEN_TTL", 12*time.Hour),
		UploadDir:     envOr("UPLOAD_DIR", "uploads/members"),
		AuditTopic:    envOr("AUDIT_TOPIC", "locality.audit"),
		SecureCookies: envOr("SECURE_COOKIES", "true") == "true",
	}
	if brokers := os.Getenv("AUDIT_BROKERS"); brokers != "" {
		cfg.AuditBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
