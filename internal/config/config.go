package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; DATABASE_URL and JWT_SECRET are
// required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Auth: HMAC secret shared with the main application's token issuer.
	JWTSecret string

	// Realtime: hold-down before a user is announced offline.
	PresenceDebounce time.Duration

	// Mail provider
	MailBaseURL string
	MailAPIKey  string
	MailTimeout time.Duration

	// Rate limiting: maximum mail provider calls per second
	MailRateLimit int

	// Delivery queues: total attempts per job and hold-back between them
	QueueMaxAttempts int
	QueueRetryDelay  time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		JWTSecret: jwtSecret,

		PresenceDebounce: getDuration("PRESENCE_DEBOUNCE", 2*time.Second),

		MailBaseURL: getEnv("MAIL_BASE_URL", "https://api.mail.example.com"),
		MailAPIKey:  getEnv("MAIL_API_KEY", ""),
		MailTimeout: getDuration("MAIL_TIMEOUT", 10*time.Second),

		MailRateLimit: getInt("MAIL_RATE_LIMIT", 10),

		QueueMaxAttempts: getInt("QUEUE_MAX_ATTEMPTS", 3),
		QueueRetryDelay:  getDuration("QUEUE_RETRY_DELAY", 5*time.Second),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
