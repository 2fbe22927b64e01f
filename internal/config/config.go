package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every externally tunable knob. It is built once in main and
// passed down explicitly; no package reads the environment on its own.
type Config struct {
	HTTPPort string

	MongoURI string
	MongoDB  string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool

	KafkaBrokers []string
	KafkaTopic   string

	AuditWorkers   int
	AuditBatchSize int
	AuditFlushWait time.Duration
}

// Load reads a .env file when one is present (cwd or up to two parents) and
// assembles the config from the environment.
func Load() Config {
	loadDotEnv()

	return Config{
		HTTPPort: getEnv("HTTP_PORT", "9000"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "shipway"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenTTL:     getDuration("TOKEN_TTL", 24*time.Hour),
		CookieSecure: getBool("COOKIE_SECURE", false),

		KafkaBrokers: getList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "audit_logs"),

		AuditWorkers:   getInt("AUDIT_WORKERS", 2),
		AuditBatchSize: getInt("AUDIT_BATCH_SIZE", 5),
		AuditFlushWait: getDuration("AUDIT_FLUSH_WAIT", 500*time.Millisecond),
	}
}

func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}

	candidates := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}
	for _, path := range candidates {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
