package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	LogLevel    string

	// StoreBackend selects the persistence adapter: memory, db or redis.
	StoreBackend string

	// DatabaseURL is a postgres DSN or a sqlite file path.
	DatabaseURL string

	RedisAddr string

	KafkaBrokers []string

	SessionSecret []byte
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		ServiceName:   EnvDefault("SERVICE_NAME", "storefront"),
		LogLevel:      EnvDefault("LOG_LEVEL", "info"),
		StoreBackend:  EnvDefault("STORE_BACKEND", "memory"),
		DatabaseURL:   EnvDefault("DATABASE_URL", "storefront.db"),
		RedisAddr:     EnvDefault("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:  CSV(os.Getenv("KAFKA_BROKERS")),
		SessionSecret: []byte(EnvDefault("SESSION_SECRET", "dev-session-secret")),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}
