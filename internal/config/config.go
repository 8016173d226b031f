package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	infraconfig "fxledger-service/internal/infrastructure/config"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	Storage     string
	DatabaseURL string
	// Quotes
	QuoteCache   string
	QuoteTTL     time.Duration
	FetchTimeout time.Duration
	// Provider
	Provider           string
	AlphaVantageBase   string
	AlphaVantageAPIKey string
	FakeRate           string
	ProviderRatePerMin int
	ProviderBurst      int
	ProviderMaxRetries int
	// Redis (quote cache, idempotency)
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	IdempotencyBackend string
	IdempotencyTTL     time.Duration
	// Balance events
	KafkaBrokers []string
	KafkaTopic   string
	EventBuffer  int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnv("PORT", infraconfig.DefaultHTTPPort),
		Storage:            getEnv("STORAGE", "memory"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		QuoteCache:         getEnv("QUOTE_CACHE", "memory"),
		QuoteTTL:           time.Duration(atoiDef(getEnv("QUOTE_TTL_MS", "3000000"), 3000000)) * time.Millisecond,
		FetchTimeout:       time.Duration(atoiDef(getEnv("FETCH_TIMEOUT_MS", "10000"), 10000)) * time.Millisecond,
		Provider:           getEnv("PROVIDER", "fake"),
		AlphaVantageBase:   getEnv("ALPHAVANTAGE_BASE", "https://www.alphavantage.co"),
		AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
		FakeRate:           getEnv("FAKE_RATE", "1.2345"),
		ProviderRatePerMin: atoiDef(getEnv("PROVIDER_RATE_PER_MIN", "5"), 5),
		ProviderBurst:      atoiDef(getEnv("PROVIDER_BURST", "5"), 5),
		ProviderMaxRetries: atoiDef(getEnv("PROVIDER_MAX_RETRIES", "0"), 0),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		IdempotencyBackend: getEnv("IDEMPOTENCY_BACKEND", "none"),
		IdempotencyTTL:     time.Duration(atoiDef(getEnv("IDEMPOTENCY_TTL_MS", "86400000"), 86400000)) * time.Millisecond,
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "balance-events"),
		EventBuffer:        atoiDef(getEnv("EVENT_BUFFER", "1024"), 1024),
	}
}
