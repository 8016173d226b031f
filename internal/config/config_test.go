package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"QUOTE_TTL_MS", "STORAGE", "PROVIDER", "KAFKA_BROKERS", "PROVIDER_RATE_PER_MIN"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	require.Equal(t, 3000000*time.Millisecond, cfg.QuoteTTL)
	require.Equal(t, "memory", cfg.Storage)
	require.Equal(t, "fake", cfg.Provider)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, 5, cfg.ProviderRatePerMin)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QUOTE_TTL_MS", "1500")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REDIS_DB", "not-a-number")
	cfg := Load()
	require.Equal(t, 1500*time.Millisecond, cfg.QuoteTTL)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 0, cfg.RedisDB)
}
