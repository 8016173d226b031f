package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fxledger-service/internal/application"
	"fxledger-service/internal/config"
	infraconfig "fxledger-service/internal/infrastructure/config"
	httpserver "fxledger-service/internal/infrastructure/http"
	"fxledger-service/internal/infrastructure/httpx"
	kafkapub "fxledger-service/internal/infrastructure/kafka"
	"fxledger-service/internal/infrastructure/logx"
	"fxledger-service/internal/infrastructure/memory"
	"fxledger-service/internal/infrastructure/pg"
	"fxledger-service/internal/infrastructure/provider"
	redisstore "fxledger-service/internal/infrastructure/redis"
	"fxledger-service/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrMissingDBURL  = errors.New("DATABASE_URL is required for STORAGE=pg")
	ErrMissingAPIKey = errors.New("ALPHAVANTAGE_API_KEY is required for PROVIDER=alphavantage")
)

// Stores groups the persistence adapters selected by STORAGE.
type Stores struct {
	Accounts application.AccountStore
	Journal  application.QuoteJournal
	Ping     func(ctx context.Context) error
}

// App is everything cmd/api needs to run.
type App struct {
	Config config.Config
	Log    *zap.Logger
	Server *httpserver.Server
	Worker *worker.ChanWorker
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideStores(ctx context.Context, log *zap.Logger, cfg config.Config) (Stores, func(), error) {
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Stores{}, func() {}, ErrMissingDBURL
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Stores{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return Stores{}, func() {}, err
		}
		accounts := pg.NewAccountStore(db)
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return Stores{Accounts: accounts, Journal: pg.NewQuoteJournal(db), Ping: accounts.Ping}, cleanup, nil
	case "memory", "":
		accounts := memory.NewAccountStore()
		return Stores{Accounts: accounts, Journal: memory.NewQuoteJournal(), Ping: accounts.Ping}, func() {}, nil
	default:
		return Stores{}, func() {}, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

// ProvideRedisClient returns nil when no component is configured to use Redis.
func ProvideRedisClient(cfg config.Config) (*redis.Client, func(), error) {
	if cfg.QuoteCache != "redis" && cfg.IdempotencyBackend != "redis" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }, nil
}

func ProvideQuoteStore(cfg config.Config, client *redis.Client) (application.QuoteStore, error) {
	switch cfg.QuoteCache {
	case "redis":
		return redisstore.NewQuoteStore(client), nil
	case "memory", "":
		return memory.NewQuoteStore(), nil
	default:
		return nil, fmt.Errorf("unsupported QUOTE_CACHE=%q", cfg.QuoteCache)
	}
}

func ProvideIdempotency(cfg config.Config, client *redis.Client) application.IdempotencyStore {
	if cfg.IdempotencyBackend != "redis" {
		return application.NoopIdempotency{}
	}
	return redisstore.NewIdempotencyStore(client, cfg.IdempotencyTTL)
}

func ProvideRateFetcher(cfg config.Config, log *zap.Logger) (application.RateFetcher, error) {
	var upstream application.RateFetcher
	switch cfg.Provider {
	case "alphavantage":
		if cfg.AlphaVantageAPIKey == "" {
			return nil, ErrMissingAPIKey
		}
		upstream = provider.NewRateLimited(&provider.AlphaVantage{
			BaseURL: cfg.AlphaVantageBase,
			APIKey:  cfg.AlphaVantageAPIKey,
			Client: &httpx.Client{
				HTTP:      &http.Client{Timeout: infraconfig.DefaultProviderTimeout},
				UserAgent: "fxledger-service",
			},
		}, cfg.ProviderRatePerMin, cfg.ProviderBurst)
	case "fake", "":
		fake, err := provider.NewFake(cfg.FakeRate)
		if err != nil {
			return nil, fmt.Errorf("FAKE_RATE: %w", err)
		}
		upstream = fake
	default:
		return nil, fmt.Errorf("unsupported PROVIDER=%q", cfg.Provider)
	}
	return provider.WithRetry(upstream, cfg.ProviderMaxRetries, log), nil
}

func ProvideQuoteCache(store application.QuoteStore, cfg config.Config, log *zap.Logger) *application.QuoteCache {
	return application.NewQuoteCache(store,
		application.WithFetchTimeout(cfg.FetchTimeout),
		application.WithCacheLogger(log),
	)
}

func ProvideQuoteService(cache *application.QuoteCache, fetcher application.RateFetcher, s Stores, cfg config.Config, log *zap.Logger) *application.QuoteService {
	return application.NewQuoteService(cache, fetcher, cfg.QuoteTTL,
		application.WithJournal(s.Journal),
		application.WithLogger(log),
	)
}

func ProvidePublisher(cfg config.Config, log *zap.Logger) (worker.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return kafkapub.LogPublisher{Log: log}, func() {}
	}
	p := kafkapub.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn("closing kafka writer", zap.Error(err))
		}
	}
}

func ProvideQueue(cfg config.Config, log *zap.Logger) *worker.Queue {
	return worker.NewQueue(cfg.EventBuffer, log)
}

func ProvideLedger(s Stores, q *worker.Queue, log *zap.Logger) *application.Ledger {
	return application.NewLedger(s.Accounts,
		application.WithEvents(q),
		application.WithLedgerLogger(log),
	)
}

func ProvideWorker(pub worker.Publisher, q *worker.Queue) *worker.ChanWorker {
	return worker.NewChanWorker(pub, q.Events())
}

func ProvideServer(quotes *application.QuoteService, ledger *application.Ledger, idem application.IdempotencyStore, s Stores) *httpserver.Server {
	srv := httpserver.NewServer(quotes, ledger, idem)
	srv.SetReadyCheck(s.Ping)
	return srv
}

func ProvideApp(cfg config.Config, log *zap.Logger, srv *httpserver.Server, w *worker.ChanWorker) *App {
	return &App{Config: cfg, Log: log, Server: srv, Worker: w}
}
