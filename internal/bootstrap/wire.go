//go:build wireinject

package bootstrap

import (
	"context"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideStores,
	ProvideRedisClient,
	ProvideQuoteStore,
	ProvideIdempotency,
	ProvideRateFetcher,
	ProvidePublisher,
	ProvideQueue,
)

var appSet = wire.NewSet(
	ProvideQuoteCache,
	ProvideQuoteService,
	ProvideLedger,
	ProvideWorker,
	ProvideServer,
	ProvideApp,
)

// InitApp builds the API server and the balance event worker.
func InitApp(ctx context.Context) (*App, func(), error) {
	wire.Build(infraSet, appSet)
	return nil, nil, nil
}
