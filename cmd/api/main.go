package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fxledger-service/internal/bootstrap"
	infraconfig "fxledger-service/internal/infrastructure/config"
	httpserver "fxledger-service/internal/infrastructure/http"
	"fxledger-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.InitApp(ctx)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer cleanup()

	// The worker outlives the request context so it can flush after the server drains.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		app.Worker.Start(workerCtx)
		close(workerDone)
	}()

	addr := ":" + app.Config.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           httpserver.NewRouter(app.Server),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server started",
			zap.String("addr", addr),
			zap.String("env", app.Config.Env),
			zap.String("storage", app.Config.Storage),
			zap.String("quote_cache", app.Config.QuoteCache),
			zap.String("provider", app.Config.Provider),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	stopWorker()
	<-workerDone
	logger.Info("server stopped")
}
