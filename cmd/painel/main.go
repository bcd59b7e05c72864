package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/painel-vendas/painel/internal/app"
	"github.com/painel-vendas/painel/internal/observability"
	"github.com/painel-vendas/painel/internal/sales"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, closeStore, err := app.NewGoalStore(ctx, cfg, metrics)
	if err != nil {
		logger.Error("open goal store", slog.Any("error", err), slog.String("source", cfg.GoalSource()))
		os.Exit(1)
	}
	defer closeStore()

	service := sales.NewService(app.NewInvoicingClient(cfg, metrics), store)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		SalesHandler: sales.NewHandler(logger, service),
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", server.Addr), slog.String("goal_source", cfg.GoalSource()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
