package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker-api/internal/config"
	"github.com/BuzzLyutic/task-tracker-api/internal/handler"
	"github.com/BuzzLyutic/task-tracker-api/internal/service"
	"github.com/BuzzLyutic/task-tracker-api/internal/telemetry"
	"github.com/BuzzLyutic/task-tracker-api/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Подключаем логгер
		logger, _ := zap.NewProduction()
		defer logger.Sync()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.OTLPEndpoint != "" {
			tp, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
			if err != nil {
				return err
			}
			defer tp.Shutdown(context.Background())

			mp, err := telemetry.InitMeterProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
			if err != nil {
				return err
			}
			defer mp.Shutdown(context.Background())
		}

		store, closeStore, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		taskService := service.NewTaskService(store,
			service.WithLogger(logger),
			service.WithTextMatch(cfg.TextMatch),
		)
		taskHandler := handler.NewTaskHandler(taskService, logger)

		metrics, err := telemetry.NewMetrics(otel.Meter(cfg.ServiceName), func(ctx context.Context) (int, error) {
			return taskService.Count(ctx, nil)
		})
		if err != nil {
			return err
		}

		r := chi.NewRouter() // Создаем роутер
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(metrics.Middleware)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `{"status":"ok"}`)
		})
		r.Mount("/api/tasks", taskHandler.Routes())

		srv := http.Server{
			Addr: ":" + cfg.Port,
			Handler: otelhttp.NewHandler(r, "http-server",
				otelhttp.WithFilter(func(r *http.Request) bool {
					return r.URL.Path != "/health"
				}),
			),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		if cfg.StatsInterval > 0 {
			reporter := worker.NewReporter(taskService, logger, cfg.StatsInterval)
			reporter.Start(ctx)
			defer reporter.Stop()
		}

		serveErr := make(chan error, 1)
		go func() { // Запуск сервера и обработка ошибок
			logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serveErr <- err
			}
			close(serveErr)
		}()

		// Graceful shutdown
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
		}

		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		logger.Info("Server stopped successfully!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
