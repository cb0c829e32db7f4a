package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/letsssgooo/lessonquiz/internal/api"
	"github.com/letsssgooo/lessonquiz/internal/config"
	"github.com/letsssgooo/lessonquiz/internal/engine"
	"github.com/letsssgooo/lessonquiz/internal/events/publisher"
	"github.com/letsssgooo/lessonquiz/internal/lib/slogcustom"
	"github.com/letsssgooo/lessonquiz/internal/metrics"
	"github.com/letsssgooo/lessonquiz/internal/storage"
	"github.com/letsssgooo/lessonquiz/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := setupLogger(cfg.LogLevel)
	slog.SetDefault(log)
	slog.Info("starting quiz server...", slog.String("addr", cfg.HTTPAddr))

	if err := run(cfg, log); err != nil {
		log.Error("quiz server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var store storage.Storage
	if cfg.DatabaseDSN != "" {
		pg, err := postgres.NewStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			return err
		}

		store = pg
		log.Info("using postgres storage")
	} else {
		store = storage.NewMemoryStorage()
		log.Warn("database is not configured, results are kept in memory")
	}

	// Reporters
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	reporters := engine.Reporters{storage.NewReporter(store), m}

	if cfg.AMQPURL != "" {
		pub, err := publisher.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer pub.Close()

		reporters = append(reporters, pub)
		log.Info("publishing quiz events", slog.String("exchange", cfg.AMQPExchange))
	} else {
		log.Info("RabbitMQ is not configured, quiz events will not be published")
	}

	e := engine.NewEngine(store,
		engine.WithReporter(reporters),
		engine.WithLogger(log),
	)

	if cfg.QuizDir != "" {
		if err := loadQuizzes(ctx, e, cfg.QuizDir); err != nil {
			return err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewHandler(e, store, log), prometheus.DefaultGatherer)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", slog.Any("err", err))
	}

	return e.Shutdown(shutdownCtx)
}

// loadQuizzes загружает все *.json файлы каталога.
func loadQuizzes(ctx context.Context, e *engine.Engine, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		if _, err := e.LoadQuiz(ctx, data); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	return nil
}

func setupLogger(level slog.Level) *slog.Logger {
	return slog.New(slogcustom.NewCustomHandler(os.Stdout, level))
}
