// Command tracker-worker mirrors expenses into a Google Sheet. It consumes
// queue events when AMQP is configured and always runs the periodic sweep
// over rows whose export is still pending.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/amqp"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/config"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/sheets/google"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/storage"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter, err := google.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	exportWorker := worker.NewExportWorker(repo, exporter, cfg.ExportBatchSize)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer client.Close()

		g.Go(func() error {
			return client.ConsumeExpenseEvents(ctx, func(msg *amqp.ExpenseEventMessage) error {
				return exportWorker.HandleEvent(ctx, *msg)
			})
		})
	} else {
		slog.Warn("AMQP not configured, relying on the periodic sweep only")
	}

	g.Go(func() error {
		slog.Info("Starting export sweep", "interval", cfg.ExportInterval, "batch_size", cfg.ExportBatchSize)
		return exportWorker.RunSweep(ctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Worker stopped")
	return nil
}
