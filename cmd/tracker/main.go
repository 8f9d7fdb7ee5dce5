// Command tracker runs the HTTP API: auth, categories, incomes, expenses
// with receipts, and the summary endpoints.
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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/amqp"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/auth"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/config"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/httpapi"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/receipts"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/services"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
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

	receiptStore, err := receipts.NewStore(cfg.UploadsDir)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	// The queue is optional: without it expenses are still saved and the
	// worker's periodic sweep picks them up from export_status.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("AMQP unavailable, continuing without event publication", "error", err)
		} else {
			defer client.Close()
			events = client
		}
	}

	expenseService := services.NewExpenseService(repo, receiptStore, events)
	server := httpapi.NewServer(repo, expenseService, receiptStore, tokens)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Server stopped")
	return nil
}
