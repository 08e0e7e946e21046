// Package main is the entry point for the bookkeeping HTTP API server.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/api"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/events"
	eventskafka "github.com/shunichi-ikebuchi/bookkeeping/internal/events/kafka"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage/postgres"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage/sqlite"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/config"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/db"
)

func main() {
	// Setup structured JSON logging.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	slog.Info("store initialized", "driver", cfg.Database.Driver)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := eventskafka.NewPublisher(cfg.Kafka.Brokers)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				slog.Error("failed to close kafka publisher", "error", err)
			}
		}()
		publisher = kafkaPublisher
		slog.Info("event publishing enabled", "brokers", cfg.Kafka.Brokers)
	}

	registry := ledger.NewAccountRegistry(store)
	manager := ledger.NewTransactionManager(store, publisher)
	reports := ledger.NewReportGenerator(store)

	r := api.NewRouter(registry, manager, reports)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("starting bookkeeping API server", "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		if err := server.Close(); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// openStore builds the configured LedgerStore and returns its closer.
func openStore(cfg *config.Config) (storage.LedgerStore, func() error, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		handle, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := handle.Ping(); err != nil {
			handle.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		store := postgres.New(handle)
		if err := store.InitializeSchema(context.Background()); err != nil {
			handle.Close()
			return nil, nil, err
		}
		return store, handle.Close, nil
	default:
		conn, err := db.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.New(conn), conn.Close, nil
	}
}
