package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/applitech/orders-service/internal/catalog"
	"github.com/applitech/orders-service/internal/messaging"
	"github.com/applitech/orders-service/internal/telemetry"
	"github.com/applitech/orders-service/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	threshold := 5
	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			logger.Error("LOW_STOCK_THRESHOLD must be a number", "error", err)
			os.Exit(1)
		}
		threshold = parsed
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	brokers := strings.Split(kafkaBrokers, ",")
	consumer := messaging.NewConsumer(brokers, messaging.TopicOrderCreated, "stock-monitor")
	defer func() { _ = consumer.Close() }()

	monitor := worker.NewStockMonitor(catalog.NewRepository(db), threshold, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting stock monitor", "brokers", brokers, "threshold", threshold)

	if err := consumer.Consume(ctx, monitor.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
