// Package main loads the training CSV into a database table so the server
// can read its statistics from a database source.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-advisor/internal/app"
	"auction-advisor/internal/config"
	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/logging"
	"auction-advisor/internal/storage"
)

func main() {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	input := flags.String("input", "", "CSV file to load (defaults to --data)")
	batchSize := flags.Int("batch-size", 1000, "Listings per insert batch")
	migrate := flags.Bool("migrate", true, "Apply the embedded migrations first (default table only)")

	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	zl, err := logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer zl.Sync()
	logger := logging.Std(zl, "ingest")

	if cfg.Dataset.Source == config.SourceCSV || cfg.Dataset.Source == config.SourceFixtures {
		logger.Fatalf("--dataset-source must be postgres, clickhouse or sqlite, got %s", cfg.Dataset.Source)
	}
	if *input == "" {
		*input = cfg.Dataset.Path
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	listings, err := readListings(*input)
	if err != nil {
		logger.Fatalf("Failed to read listings: %v", err)
	}
	logger.Printf("Read %d listings from %s", len(listings), *input)

	store, closeStore, err := app.OpenListingStore(ctx, cfg.Dataset, *migrate)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.Dataset.Source, err)
	}
	defer closeStore()

	start := time.Now()
	if err := ingest(ctx, store, listings, *batchSize, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Println("Ingest cancelled")
			return
		}
		logger.Fatalf("Ingest failed: %v", err)
	}

	total, err := store.CountListings(ctx)
	if err != nil {
		logger.Fatalf("Failed to count listings: %v", err)
	}
	logger.Printf("Loaded %d listings into %s in %v (%d rows in table)", len(listings), store.Name(), time.Since(start), total)
}

func readListings(path string) ([]domain.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataset.ReadListings(f)
}

// ingest inserts listings in batches of batchSize.
func ingest(ctx context.Context, store storage.ListingStore, listings []domain.Listing, batchSize int, logger *log.Logger) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	for start := 0; start < len(listings); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batchSize, len(listings))
		if err := store.InsertListings(ctx, listings[start:end]); err != nil {
			return fmt.Errorf("insert listings %d-%d: %w", start, end, err)
		}
		logger.Printf("Inserted listings %d-%d", start, end)
	}
	return nil
}
