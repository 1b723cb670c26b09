// Package app turns a resolved configuration into the stores, dataset
// sources and Advisor used by the binaries.
package app

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"auction-advisor/internal/advisor"
	"auction-advisor/internal/config"
	"auction-advisor/internal/dataset"
	"auction-advisor/internal/fixtures"
	"auction-advisor/internal/logging"
	"auction-advisor/internal/predictor"
	"auction-advisor/internal/storage"
	chstore "auction-advisor/internal/storage/clickhouse"
	"auction-advisor/internal/storage/memory"
	"auction-advisor/internal/storage/migrations"
	pgstore "auction-advisor/internal/storage/postgres"
	"auction-advisor/internal/storage/sqlite"
)

// OpenListingStore connects to the store selected by cfg.Source. When
// migrate is set the embedded migrations are applied first. The returned
// cleanup closes the connection.
//
// The fixtures source opens an in-memory store preloaded with the bundled
// listings. The csv source has no store.
//
// The migrations only create storage.DefaultListingsTable, so migrating
// while cfg.Table names another table is rejected before connecting.
func OpenListingStore(ctx context.Context, cfg config.DatasetConfig, migrate bool) (storage.ListingStore, func(), error) {
	noop := func() {}

	if migrate && cfg.Table != storage.DefaultListingsTable {
		switch cfg.Source {
		case config.SourcePostgres, config.SourceClickHouse, config.SourceSQLite:
			return nil, noop, fmt.Errorf("%w: migrations create %q, not %q; drop -migrate or use the default table",
				storage.ErrInvalidInput, storage.DefaultListingsTable, cfg.Table)
		}
	}

	switch cfg.Source {
	case config.SourcePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to postgres: %w", err)
		}
		if migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, noop, err
			}
		}
		store, err := pgstore.NewListingStore(pool, cfg.Table)
		if err != nil {
			pool.Close()
			return nil, noop, err
		}
		return store, pool.Close, nil

	case config.SourceClickHouse:
		var (
			conn *chstore.Conn
			err  error
		)
		if migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.ClickHouseDSN)
		}
		if err != nil {
			return nil, noop, fmt.Errorf("connect to clickhouse: %w", err)
		}
		store, err := chstore.NewListingStore(conn, cfg.Table)
		if err != nil {
			conn.Close()
			return nil, noop, err
		}
		return store, func() { conn.Close() }, nil

	case config.SourceSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		if migrate {
			if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
				db.Close()
				return nil, noop, err
			}
		}
		store, err := sqlite.NewListingStore(db, cfg.Table)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		return store, func() { db.Close() }, nil

	case config.SourceFixtures:
		listings, err := dataset.ReadListings(bytes.NewReader(fixtures.ListingsCSV()))
		if err != nil {
			return nil, noop, fmt.Errorf("parse bundled listings: %w", err)
		}
		store := memory.NewListingStore()
		if err := store.InsertListings(ctx, listings); err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	default:
		return nil, noop, fmt.Errorf("dataset source %q has no listing store", cfg.Source)
	}
}

// OpenSource returns the dataset source selected by cfg.Source.
func OpenSource(ctx context.Context, cfg config.DatasetConfig) (dataset.Source, func(), error) {
	switch cfg.Source {
	case config.SourceCSV:
		return dataset.NewCSVSource(cfg.Path), func() {}, nil
	case config.SourceFixtures:
		src, err := fixtures.Source()
		return src, func() {}, err
	default:
		return OpenListingStore(ctx, cfg, false)
	}
}

// LoadAdvisor reads the training statistics and the model selected by cfg.
// The dataset connection is closed once statistics are computed. With the
// fixtures source the bundled model is used regardless of cfg.Model.URI.
func LoadAdvisor(ctx context.Context, cfg config.Config, surface string, logger *zap.Logger) (*advisor.Advisor, error) {
	src, closeSource, err := OpenSource(ctx, cfg.Dataset)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	modelURI := cfg.Model.URI
	if cfg.Dataset.Source == config.SourceFixtures {
		dir, err := os.MkdirTemp("", "auction-advisor-fixtures-")
		if err != nil {
			return nil, fmt.Errorf("create fixtures dir: %w", err)
		}
		defer os.RemoveAll(dir)

		_, modelURI, err = fixtures.WriteFiles(dir)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("loading advisor",
		zap.String("dataset", src.Name()),
		zap.String("model", modelURI),
		zap.String("surface", surface),
	)

	return advisor.Load(ctx, advisor.LoadOptions{
		Source:   src,
		ModelURI: modelURI,
		ClientOptions: []predictor.ClientOption{
			predictor.WithTimeout(cfg.Model.Timeout),
			predictor.WithMaxRetries(cfg.Model.MaxRetries),
		},
		Timing:  cfg.Timing,
		Surface: surface,
		Logger:  logging.Std(logger, "advisor"),
	})
}
