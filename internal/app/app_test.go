package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"auction-advisor/internal/config"
	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/fixtures"
	"auction-advisor/internal/storage"
)

func TestLoadAdvisor_Fixtures(t *testing.T) {
	cfg := config.Default()
	cfg.Dataset.Source = config.SourceFixtures

	a, err := LoadAdvisor(context.Background(), cfg, "test", zap.NewNop())
	require.NoError(t, err)

	est, err := a.Estimate(context.Background(), domain.DefaultEstimateRequest())
	require.NoError(t, err)
	assert.Equal(t, "$132,000", est.PriceText)
	assert.Equal(t, 8100.0, a.Statistics().Views)
}

func TestLoadAdvisor_CSV(t *testing.T) {
	csvPath, modelPath, err := fixtures.WriteFiles(t.TempDir())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Dataset.Path = csvPath
	cfg.Model.URI = modelPath

	a, err := LoadAdvisor(context.Background(), cfg, "test", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 34.1, a.Statistics().Latitude)
}

func TestLoadAdvisor_MissingModel(t *testing.T) {
	csvPath, _, err := fixtures.WriteFiles(t.TempDir())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Dataset.Path = csvPath
	cfg.Model.URI = filepath.Join(t.TempDir(), "missing.json")

	_, err = LoadAdvisor(context.Background(), cfg, "test", zap.NewNop())
	require.Error(t, err)
}

func TestOpenListingStore_SQLiteMatchesCSV(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatasetConfig{
		Source:     config.SourceSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "listings.db"),
		Table:      config.DefaultTable,
	}

	store, closeStore, err := OpenListingStore(ctx, cfg, true)
	require.NoError(t, err)
	listings, err := dataset.ReadListings(bytes.NewReader(fixtures.ListingsCSV()))
	require.NoError(t, err)
	require.NoError(t, store.InsertListings(ctx, listings))
	closeStore()

	src, closeSource, err := OpenSource(ctx, cfg)
	require.NoError(t, err)
	defer closeSource()

	got, err := dataset.LoadStatistics(ctx, src)
	require.NoError(t, err)

	fixtureSrc, err := fixtures.Source()
	require.NoError(t, err)
	want, err := dataset.LoadStatistics(ctx, fixtureSrc)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestOpenListingStore_Fixtures(t *testing.T) {
	store, closeStore, err := OpenListingStore(context.Background(), config.DatasetConfig{Source: config.SourceFixtures}, false)
	require.NoError(t, err)
	defer closeStore()

	n, err := store.CountListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}

func TestOpenListingStore_CSVHasNoStore(t *testing.T) {
	_, closeStore, err := OpenListingStore(context.Background(), config.DatasetConfig{Source: config.SourceCSV}, false)
	require.Error(t, err)
	closeStore()
}

func TestOpenListingStore_MigrateRejectsOtherTable(t *testing.T) {
	for _, source := range []string{config.SourceSQLite, config.SourcePostgres, config.SourceClickHouse} {
		t.Run(source, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "listings.db")
			cfg := config.DatasetConfig{
				Source:        source,
				SQLitePath:    path,
				PostgresDSN:   "postgres://nobody@127.0.0.1:1/none",
				ClickHouseDSN: "clickhouse://127.0.0.1:1/none",
				Table:         "other_listings",
			}

			_, closeStore, err := OpenListingStore(context.Background(), cfg, true)
			closeStore()
			require.ErrorIs(t, err, storage.ErrInvalidInput)
			assert.Contains(t, err.Error(), storage.DefaultListingsTable)

			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "nothing is opened before the check")
		})
	}
}

func TestOpenListingStore_OtherTableWithoutMigrate(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatasetConfig{
		Source:     config.SourceSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "listings.db"),
		Table:      config.DefaultTable,
	}
	_, closeStore, err := OpenListingStore(ctx, cfg, true)
	require.NoError(t, err)
	closeStore()

	// Without -migrate another table is taken as already provisioned.
	cfg.Table = "other_listings"
	store, closeStore, err := OpenListingStore(ctx, cfg, false)
	require.NoError(t, err)
	defer closeStore()
	_, err = store.CountListings(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
