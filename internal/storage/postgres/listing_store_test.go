package postgres_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/fixtures"
	"auction-advisor/internal/storage"
	pgstore "auction-advisor/internal/storage/postgres"
)

func TestListingStore_RoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store, err := pgstore.NewListingStore(pool, storage.DefaultListingsTable)
	require.NoError(t, err)

	listings, err := dataset.ReadListings(bytes.NewReader(fixtures.ListingsCSV()))
	require.NoError(t, err)
	require.NoError(t, store.InsertListings(ctx, listings))

	n, err := store.CountListings(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(listings), n)

	fromDB, err := dataset.LoadStatistics(ctx, store)
	require.NoError(t, err)

	src, err := fixtures.Source()
	require.NoError(t, err)
	fromCSV, err := dataset.LoadStatistics(ctx, src)
	require.NoError(t, err)

	assert.Equal(t, fromCSV.Latitude, fromDB.Latitude)
	assert.Equal(t, fromCSV.Longitude, fromDB.Longitude)
	assert.Equal(t, fromCSV.Views, fromDB.Views)
	assert.Equal(t, fromCSV.Watchers, fromDB.Watchers)
	assert.Equal(t, fromCSV.Comments, fromDB.Comments)
	assert.Equal(t, fromCSV.Accidents, fromDB.Accidents)
	assert.Equal(t, fromCSV.Rows, fromDB.Rows)
}

func TestListingStore_MissingTable(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store, err := pgstore.NewListingStore(pool, "no_such_table")
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewListingStore_RejectsBadTable(t *testing.T) {
	_, err := pgstore.NewListingStore(nil, "listings;--")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
