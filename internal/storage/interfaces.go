package storage

import (
	"context"
	"fmt"
	"regexp"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
)

// DefaultListingsTable is the table created by the embedded migrations.
const DefaultListingsTable = "auction_listings"

// ListingStore provides access to auction_listings storage.
// Every store is also a dataset.Source: Load reads the whole table.
type ListingStore interface {
	dataset.Source

	// InsertListings appends listings. Listings are never updated.
	InsertListings(ctx context.Context, listings []domain.Listing) error

	// CountListings returns the number of stored listings.
	CountListings(ctx context.Context) (int, error)
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateTableName accepts "table" and "schema.table" made of plain
// identifiers. Table names are interpolated into queries, so nothing else
// is allowed.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: table name %q", ErrInvalidInput, name)
	}
	return nil
}
