package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/storage"
)

// ListingStore implements storage.ListingStore using PostgreSQL.
type ListingStore struct {
	pool  *Pool
	table string
}

// NewListingStore creates a new ListingStore reading and writing table.
func NewListingStore(pool *Pool, table string) (*ListingStore, error) {
	if err := storage.ValidateTableName(table); err != nil {
		return nil, err
	}
	return &ListingStore{pool: pool, table: table}, nil
}

// Compile-time interface check.
var _ storage.ListingStore = (*ListingStore)(nil)

// Name returns a description for logs.
func (s *ListingStore) Name() string {
	return "postgres:" + s.table
}

// InsertListings copies listings into the table in one COPY round trip.
func (s *ListingStore) InsertListings(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	_, err := s.pool.CopyFrom(ctx, identifier(s.table), domain.ListingColumns,
		pgx.CopyFromSlice(len(listings), func(i int) ([]any, error) {
			return listings[i].Cells(), nil
		}),
	)
	if err != nil {
		if isUndefinedTableError(err) {
			return fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return fmt.Errorf("copy listings: %w", err)
	}
	return nil
}

// CountListings returns the number of stored listings.
func (s *ListingStore) CountListings(ctx context.Context) (int, error) {
	var n int64
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+identifier(s.table).Sanitize()).Scan(&n)
	if err != nil {
		if isUndefinedTableError(err) {
			return 0, fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return int(n), nil
}

// Load reads every column of the table. Columns that are NULL in every row
// are dropped so they read as absent.
func (s *ListingStore) Load(ctx context.Context) (*dataset.Table, error) {
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+identifier(s.table).Sanitize())
	if err != nil {
		if isUndefinedTableError(err) {
			return nil, fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}

	b := dataset.NewBuilder(header)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		for i, v := range values {
			values[i] = cellValue(v)
		}
		if err := b.Append(values); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTableError(err) {
			return nil, fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return b.Table().Compact(), nil
}

// cellValue turns NUMERIC columns into float64; other values pass through.
func cellValue(v any) any {
	n, ok := v.(pgtype.Numeric)
	if !ok {
		return v
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return nil
	}
	return f.Float64
}
