package clickhouse

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/storage"
)

// ListingStore implements storage.ListingStore using ClickHouse.
type ListingStore struct {
	conn  *Conn
	table string
}

// NewListingStore creates a new ListingStore reading and writing table.
func NewListingStore(conn *Conn, table string) (*ListingStore, error) {
	if err := storage.ValidateTableName(table); err != nil {
		return nil, err
	}
	return &ListingStore{conn: conn, table: table}, nil
}

// Compile-time interface check.
var _ storage.ListingStore = (*ListingStore)(nil)

// Name returns a description for logs.
func (s *ListingStore) Name() string {
	return "clickhouse:" + s.table
}

// InsertListings appends listings in a single batch.
func (s *ListingStore) InsertListings(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s (%s)",
		s.table, strings.Join(domain.ListingColumns, ", ")))
	if err != nil {
		if isUnknownTableError(err) {
			return fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i := range listings {
		l := &listings[i]
		args := make([]any, 0, len(domain.ListingColumns))
		for _, t := range l.Text() {
			args = append(args, *t)
		}
		// Nullable(Float64) columns take *float64 directly.
		for _, n := range l.Numbers() {
			args = append(args, *n)
		}
		if err := batch.Append(args...); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// CountListings returns the number of stored listings.
func (s *ListingStore) CountListings(ctx context.Context) (int, error) {
	var n uint64
	if err := s.conn.QueryRow(ctx, "SELECT count() FROM "+s.table).Scan(&n); err != nil {
		if isUnknownTableError(err) {
			return 0, fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return int(n), nil
}

// Load reads every column of the table. Each column is scanned into its
// driver scan type; columns that are NULL in every row are dropped.
func (s *ListingStore) Load(ctx context.Context) (*dataset.Table, error) {
	rows, err := s.conn.Query(ctx, "SELECT * FROM "+s.table)
	if err != nil {
		if isUnknownTableError(err) {
			return nil, fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	types := rows.ColumnTypes()
	b := dataset.NewBuilder(rows.Columns())

	dest := make([]any, len(types))
	for rows.Next() {
		for i, ct := range types {
			dest[i] = reflect.New(ct.ScanType()).Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		if err := b.Append(dest); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return b.Table().Compact(), nil
}
