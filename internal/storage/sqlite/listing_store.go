package sqlite

import (
	"context"
	"fmt"
	"strings"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/storage"
)

// ListingStore implements storage.ListingStore using SQLite.
type ListingStore struct {
	db    *DB
	table string
}

// NewListingStore creates a new ListingStore reading and writing table.
func NewListingStore(db *DB, table string) (*ListingStore, error) {
	if err := storage.ValidateTableName(table); err != nil {
		return nil, err
	}
	return &ListingStore{db: db, table: table}, nil
}

// Compile-time interface check.
var _ storage.ListingStore = (*ListingStore)(nil)

// Name returns a description for logs.
func (s *ListingStore) Name() string {
	return "sqlite:" + s.table
}

// InsertListings appends listings in one transaction.
func (s *ListingStore) InsertListings(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(domain.ListingColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, strings.Join(domain.ListingColumns, ", "), placeholders))
	if err != nil {
		if isNoSuchTableError(err) {
			return fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range listings {
		if _, err := stmt.ExecContext(ctx, listings[i].Cells()...); err != nil {
			return fmt.Errorf("insert listing %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountListings returns the number of stored listings.
func (s *ListingStore) CountListings(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+s.table).Scan(&n); err != nil {
		if isNoSuchTableError(err) {
			return 0, fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

// Load reads every column of the table. SQLite values arrive as int64,
// float64, string, []byte or nil; columns that are NULL in every row are
// dropped.
func (s *ListingStore) Load(ctx context.Context) (*dataset.Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.table)
	if err != nil {
		if isNoSuchTableError(err) {
			return nil, fmt.Errorf("%w: table %s", storage.ErrNotFound, s.table)
		}
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	b := dataset.NewBuilder(header)
	values := make([]any, len(header))
	dest := make([]any, len(header))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		if err := b.Append(values); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return b.Table().Compact(), nil
}
