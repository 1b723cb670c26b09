package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"auction-advisor/internal/domain"
)

// ReadListings parses a CSV export into listings for ingestion. Columns are
// matched by name; unknown columns are ignored and absent ones stay empty.
//
// A numeric column holding text is treated as the CSV source treats it:
// columns a statistic requires to be numeric fail the read, any other such
// column is left empty so it reads back as absent.
func ReadListings(r io.Reader) ([]domain.Listing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read row: %w", err)
	}

	cell := func(record []string, name string) (string, bool) {
		i, ok := pos[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return record[i], true
	}

	// First pass: find numeric columns that hold text.
	skip := make(map[string]bool)
	for _, name := range domain.ListingNumericColumns {
		for n, record := range records {
			raw, ok := cell(record, name)
			if !ok {
				continue
			}
			if _, isText := parseCell(raw).(string); !isText {
				continue
			}
			if strictColumn(name) {
				return nil, fmt.Errorf("line %d: %w: %s=%q", n+2, ErrNonNumericColumn, name, raw)
			}
			skip[name] = true
			break
		}
	}

	listings := make([]domain.Listing, 0, len(records))
	for _, record := range records {
		var l domain.Listing
		for i, dst := range l.Text() {
			if v, ok := cell(record, domain.ListingTextColumns[i]); ok {
				*dst = strings.TrimSpace(v)
			}
		}
		for i, dst := range l.Numbers() {
			name := domain.ListingNumericColumns[i]
			raw, ok := cell(record, name)
			if !ok || skip[name] {
				continue
			}
			if v, ok := parseCell(raw).(float64); ok {
				*dst = &v
			}
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// ListingsTable lays listings out as a Table with domain.ListingColumns.
func ListingsTable(listings []domain.Listing) *Table {
	b := NewBuilder(domain.ListingColumns)
	for i := range listings {
		// Cells always matches the header width.
		_ = b.Append(listings[i].Cells())
	}
	return b.Table().Compact()
}
