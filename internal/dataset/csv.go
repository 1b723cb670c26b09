package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// missingMarkers are cell values read as missing.
var missingMarkers = map[string]struct{}{
	"":        {},
	"NA":      {},
	"N/A":     {},
	"n/a":     {},
	"NaN":     {},
	"nan":     {},
	"-NaN":    {},
	"-nan":    {},
	"NULL":    {},
	"null":    {},
	"None":    {},
	"<NA>":    {},
	"#N/A":    {},
	"#NA":     {},
	"1.#QNAN": {},
}

// CSVSource reads a dataset from a CSV file with a header row.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSVSource for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Compile-time interface check.
var _ Source = (*CSVSource)(nil)

// Name returns a description for logs.
func (s *CSVSource) Name() string {
	return "csv:" + s.Path
}

// Load reads the whole file.
func (s *CSVSource) Load(_ context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.Path, err)
	}
	return t, nil
}

// ReadCSV parses CSV data into a Table. A column is numeric when every
// non-missing cell parses as a number.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	b := NewBuilder(header)
	cells := make([]any, 0, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		cells = cells[:0]
		for _, raw := range record {
			cells = append(cells, parseCell(raw))
		}
		if err := b.Append(cells); err != nil {
			return nil, err
		}
	}

	return b.Table(), nil
}

// parseCell returns nil for missing markers, float64 for numbers and the
// raw string otherwise.
func parseCell(raw string) any {
	if _, missing := missingMarkers[raw]; missing {
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	if _, missing := missingMarkers[trimmed]; missing {
		return nil
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v
	}
	return raw
}
