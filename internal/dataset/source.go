package dataset

import "context"

// Source yields the training dataset as a Table.
type Source interface {
	// Name describes the source for logs and status output.
	Name() string

	// Load reads the full dataset. Called once per process.
	Load(ctx context.Context) (*Table, error)
}

// TableSource serves a prebuilt Table. Used for fixtures and tests.
type TableSource struct {
	Label string
	Data  *Table
}

// Compile-time interface check.
var _ Source = (*TableSource)(nil)

// Name returns the label.
func (s *TableSource) Name() string {
	if s.Label == "" {
		return "memory"
	}
	return s.Label
}

// Load returns the table.
func (s *TableSource) Load(_ context.Context) (*Table, error) {
	if s.Data == nil {
		return nil, ErrEmptyDataset
	}
	return s.Data, nil
}
