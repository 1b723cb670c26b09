package dataset

import "errors"

// Dataset errors.
var (
	// ErrMissingColumn is returned when a column without a fallback is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrNonNumericColumn is returned when a column that must be numeric holds text.
	ErrNonNumericColumn = errors.New("column is not numeric")

	// ErrEmptyDataset is returned when the source has no header row.
	ErrEmptyDataset = errors.New("dataset has no header")
)
