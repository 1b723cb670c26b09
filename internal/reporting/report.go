package reporting

import (
	"time"

	"auction-advisor/internal/domain"
)

// Report describes the training dataset and the feature row the advisor
// feeds to the price model.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Source      string

	// Training statistics substituted into every feature row
	Statistics domain.TrainingStatistics
	Timing     domain.AuctionTiming

	// Per-column summary of the dataset, in source order
	Columns []ColumnSummaryRow

	// Feature row for the default request, in model column order
	FeatureColumns []FeatureColumnRow
}

// ColumnSummaryRow summarises one dataset column.
type ColumnSummaryRow struct {
	Name    string
	Numeric bool
	Present int
	Missing int
	Median  float64 // NaN when non-numeric or empty
	Min     float64
	Max     float64
}

// FeatureColumnRow is one column of the model input.
type FeatureColumnRow struct {
	Index  int
	Name   string
	Origin string // request, statistics or timing
	Value  float64
}

// Feature origins.
const (
	OriginRequest    = "request"
	OriginStatistics = "statistics"
	OriginTiming     = "timing"
)
