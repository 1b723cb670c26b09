package dataset

import (
	"context"
	"fmt"
	"math"
	"time"

	"auction-advisor/internal/domain"
	"auction-advisor/internal/observability"
)

// columnRule describes how one statistic is derived from its column.
type columnRule struct {
	column string

	// required columns fail the load when absent.
	required bool

	// fallback is used when the column is absent, or when lenient is set
	// and the column is non-numeric or extract reports no value.
	fallback float64
	lenient  bool

	extract func(*Column) (float64, bool)
	assign  func(*domain.TrainingStatistics, float64)
}

// columnRules is evaluated in order by Compute.
var columnRules = []columnRule{
	{
		column:   "latitude",
		required: true,
		extract:  median,
		assign:   func(s *domain.TrainingStatistics, v float64) { s.Latitude = v },
	},
	{
		column:   "longitude",
		required: true,
		extract:  median,
		assign:   func(s *domain.TrainingStatistics, v float64) { s.Longitude = v },
	},
	{
		column:   "views",
		fallback: domain.DefaultViews,
		extract:  median,
		assign:   func(s *domain.TrainingStatistics, v float64) { s.Views = v },
	},
	{
		column:   "watchers",
		fallback: domain.DefaultWatchers,
		extract:  median,
		assign:   func(s *domain.TrainingStatistics, v float64) { s.Watchers = v },
	},
	{
		column:   "comments",
		fallback: domain.DefaultComments,
		extract:  median,
		assign:   func(s *domain.TrainingStatistics, v float64) { s.Comments = v },
	},
	{
		column:   "accidents",
		fallback: domain.DefaultAccidents,
		lenient:  true,
		extract:  roundedMedian,
		assign:   func(s *domain.TrainingStatistics, v float64) { s.Accidents = int(v) },
	},
}

// strictColumn reports whether Compute fails when the column is non-numeric.
func strictColumn(name string) bool {
	for _, rule := range columnRules {
		if rule.column == name {
			return !rule.lenient
		}
	}
	return false
}

func median(c *Column) (float64, bool) {
	return Median(c.Values), true
}

// roundedMedian rounds half to even. No value when the median is NaN.
func roundedMedian(c *Column) (float64, bool) {
	m := Median(c.Values)
	if math.IsNaN(m) {
		return 0, false
	}
	return math.RoundToEven(m), true
}

// Compute derives TrainingStatistics from a table.
func Compute(t *Table) (domain.TrainingStatistics, error) {
	stats := domain.TrainingStatistics{Rows: t.Rows()}

	for _, rule := range columnRules {
		col, ok := t.Column(rule.column)
		if ok && col.Numeric && allMissing(col.Values) {
			// A column with no values reads as absent, whatever the source.
			ok = false
		}
		if !ok {
			if rule.required {
				return domain.TrainingStatistics{}, fmt.Errorf("%w: %s", ErrMissingColumn, rule.column)
			}
			rule.assign(&stats, rule.fallback)
			stats.Fallbacks = append(stats.Fallbacks, rule.column)
			continue
		}

		if !col.Numeric {
			if !rule.lenient {
				return domain.TrainingStatistics{}, fmt.Errorf("%w: %s", ErrNonNumericColumn, rule.column)
			}
			rule.assign(&stats, rule.fallback)
			stats.Fallbacks = append(stats.Fallbacks, rule.column)
			continue
		}

		v, ok := rule.extract(col)
		if !ok {
			rule.assign(&stats, rule.fallback)
			stats.Fallbacks = append(stats.Fallbacks, rule.column)
			continue
		}
		rule.assign(&stats, v)
	}

	return stats, nil
}

// LoadStatistics reads src once and computes the training statistics.
func LoadStatistics(ctx context.Context, src Source) (domain.TrainingStatistics, error) {
	start := time.Now()

	t, err := src.Load(ctx)
	if err != nil {
		observability.RecordDatasetLoad(src.Name(), 0, time.Since(start).Seconds(), err)
		return domain.TrainingStatistics{}, fmt.Errorf("load dataset %s: %w", src.Name(), err)
	}

	stats, err := Compute(t)
	observability.RecordDatasetLoad(src.Name(), t.Rows(), time.Since(start).Seconds(), err)
	if err != nil {
		return domain.TrainingStatistics{}, fmt.Errorf("compute statistics from %s: %w", src.Name(), err)
	}
	return stats, nil
}
