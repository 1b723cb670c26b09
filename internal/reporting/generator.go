package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/features"
)

// Generator produces reports from a dataset source.
type Generator struct {
	source dataset.Source
	timing domain.AuctionTiming
	now    func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(source dataset.Source, timing domain.AuctionTiming) *Generator {
	return &Generator{
		source: source,
		timing: timing,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate reads the source once and builds the report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	t, err := g.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", g.source.Name(), err)
	}

	stats, err := dataset.Compute(t)
	if err != nil {
		return nil, fmt.Errorf("compute statistics from %s: %w", g.source.Name(), err)
	}

	return &Report{
		GeneratedAt:    g.now(),
		Source:         g.source.Name(),
		Statistics:     stats,
		Timing:         g.timing,
		Columns:        summarizeColumns(t),
		FeatureColumns: featureColumns(stats, g.timing),
	}, nil
}

func summarizeColumns(t *dataset.Table) []ColumnSummaryRow {
	names := t.Names()
	rows := make([]ColumnSummaryRow, 0, len(names))
	for _, name := range names {
		c, _ := t.Column(name)
		row := ColumnSummaryRow{
			Name:    name,
			Numeric: c.Numeric,
			Median:  math.NaN(),
			Min:     math.NaN(),
			Max:     math.NaN(),
		}
		if !c.Numeric {
			rows = append(rows, row)
			continue
		}
		for _, v := range c.Values {
			if math.IsNaN(v) {
				row.Missing++
				continue
			}
			row.Present++
			if row.Present == 1 || v < row.Min {
				row.Min = v
			}
			if row.Present == 1 || v > row.Max {
				row.Max = v
			}
		}
		row.Median = dataset.Median(c.Values)
		rows = append(rows, row)
	}
	return rows
}

func featureColumns(stats domain.TrainingStatistics, timing domain.AuctionTiming) []FeatureColumnRow {
	req := domain.DefaultEstimateRequest()
	values := features.Build(req.Year, req.Mileage, stats, timing).Values()

	rows := make([]FeatureColumnRow, len(domain.FeatureColumns))
	for i, name := range domain.FeatureColumns {
		rows[i] = FeatureColumnRow{
			Index:  i,
			Name:   name,
			Origin: featureOrigin(name),
			Value:  values[i],
		}
	}
	return rows
}

func featureOrigin(name string) string {
	switch name {
	case "auction_month", "auction_dow":
		return OriginTiming
	case "views", "watchers", "comments", "accidents", "latitude", "longitude":
		return OriginStatistics
	default:
		return OriginRequest
	}
}
