// Package advisor turns form input into a priced estimate.
//
// An Advisor is built once at startup from the training statistics and the
// loaded predictor. Both are read-only afterwards, so one Advisor can serve
// any number of concurrent requests.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"auction-advisor/internal/domain"
	"auction-advisor/internal/features"
	"auction-advisor/internal/idhash"
	"auction-advisor/internal/observability"
	"auction-advisor/internal/predictor"
)

// ErrBadPrediction is returned when the predictor does not return exactly
// one finite value for the row.
var ErrBadPrediction = errors.New("predictor returned an unusable result")

// Advisor prices estimate requests.
type Advisor struct {
	stats     domain.TrainingStatistics
	predictor predictor.Predictor
	timing    domain.AuctionTiming
	surface   string
	now       func() time.Time
	record    func(surface string, seconds, price float64, unixTime int64, err error)
	printer   *message.Printer
	logger    *log.Logger
}

// Options for creating Advisor.
type Options struct {
	// Required
	Statistics domain.TrainingStatistics
	Predictor  predictor.Predictor

	// Timing defaults to domain.DefaultAuctionTiming when zero.
	Timing domain.AuctionTiming

	// Surface labels estimate metrics ("web", "tui", "cli").
	Surface string

	// Now overrides the clock that stamps Estimate.CreatedAt (tests).
	Now func() time.Time

	Logger *log.Logger
}

// New creates an Advisor.
func New(opts Options) (*Advisor, error) {
	if opts.Predictor == nil {
		return nil, errors.New("advisor: predictor is required")
	}
	timing := opts.Timing
	if timing == (domain.AuctionTiming{}) {
		timing = domain.DefaultAuctionTiming
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	surface := opts.Surface
	if surface == "" {
		surface = "default"
	}

	stats := opts.Statistics
	stats.Fallbacks = append([]string(nil), stats.Fallbacks...)

	return &Advisor{
		stats:     stats,
		predictor: opts.Predictor,
		timing:    timing,
		surface:   surface,
		now:       now,
		record:    observability.RecordEstimate,
		printer:   message.NewPrinter(language.English),
		logger:    logger,
	}, nil
}

// Statistics returns a copy of the training statistics.
func (a *Advisor) Statistics() domain.TrainingStatistics {
	s := a.stats
	s.Fallbacks = append([]string(nil), a.stats.Fallbacks...)
	return s
}

// Timing returns the auction timing advice.
func (a *Advisor) Timing() domain.AuctionTiming {
	return a.timing
}

// Features assembles the model input for req without scoring it.
func (a *Advisor) Features(req domain.EstimateRequest) domain.FeatureRow {
	return features.Build(req.Year, req.Mileage, a.stats, a.timing)
}

// Estimate builds the feature row for req, scores it and formats the result.
// Year and mileage are not range-checked here; surfaces call
// features.ValidateInput at the input boundary.
func (a *Advisor) Estimate(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error) {
	// Latency uses the wall clock; the injected clock only stamps CreatedAt.
	start := time.Now()
	est, err := a.estimate(ctx, req)
	a.record(a.surface, time.Since(start).Seconds(), priceOf(est), time.Now().Unix(), err)
	if err != nil {
		a.logger.Printf("estimate failed year=%d mileage=%d: %v", req.Year, req.Mileage, err)
		return nil, err
	}
	return est, nil
}

func (a *Advisor) estimate(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error) {
	row := a.Features(req)

	prices, err := a.predictor.Predict(ctx, []domain.FeatureRow{row})
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(prices) != 1 {
		return nil, fmt.Errorf("%w: %d values for 1 row", ErrBadPrediction, len(prices))
	}
	price := prices[0]
	if price != price || price > 1e15 || price < -1e15 { // NaN or absurd
		return nil, fmt.Errorf("%w: %v", ErrBadPrediction, price)
	}

	return &domain.Estimate{
		ID:         idhash.ComputeEstimateID(req, a.timing),
		Request:    req,
		Features:   row,
		Price:      price,
		PriceText:  a.FormatPrice(price),
		MonthLabel: a.timing.MonthLabel,
		DayLabel:   a.timing.DayLabel,
		Summary:    a.Summary(req),
		CreatedAt:  a.now().UTC(),
	}, nil
}

// FormatPrice renders a price in whole dollars with thousands separators.
func (a *Advisor) FormatPrice(price float64) string {
	return a.printer.Sprintf("$%.0f", price)
}

// Summary describes the assumptions behind an estimate.
func (a *Advisor) Summary(req domain.EstimateRequest) string {
	return a.printer.Sprintf("This estimate assumes a %s %s with %d miles, listed from ZIP %s and marketed in a typical BaT-style format.",
		strconv.Itoa(req.Year), req.Submodel, req.Mileage, req.ZIP)
}

func priceOf(e *domain.Estimate) float64 {
	if e == nil {
		return 0
	}
	return e.Price
}
