package advisor

import (
	"context"
	"fmt"
	"io"
	"log"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/predictor"
)

// LoadOptions describes where the statistics and the model come from.
type LoadOptions struct {
	Source        dataset.Source
	ModelURI      string
	ClientOptions []predictor.ClientOption
	Timing        domain.AuctionTiming
	Surface       string
	Logger        *log.Logger
}

// Load reads the dataset and the model once and returns a ready Advisor.
// Either failure is fatal for the caller: there is no partial Advisor.
func Load(ctx context.Context, opts LoadOptions) (*Advisor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("advisor: dataset source is required")
	}

	stats, err := dataset.LoadStatistics(ctx, opts.Source)
	if err != nil {
		return nil, err
	}
	logger.Printf("Loaded training statistics from %s: %d rows, lat=%.4f lon=%.4f views=%.0f watchers=%.0f comments=%.0f accidents=%d",
		opts.Source.Name(), stats.Rows, stats.Latitude, stats.Longitude, stats.Views, stats.Watchers, stats.Comments, stats.Accidents)
	if len(stats.Fallbacks) > 0 {
		logger.Printf("Columns filled from defaults: %v", stats.Fallbacks)
	}

	p, err := predictor.Load(ctx, opts.ModelURI, opts.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	kind := predictor.Kind(p)
	logger.Printf("Loaded %s predictor from %s", kind, opts.ModelURI)

	return New(Options{
		Statistics: stats,
		Predictor:  predictor.Instrument(kind, p),
		Timing:     opts.Timing,
		Surface:    opts.Surface,
		Logger:     logger,
	})
}
