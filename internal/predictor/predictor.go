// Package predictor loads the trained price model and scores feature rows.
//
// The model is an opaque artifact produced offline. Three forms are
// supported: an MLflow scoring server (http/https URI), an MLflow model
// directory holding an XGBoost flavor, and a bare XGBoost JSON model file.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"auction-advisor/internal/domain"
	"auction-advisor/internal/observability"
)

// Predictor errors.
var (
	// ErrUnsupportedModel is returned for model formats that cannot be read.
	ErrUnsupportedModel = errors.New("unsupported model format")

	// ErrSchemaMismatch is returned when the model declares input columns
	// that differ from domain.FeatureColumns.
	ErrSchemaMismatch = errors.New("model input schema does not match feature columns")

	// ErrRemoteStatus is returned when the scoring server answers with a
	// non-retryable status.
	ErrRemoteStatus = errors.New("scoring server error")
)

// Predictor scores feature rows. Implementations are safe for concurrent use
// and never mutate their model after loading.
type Predictor interface {
	// Predict returns one price per row, in row order.
	Predict(ctx context.Context, rows []domain.FeatureRow) ([]float64, error)
}

// Func adapts a function to the Predictor interface.
type Func func(ctx context.Context, rows []domain.FeatureRow) ([]float64, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, rows []domain.FeatureRow) ([]float64, error) {
	return f(ctx, rows)
}

// Load opens the model at uri.
//
//   - http:// or https:// : MLflow scoring server
//   - directory with an MLmodel file : MLflow model directory
//   - *.json file : XGBoost JSON model
func Load(ctx context.Context, uri string, opts ...ClientOption) (Predictor, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return NewRemote(uri, opts...), nil
	}

	info, err := os.Stat(uri)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", uri, err)
	}
	if info.IsDir() {
		return LoadMLflowDir(uri)
	}
	if strings.EqualFold(filepath.Ext(uri), ".json") {
		return LoadXGBoostFile(uri)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, uri)
}

// Instrument wraps p so each call is recorded under kind.
func Instrument(kind string, p Predictor) Predictor {
	return Func(func(ctx context.Context, rows []domain.FeatureRow) ([]float64, error) {
		start := time.Now()
		out, err := p.Predict(ctx, rows)
		observability.RecordPredict(kind, time.Since(start).Seconds(), err)
		return out, err
	})
}

// Kind returns a short label for p used in metrics and logs.
func Kind(p Predictor) string {
	switch p.(type) {
	case *Remote:
		return "remote"
	case *Ensemble:
		return "xgboost"
	default:
		return "custom"
	}
}
