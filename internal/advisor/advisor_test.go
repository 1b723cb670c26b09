package advisor

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/fixtures"
	"auction-advisor/internal/idhash"
	"auction-advisor/internal/predictor"
)

var testStats = domain.TrainingStatistics{
	Latitude:  33.5,
	Longitude: -112.0,
	Views:     8000,
	Watchers:  120,
	Comments:  25,
	Accidents: 0,
	Rows:      3,
}

var fixedNow = time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC)

// constant returns a predictor that always answers price and records what it saw.
func constant(price float64, seen *[]domain.FeatureRow) predictor.Predictor {
	return predictor.Func(func(_ context.Context, rows []domain.FeatureRow) ([]float64, error) {
		if seen != nil {
			*seen = append(*seen, rows...)
		}
		out := make([]float64, len(rows))
		for i := range out {
			out[i] = price
		}
		return out, nil
	})
}

func newTestAdvisor(t *testing.T, p predictor.Predictor) *Advisor {
	t.Helper()
	a, err := New(Options{
		Statistics: testStats,
		Predictor:  p,
		Surface:    "test",
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return a
}

func TestNew_RequiresPredictor(t *testing.T) {
	_, err := New(Options{Statistics: testStats})
	require.Error(t, err)
}

func TestNew_DefaultTiming(t *testing.T) {
	a := newTestAdvisor(t, constant(1, nil))
	assert.Equal(t, domain.DefaultAuctionTiming, a.Timing())
}

func TestEstimate_DefaultRequest(t *testing.T) {
	var seen []domain.FeatureRow
	a := newTestAdvisor(t, constant(123456.7, &seen))

	req := domain.DefaultEstimateRequest()
	est, err := a.Estimate(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, []float64{2015, 30000, 30000, 30000, 30000, 30000, 8000, 120, 25, 0, 33.5, -112.0, 3, 4}, seen[0].Values())
	assert.Equal(t, seen[0], est.Features)

	assert.Equal(t, 123456.7, est.Price)
	assert.Equal(t, "$123,457", est.PriceText)
	assert.Equal(t, "February to April", est.MonthLabel)
	assert.Equal(t, "Thursday or Friday", est.DayLabel)
	assert.Equal(t, "This estimate assumes a 2015 GT3 with 30,000 miles, listed from ZIP 85260 and marketed in a typical BaT-style format.", est.Summary)
	assert.Equal(t, idhash.ComputeEstimateID(req, domain.DefaultAuctionTiming), est.ID)
	assert.Equal(t, req, est.Request)
	assert.Equal(t, fixedNow, est.CreatedAt)
}

func TestEstimate_LatencyIgnoresInjectedClock(t *testing.T) {
	// A clock that jumps an hour per read would report hours of latency
	// if it were used for timing.
	calls := 0
	clock := func() time.Time {
		calls++
		return fixedNow.Add(time.Duration(calls-1) * time.Hour)
	}
	a, err := New(Options{Statistics: testStats, Predictor: constant(5, nil), Surface: "test", Now: clock})
	require.NoError(t, err)

	var seconds float64
	var unix int64
	a.record = func(surface string, s, price float64, u int64, err error) {
		assert.Equal(t, "test", surface)
		assert.Equal(t, 5.0, price)
		assert.NoError(t, err)
		seconds, unix = s, u
	}

	before := time.Now()
	est, err := a.Estimate(context.Background(), domain.DefaultEstimateRequest())
	require.NoError(t, err)

	assert.Equal(t, fixedNow, est.CreatedAt)
	assert.Equal(t, 1, calls, "clock read once, for CreatedAt")
	assert.GreaterOrEqual(t, seconds, 0.0)
	assert.Less(t, seconds, 60.0)
	assert.GreaterOrEqual(t, unix, before.Unix())
}

func TestEstimate_TimingOverride(t *testing.T) {
	timing := domain.AuctionTiming{Month: 6, MonthLabel: "June", DayOfWeek: 0, DayLabel: "Sunday"}
	var seen []domain.FeatureRow
	a, err := New(Options{Statistics: testStats, Predictor: constant(1, &seen), Timing: timing})
	require.NoError(t, err)

	est, err := a.Estimate(context.Background(), domain.DefaultEstimateRequest())
	require.NoError(t, err)

	assert.Equal(t, "June", est.MonthLabel)
	assert.Equal(t, "Sunday", est.DayLabel)
	assert.Equal(t, 6.0, seen[0].AuctionMonth)
	assert.Equal(t, 0.0, seen[0].AuctionDOW)
}

func TestEstimate_BadPrediction(t *testing.T) {
	tests := []struct {
		name string
		out  []float64
	}{
		{name: "no values", out: nil},
		{name: "two values", out: []float64{1, 2}},
		{name: "NaN", out: []float64{math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := predictor.Func(func(context.Context, []domain.FeatureRow) ([]float64, error) {
				return tt.out, nil
			})
			a := newTestAdvisor(t, p)

			_, err := a.Estimate(context.Background(), domain.DefaultEstimateRequest())
			assert.ErrorIs(t, err, ErrBadPrediction)
		})
	}
}

func TestEstimate_PredictorError(t *testing.T) {
	boom := errors.New("boom")
	a := newTestAdvisor(t, predictor.Func(func(context.Context, []domain.FeatureRow) ([]float64, error) {
		return nil, boom
	}))

	_, err := a.Estimate(context.Background(), domain.DefaultEstimateRequest())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrBadPrediction)
}

func TestEstimate_DoesNotValidateRanges(t *testing.T) {
	a := newTestAdvisor(t, constant(5000, nil))

	est, err := a.Estimate(context.Background(), domain.EstimateRequest{Year: 1900, Mileage: -10})
	require.NoError(t, err)
	assert.Equal(t, 1900.0, est.Features.Year)
	assert.Equal(t, -10.0, est.Features.MileageFromDetails)
}

func TestFormatPrice(t *testing.T) {
	a := newTestAdvisor(t, constant(1, nil))

	tests := []struct {
		price float64
		want  string
	}{
		{0, "$0"},
		{999.4, "$999"},
		{1000, "$1,000"},
		{87250.25, "$87,250"},
		{1234567.8, "$1,234,568"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.FormatPrice(tt.price), "price %v", tt.price)
	}
}

func TestStatistics_ReturnsCopy(t *testing.T) {
	stats := testStats
	stats.Fallbacks = []string{"views"}
	a, err := New(Options{Statistics: stats, Predictor: constant(1, nil)})
	require.NoError(t, err)

	got := a.Statistics()
	got.Fallbacks[0] = "mutated"
	got.Views = 1

	again := a.Statistics()
	assert.Equal(t, []string{"views"}, again.Fallbacks)
	assert.Equal(t, 8000.0, again.Views)
}

func TestEstimate_Concurrent(t *testing.T) {
	a := newTestAdvisor(t, constant(42000, nil))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			req := domain.DefaultEstimateRequest()
			req.Year = year
			est, err := a.Estimate(context.Background(), req)
			if err != nil {
				errs <- err
				return
			}
			if est.Features.Year != float64(year) {
				errs <- errors.New("feature row crossed requests")
			}
		}(2000 + i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestLoad_Fixtures(t *testing.T) {
	_, modelPath, err := fixtures.WriteFiles(t.TempDir())
	require.NoError(t, err)
	src, err := fixtures.Source()
	require.NoError(t, err)

	a, err := Load(context.Background(), LoadOptions{Source: src, ModelURI: modelPath})
	require.NoError(t, err)

	est, err := a.Estimate(context.Background(), domain.DefaultEstimateRequest())
	require.NoError(t, err)
	assert.Equal(t, "$132,000", est.PriceText)
	assert.Equal(t, 8100.0, est.Features.Views)
}

func TestLoad_Failures(t *testing.T) {
	src, err := fixtures.Source()
	require.NoError(t, err)

	_, err = Load(context.Background(), LoadOptions{ModelURI: "model.json"})
	assert.Error(t, err, "missing source")

	_, err = Load(context.Background(), LoadOptions{Source: src, ModelURI: "does-not-exist.json"})
	assert.Error(t, err)

	_, err = Load(context.Background(), LoadOptions{Source: &dataset.TableSource{Label: "empty"}, ModelURI: "x.json"})
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)
}
