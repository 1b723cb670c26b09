package features

import (
	"errors"
	"testing"

	"auction-advisor/internal/domain"
)

var testStats = domain.TrainingStatistics{
	Latitude:  33.5,
	Longitude: -112.0,
	Views:     8000,
	Watchers:  120,
	Comments:  25,
	Accidents: 0,
}

var testTiming = domain.AuctionTiming{Month: 3, DayOfWeek: 4}

func TestBuild_EndToEnd(t *testing.T) {
	row := Build(2015, 30000, testStats, testTiming)

	want := []float64{2015, 30000, 30000, 30000, 30000, 30000, 8000, 120, 25, 0, 33.5, -112.0, 3, 4}
	got := row.Values()
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s = %v, want %v", domain.FeatureColumns[i], got[i], want[i])
		}
	}
}

func TestBuild_MileageBroadcast(t *testing.T) {
	for _, mileage := range []int{0, 1, 123456, 250000} {
		row := Build(2000, mileage, testStats, testTiming)
		derived := []float64{row.MileageCorrected, row.MileageNumeric, row.MileageFromTitle, row.MileageFromDetails}
		for i, v := range derived {
			if v != float64(mileage) {
				t.Errorf("mileage %d: derived field %d = %v", mileage, i, v)
			}
		}
		if row.Mileage != float64(mileage) {
			t.Errorf("mileage %d: raw field = %v", mileage, row.Mileage)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(1999, 42000, testStats, testTiming)
	b := Build(1999, 42000, testStats, testTiming)
	if a != b {
		t.Errorf("Build not deterministic: %+v != %+v", a, b)
	}
}

func TestBuild_AcceptsOutOfRange(t *testing.T) {
	row := Build(1900, -5, testStats, testTiming)
	if row.Year != 1900 || row.Mileage != -5 {
		t.Errorf("out-of-range inputs altered: %+v", row)
	}
}

func TestBuild_ColumnOrderStable(t *testing.T) {
	stats := domain.TrainingStatistics{Latitude: 11, Longitude: 12, Views: 7, Watchers: 8, Comments: 9, Accidents: 10}
	row := Build(1, 2, stats, domain.AuctionTiming{Month: 13, DayOfWeek: 14})

	want := []float64{1, 2, 2, 2, 2, 2, 7, 8, 9, 10, 11, 12, 13, 14}
	got := row.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d (%s) = %v, want %v", i, domain.FeatureColumns[i], got[i], want[i])
		}
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		mileage int
		wantErr bool
	}{
		{"defaults", 2015, 30000, false},
		{"lower bounds", 1965, 0, false},
		{"upper bounds", 2023, 250000, false},
		{"year too old", 1964, 0, true},
		{"year too new", 2024, 0, true},
		{"negative mileage", 2015, -1, true},
		{"mileage too high", 2015, 250001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.year, tt.mileage)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateInput(%d, %d) error = %v, wantErr %v", tt.year, tt.mileage, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrOutOfRange) {
				t.Errorf("error %v is not ErrOutOfRange", err)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.EstimateRequest)
		wantErr error
	}{
		{name: "defaults", mutate: func(*domain.EstimateRequest) {}},
		{name: "other submodel", mutate: func(r *domain.EstimateRequest) { r.Submodel = domain.SubmodelOther }},
		{name: "empty title and zip", mutate: func(r *domain.EstimateRequest) { r.Title, r.ZIP = "", "" }},
		{name: "year too new", mutate: func(r *domain.EstimateRequest) { r.Year = 2024 }, wantErr: ErrOutOfRange},
		{name: "negative mileage", mutate: func(r *domain.EstimateRequest) { r.Mileage = -1 }, wantErr: ErrOutOfRange},
		{name: "unknown submodel", mutate: func(r *domain.EstimateRequest) { r.Submodel = "Cayenne" }, wantErr: ErrUnknownSubmodel},
		{name: "empty submodel", mutate: func(r *domain.EstimateRequest) { r.Submodel = "" }, wantErr: ErrUnknownSubmodel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.DefaultEstimateRequest()
			tt.mutate(&req)
			err := ValidateRequest(req)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRequest() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRequest() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
