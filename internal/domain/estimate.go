package domain

import "time"

// Form bounds and defaults.
const (
	MinYear        = 1965
	MaxYear        = 2023
	MinMileage     = 0
	MaxMileage     = 250000
	MileageStep    = 500
	DefaultYear    = 2015
	DefaultMileage = 30000
	DefaultTitle   = "2016 Porsche 911 GT3 RS - PCCB, Lift, 1-Owner"
	DefaultZIP     = "85260"
)

// EstimateRequest is what the user submits from the form.
// Submodel, Title and ZIP are descriptive only: they do not reach the model.
type EstimateRequest struct {
	Year     int      `json:"year"`
	Mileage  int      `json:"mileage"`
	Submodel Submodel `json:"submodel"`
	Title    string   `json:"title"`
	ZIP      string   `json:"zip"`
}

// DefaultEstimateRequest returns the form's initial values.
func DefaultEstimateRequest() EstimateRequest {
	return EstimateRequest{
		Year:     DefaultYear,
		Mileage:  DefaultMileage,
		Submodel: SubmodelGT3,
		Title:    DefaultTitle,
		ZIP:      DefaultZIP,
	}
}

// Estimate is a priced request ready for display.
type Estimate struct {
	ID         string          `json:"id"`
	Request    EstimateRequest `json:"request"`
	Features   FeatureRow      `json:"features"`
	Price      float64         `json:"price"`
	PriceText  string          `json:"price_text"`
	MonthLabel string          `json:"recommended_window"`
	DayLabel   string          `json:"recommended_end_day"`
	Summary    string          `json:"summary"`
	CreatedAt  time.Time       `json:"created_at"`
}
