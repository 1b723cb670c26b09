package domain

import (
	"encoding/json"
	"fmt"
)

// FeatureColumns is the column order the price model was trained on.
// FeatureRow.Values returns values in exactly this order.
var FeatureColumns = []string{
	"year",
	"mileage",
	"mileage_corrected",
	"mileage_numeric",
	"mileage_from_title",
	"mileage_from_details",
	"views",
	"watchers",
	"comments",
	"accidents",
	"latitude",
	"longitude",
	"auction_month",
	"auction_dow",
}

// FeatureCount is the width of a FeatureRow.
const FeatureCount = 14

// FeatureRow is one input record for the price model.
// Corresponds to one row of the model's training frame.
type FeatureRow struct {
	Year               float64 // model year
	Mileage            float64 // odometer reading as entered
	MileageCorrected   float64 // same as Mileage in the form flow
	MileageNumeric     float64 // same as Mileage in the form flow
	MileageFromTitle   float64 // same as Mileage in the form flow
	MileageFromDetails float64 // same as Mileage in the form flow
	Views              float64 // listing page views (dataset median)
	Watchers           float64 // listing watchers (dataset median)
	Comments           float64 // listing comments (dataset median)
	Accidents          float64 // reported accidents (dataset median, rounded)
	Latitude           float64 // seller latitude (dataset median)
	Longitude          float64 // seller longitude (dataset median)
	AuctionMonth       float64 // 1-12
	AuctionDOW         float64 // 0=Monday ... 6=Sunday
}

// Values returns the row as a slice ordered by FeatureColumns.
func (r FeatureRow) Values() []float64 {
	return []float64{
		r.Year,
		r.Mileage,
		r.MileageCorrected,
		r.MileageNumeric,
		r.MileageFromTitle,
		r.MileageFromDetails,
		r.Views,
		r.Watchers,
		r.Comments,
		r.Accidents,
		r.Latitude,
		r.Longitude,
		r.AuctionMonth,
		r.AuctionDOW,
	}
}

// Map returns the row keyed by column name.
func (r FeatureRow) Map() map[string]float64 {
	values := r.Values()
	m := make(map[string]float64, len(values))
	for i, name := range FeatureColumns {
		m[name] = values[i]
	}
	return m
}

// MarshalJSON encodes the row as an object keyed by column name.
// Non-finite values encode as null.
func (r FeatureRow) MarshalJSON() ([]byte, error) {
	values := r.Values()
	m := make(map[string]*float64, len(values))
	for i, name := range FeatureColumns {
		m[name] = NullableFloat(values[i])
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by column name. Every column is
// required; null reads as NaN.
func (r *FeatureRow) UnmarshalJSON(data []byte) error {
	var m map[string]*float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	values := make([]float64, len(FeatureColumns))
	for i, name := range FeatureColumns {
		v, ok := m[name]
		if !ok {
			return fmt.Errorf("feature row: missing column %q", name)
		}
		values[i] = floatOrNaN(v)
	}
	row, err := FeatureRowFromValues(values)
	if err != nil {
		return err
	}
	*r = row
	return nil
}

// FeatureRowFromValues builds a row from values ordered by FeatureColumns.
func FeatureRowFromValues(values []float64) (FeatureRow, error) {
	if len(values) != FeatureCount {
		return FeatureRow{}, fmt.Errorf("feature row: got %d values, want %d", len(values), FeatureCount)
	}
	return FeatureRow{
		Year:               values[0],
		Mileage:            values[1],
		MileageCorrected:   values[2],
		MileageNumeric:     values[3],
		MileageFromTitle:   values[4],
		MileageFromDetails: values[5],
		Views:              values[6],
		Watchers:           values[7],
		Comments:           values[8],
		Accidents:          values[9],
		Latitude:           values[10],
		Longitude:          values[11],
		AuctionMonth:       values[12],
		AuctionDOW:         values[13],
	}, nil
}
