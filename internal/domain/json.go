package domain

import (
	"encoding/json"
	"math"
)

// NullableFloat returns nil for NaN and ±Inf, which JSON cannot carry.
func NullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NullableFloats applies NullableFloat to each value.
func NullableFloats(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = NullableFloat(v)
	}
	return out
}

func floatOrNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// statisticsJSON is the wire form of TrainingStatistics; the float fields
// shadow the embedded ones so non-finite medians encode as null.
type statisticsJSON struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Views     *float64 `json:"views"`
	Watchers  *float64 `json:"watchers"`
	Comments  *float64 `json:"comments"`
	statisticsFields
}

type statisticsFields TrainingStatistics

// MarshalJSON encodes non-finite medians as null.
func (s TrainingStatistics) MarshalJSON() ([]byte, error) {
	return json.Marshal(statisticsJSON{
		Latitude:         NullableFloat(s.Latitude),
		Longitude:        NullableFloat(s.Longitude),
		Views:            NullableFloat(s.Views),
		Watchers:         NullableFloat(s.Watchers),
		Comments:         NullableFloat(s.Comments),
		statisticsFields: statisticsFields(s),
	})
}

// UnmarshalJSON reads null medians back as NaN.
func (s *TrainingStatistics) UnmarshalJSON(data []byte) error {
	var w statisticsJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = TrainingStatistics(w.statisticsFields)
	s.Latitude = floatOrNaN(w.Latitude)
	s.Longitude = floatOrNaN(w.Longitude)
	s.Views = floatOrNaN(w.Views)
	s.Watchers = floatOrNaN(w.Watchers)
	s.Comments = floatOrNaN(w.Comments)
	return nil
}
