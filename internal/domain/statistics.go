package domain

// Fallback values used when an optional column is absent from the dataset.
const (
	DefaultViews     = 8000.0
	DefaultWatchers  = 120.0
	DefaultComments  = 25.0
	DefaultAccidents = 0
)

// TrainingStatistics holds dataset medians used to fill features the
// form does not collect. Computed once at startup, read-only afterwards.
type TrainingStatistics struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Views     float64 `json:"views"`
	Watchers  float64 `json:"watchers"`
	Comments  float64 `json:"comments"`
	Accidents int     `json:"accidents"`

	Rows      int      `json:"rows"`                // rows read from the source
	Fallbacks []string `json:"fallbacks,omitempty"` // columns filled from defaults
}

// UsedFallback reports whether the named column was filled from its default.
func (s TrainingStatistics) UsedFallback(column string) bool {
	for _, c := range s.Fallbacks {
		if c == column {
			return true
		}
	}
	return false
}
