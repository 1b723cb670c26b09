// Package features assembles model input rows from form values and
// training statistics.
package features

import (
	"errors"
	"fmt"

	"auction-advisor/internal/domain"
)

var (
	// ErrOutOfRange is returned by ValidateInput for values outside the form bounds.
	ErrOutOfRange = errors.New("value out of range")

	// ErrUnknownSubmodel is returned by ValidateRequest for a submodel that is
	// not one of the form choices.
	ErrUnknownSubmodel = errors.New("unknown submodel")
)

// Build assembles a FeatureRow. Mileage is copied into the raw mileage
// field and all four mileage-derived fields. No validation is performed.
func Build(year, mileage int, stats domain.TrainingStatistics, timing domain.AuctionTiming) domain.FeatureRow {
	m := float64(mileage)
	return domain.FeatureRow{
		Year:               float64(year),
		Mileage:            m,
		MileageCorrected:   m,
		MileageNumeric:     m,
		MileageFromTitle:   m,
		MileageFromDetails: m,
		Views:              stats.Views,
		Watchers:           stats.Watchers,
		Comments:           stats.Comments,
		Accidents:          float64(stats.Accidents),
		Latitude:           stats.Latitude,
		Longitude:          stats.Longitude,
		AuctionMonth:       float64(timing.Month),
		AuctionDOW:         float64(timing.DayOfWeek),
	}
}

// ValidateInput checks year and mileage against the form bounds.
// Callers at the input boundary use it; Build does not.
func ValidateInput(year, mileage int) error {
	if year < domain.MinYear || year > domain.MaxYear {
		return fmt.Errorf("%w: year %d not in [%d, %d]", ErrOutOfRange, year, domain.MinYear, domain.MaxYear)
	}
	if mileage < domain.MinMileage || mileage > domain.MaxMileage {
		return fmt.Errorf("%w: mileage %d not in [%d, %d]", ErrOutOfRange, mileage, domain.MinMileage, domain.MaxMileage)
	}
	return nil
}

// ValidateRequest checks a whole form submission.
func ValidateRequest(req domain.EstimateRequest) error {
	if err := ValidateInput(req.Year, req.Mileage); err != nil {
		return err
	}
	if !req.Submodel.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownSubmodel, req.Submodel)
	}
	return nil
}
