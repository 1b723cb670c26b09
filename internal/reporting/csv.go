package reporting

import (
	"fmt"
	"math"
	"strings"
)

// RenderColumnsCSV renders the dataset column summary as CSV string.
func RenderColumnsCSV(rows []ColumnSummaryRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("column,numeric,present,missing,median,min,max\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%t,%d,%d,%s,%s,%s\n",
			r.Name,
			r.Numeric,
			r.Present,
			r.Missing,
			csvFloat(r.Median),
			csvFloat(r.Min),
			csvFloat(r.Max),
		))
	}

	return sb.String()
}

// RenderFeaturesCSV renders the feature columns as CSV string.
func RenderFeaturesCSV(rows []FeatureColumnRow) string {
	var sb strings.Builder

	sb.WriteString("index,feature,origin,default_value\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s\n", r.Index, r.Name, r.Origin, csvFloat(r.Value)))
	}

	return sb.String()
}

// csvFloat leaves missing values empty.
func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6g", v)
}
