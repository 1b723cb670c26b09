package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Training Data Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Source: %s | Rows: %d\n\n", r.Source, r.Statistics.Rows))

	// Statistics
	sb.WriteString("## Training Statistics\n\n")
	sb.WriteString("| Statistic | Value | Source |\n")
	sb.WriteString("|-----------|-------|--------|\n")
	stats := []struct {
		column string
		value  string
	}{
		{"latitude", fmt.Sprintf("%.4f", r.Statistics.Latitude)},
		{"longitude", fmt.Sprintf("%.4f", r.Statistics.Longitude)},
		{"views", fmt.Sprintf("%.1f", r.Statistics.Views)},
		{"watchers", fmt.Sprintf("%.1f", r.Statistics.Watchers)},
		{"comments", fmt.Sprintf("%.1f", r.Statistics.Comments)},
		{"accidents", fmt.Sprintf("%d", r.Statistics.Accidents)},
	}
	for _, s := range stats {
		origin := "median"
		if r.Statistics.UsedFallback(s.column) {
			origin = "default"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", s.column, s.value, origin))
	}
	sb.WriteString("\n")

	// Timing
	sb.WriteString("## Recommended Auction Timing\n\n")
	sb.WriteString(fmt.Sprintf("- Window: %s (month %d)\n", r.Timing.MonthLabel, r.Timing.Month))
	sb.WriteString(fmt.Sprintf("- End day: %s (day of week %d)\n\n", r.Timing.DayLabel, r.Timing.DayOfWeek))

	// Feature columns
	sb.WriteString("## Feature Columns\n\n")
	sb.WriteString("| # | Feature | Origin | Default Request |\n")
	sb.WriteString("|---|---------|--------|-----------------|\n")
	for _, f := range r.FeatureColumns {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", f.Index, f.Name, f.Origin, mdFloat(f.Value)))
	}
	sb.WriteString("\n")

	// Dataset columns
	sb.WriteString("## Dataset Columns\n\n")
	if len(r.Columns) > 0 {
		sb.WriteString("| Column | Numeric | Present | Missing | Median | Min | Max |\n")
		sb.WriteString("|--------|---------|---------|---------|--------|-----|-----|\n")
		for _, c := range r.Columns {
			numeric := "no"
			if c.Numeric {
				numeric = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s | %s | %s |\n",
				c.Name, numeric, c.Present, c.Missing, mdFloat(c.Median), mdFloat(c.Min), mdFloat(c.Max)))
		}
	} else {
		sb.WriteString("No columns available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func mdFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.6g", v)
}
