package domain

// AuctionTiming is the static "when to list" advice shown with every
// estimate. Month and DayOfWeek also feed the feature row.
type AuctionTiming struct {
	Month      int    `json:"month" yaml:"month"`
	MonthLabel string `json:"month_label" yaml:"month_label"`
	DayOfWeek  int    `json:"day_of_week" yaml:"day_of_week"`
	DayLabel   string `json:"day_label" yaml:"day_label"`
}

// DefaultAuctionTiming is the recommended auction window.
var DefaultAuctionTiming = AuctionTiming{
	Month:      3,
	MonthLabel: "February to April",
	DayOfWeek:  4,
	DayLabel:   "Thursday or Friday",
}
