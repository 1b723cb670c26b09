package domain

// Listing is one historical auction row as stored by the ingest tool.
// Numeric fields are nil when the source cell was missing.
type Listing struct {
	Title    string
	Submodel string
	ZIP      string

	Year               *float64
	Mileage            *float64
	MileageCorrected   *float64
	MileageNumeric     *float64
	MileageFromTitle   *float64
	MileageFromDetails *float64
	SoldPrice          *float64
	Views              *float64
	Watchers           *float64
	Comments           *float64
	Accidents          *float64
	Latitude           *float64
	Longitude          *float64
	AuctionMonth       *float64
	AuctionDOW         *float64
}

// ListingTextColumns are the descriptive columns of a stored listing.
var ListingTextColumns = []string{"title", "submodel", "zip"}

// ListingNumericColumns are the numeric columns of a stored listing, in
// storage order.
var ListingNumericColumns = []string{
	"year",
	"mileage",
	"mileage_corrected",
	"mileage_numeric",
	"mileage_from_title",
	"mileage_from_details",
	"sold_price",
	"views",
	"watchers",
	"comments",
	"accidents",
	"latitude",
	"longitude",
	"auction_month",
	"auction_dow",
}

// ListingColumns is text columns followed by numeric columns.
var ListingColumns = append(append([]string(nil), ListingTextColumns...), ListingNumericColumns...)

// Text returns pointers to the text fields in ListingTextColumns order.
func (l *Listing) Text() []*string {
	return []*string{&l.Title, &l.Submodel, &l.ZIP}
}

// Numbers returns pointers to the numeric fields in ListingNumericColumns order.
func (l *Listing) Numbers() []**float64 {
	return []**float64{
		&l.Year,
		&l.Mileage,
		&l.MileageCorrected,
		&l.MileageNumeric,
		&l.MileageFromTitle,
		&l.MileageFromDetails,
		&l.SoldPrice,
		&l.Views,
		&l.Watchers,
		&l.Comments,
		&l.Accidents,
		&l.Latitude,
		&l.Longitude,
		&l.AuctionMonth,
		&l.AuctionDOW,
	}
}

// Cells returns the listing's values in ListingColumns order, with nil for
// missing numbers.
func (l *Listing) Cells() []any {
	cells := make([]any, 0, len(ListingColumns))
	for _, s := range l.Text() {
		cells = append(cells, *s)
	}
	for _, n := range l.Numbers() {
		if *n == nil {
			cells = append(cells, nil)
			continue
		}
		cells = append(cells, **n)
	}
	return cells
}
