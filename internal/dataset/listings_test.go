package dataset

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingsCSV = `title,year,mileage,views,latitude,longitude,zip,notes
"911 GT3, Lift",2016,9800,12000,33.6,-111.9,85260,clean
911 Targa,1989,NA,5200,34.1,-118.4,90049,
911 Turbo,2011,41000,7400,40.7,-74.0,10013
`

func TestReadListings(t *testing.T) {
	listings, err := ReadListings(strings.NewReader(listingsCSV))
	require.NoError(t, err)
	require.Len(t, listings, 3)

	first := listings[0]
	assert.Equal(t, "911 GT3, Lift", first.Title)
	assert.Equal(t, "85260", first.ZIP)
	require.NotNil(t, first.Year)
	assert.Equal(t, 2016.0, *first.Year)
	assert.Nil(t, first.Accidents, "absent column stays empty")

	assert.Nil(t, listings[1].Mileage, "NA is missing")
	require.NotNil(t, listings[2].Longitude)
	assert.Equal(t, -74.0, *listings[2].Longitude)
}

func TestReadListings_NonNumeric(t *testing.T) {
	_, err := ReadListings(strings.NewReader("title,views\nA,lots\n"))
	assert.ErrorIs(t, err, ErrNonNumericColumn)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadListings_Empty(t *testing.T) {
	_, err := ReadListings(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestReadListings_TextInLenientColumn(t *testing.T) {
	listings, err := ReadListings(strings.NewReader("latitude,longitude,accidents,sold_price\n33,-112,None reported,95000\n34,-111,1,TBD\n"))
	require.NoError(t, err)
	require.Len(t, listings, 2)

	for _, l := range listings {
		assert.Nil(t, l.Accidents, "text column is left empty")
		assert.Nil(t, l.SoldPrice, "text column is left empty")
		require.NotNil(t, l.Latitude)
	}
}

func TestListingsTable_MatchesCSVStatistics(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{name: "mixed columns", csv: listingsCSV},
		{name: "text accidents", csv: "latitude,longitude,views,accidents\n33,-112,100,None reported\n34,-111,300,0\n"},
		{name: "empty views", csv: "latitude,longitude,views\n33,-112,\n34,-111,\n"},
		{name: "empty accidents", csv: "latitude,longitude,accidents\n33,-112,NA\n34,-111,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listings, err := ReadListings(strings.NewReader(tt.csv))
			require.NoError(t, err)

			fromListings, err := LoadStatistics(context.Background(), &TableSource{Label: "listings", Data: ListingsTable(listings)})
			require.NoError(t, err)

			table, err := ReadCSV(strings.NewReader(tt.csv))
			require.NoError(t, err)
			fromCSV, err := Compute(table)
			require.NoError(t, err)

			assert.Equal(t, fromCSV, fromListings)
			assert.False(t, math.IsNaN(fromListings.Views))
		})
	}
}

func TestListingsTable_FallbacksMatchCSV(t *testing.T) {
	listings, err := ReadListings(strings.NewReader(listingsCSV))
	require.NoError(t, err)

	got, err := Compute(ListingsTable(listings))
	require.NoError(t, err)
	assert.Equal(t, []string{"watchers", "comments", "accidents"}, got.Fallbacks)
}
