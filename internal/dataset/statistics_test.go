package dataset

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-advisor/internal/domain"
)

func mustReadCSV(t *testing.T, data string) *Table {
	t.Helper()
	tbl, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	return tbl
}

func TestCompute_AllColumns(t *testing.T) {
	tbl := mustReadCSV(t, `latitude,longitude,views,watchers,comments,accidents
33.0,-111.0,10,100,5,1
34.0,-112.0,20,200,15,2
35.0,-113.0,30,300,25,4
`)

	got, err := Compute(tbl)
	require.NoError(t, err)

	want := domain.TrainingStatistics{
		Latitude:  34.0,
		Longitude: -112.0,
		Views:     20,
		Watchers:  200,
		Comments:  15,
		Accidents: 2,
		Rows:      3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_OptionalColumnsAbsent(t *testing.T) {
	tbl := mustReadCSV(t, "latitude,longitude\n33.5,-112.0\n")

	got, err := Compute(tbl)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultViews, got.Views)
	assert.Equal(t, domain.DefaultWatchers, got.Watchers)
	assert.Equal(t, domain.DefaultComments, got.Comments)
	assert.Equal(t, 0, got.Accidents)
	assert.Equal(t, []string{"views", "watchers", "comments", "accidents"}, got.Fallbacks)
}

func TestCompute_ViewsAbsentIgnoresOtherColumns(t *testing.T) {
	tbl := mustReadCSV(t, "latitude,longitude,watchers,comments\n1,2,999,888\n")

	got, err := Compute(tbl)
	require.NoError(t, err)

	assert.Equal(t, 8000.0, got.Views)
	assert.Equal(t, 999.0, got.Watchers)
	assert.Equal(t, 888.0, got.Comments)
	assert.True(t, got.UsedFallback("views"))
	assert.False(t, got.UsedFallback("watchers"))
}

func TestCompute_Accidents(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want int
	}{
		{"odd count", "latitude,longitude,accidents\n0,0,1\n0,0,2\n0,0,4\n", 2},
		{"half rounds to even up", "latitude,longitude,accidents\n0,0,1\n0,0,2\n", 2},
		{"half rounds to even down", "latitude,longitude,accidents\n0,0,2\n0,0,3\n", 2},
		{"non-numeric", "latitude,longitude,accidents\n0,0,none\n0,0,1\n", 0},
		{"all missing", "latitude,longitude,accidents\n0,0,\n0,0,NA\n", 0},
		{"absent", "latitude,longitude\n0,0\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(mustReadCSV(t, tt.csv))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Accidents)
		})
	}
}

func TestCompute_MissingCoordinates(t *testing.T) {
	for _, csv := range []string{
		"longitude,views\n1,2\n",
		"latitude,views\n1,2\n",
	} {
		_, err := Compute(mustReadCSV(t, csv))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingColumn), "got %v", err)
	}
}

func TestCompute_NonNumericViews(t *testing.T) {
	tbl := mustReadCSV(t, "latitude,longitude,views\n1,2,many\n")

	_, err := Compute(tbl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonNumericColumn))
	assert.Contains(t, err.Error(), "views")
}

func TestCompute_MissingCellsSkipped(t *testing.T) {
	tbl := mustReadCSV(t, "latitude,longitude,views\n1,2,10\n3,4,\n5,6,30\n")

	got, err := Compute(tbl)
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Views)
	assert.Equal(t, 3.0, got.Latitude)
}

func TestCompute_EmptyCoordinateColumnIsMissing(t *testing.T) {
	tbl := mustReadCSV(t, "latitude,longitude\n,1\n")

	_, err := Compute(tbl)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestCompute_EmptyOptionalColumnUsesFallback(t *testing.T) {
	tbl := mustReadCSV(t, "latitude,longitude,views,accidents\n33,-112,,\n34,-111,NA,\n")

	got, err := Compute(tbl)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultViews, got.Views)
	assert.False(t, math.IsNaN(got.Views))
	assert.Equal(t, 0, got.Accidents)
	assert.True(t, got.UsedFallback("views"))
	assert.True(t, got.UsedFallback("accidents"))
}

func TestLoadStatistics_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte("latitude,longitude,views\n33.5,-112.0,10\n33.5,-112.0,20\n33.5,-112.0,30\n"), 0o644))

	got, err := LoadStatistics(context.Background(), NewCSVSource(path))
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Views)
	assert.Equal(t, 33.5, got.Latitude)
	assert.Equal(t, -112.0, got.Longitude)
	assert.Equal(t, 3, got.Rows)
}

func TestLoadStatistics_MissingFile(t *testing.T) {
	_, err := LoadStatistics(context.Background(), NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadStatistics_TableSource(t *testing.T) {
	b := NewBuilder([]string{"latitude", "longitude", "accidents"})
	require.NoError(t, b.Append([]any{int64(30), float32(-110), "unknown"}))
	require.NoError(t, b.Append([]any{int32(40), nil, nil}))

	got, err := LoadStatistics(context.Background(), &TableSource{Data: b.Table()})
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.Latitude)
	assert.Equal(t, -110.0, got.Longitude)
	assert.Equal(t, 0, got.Accidents)
}

func TestTableSource_Empty(t *testing.T) {
	_, err := (&TableSource{}).Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
