package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound1(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"rounds down", 35.64, 35.6},
		{"half rounds away from zero", 35.65, 35.7},
		{"rounds up", 35.69, 35.7},
		{"negative half rounds away from zero", -35.65, -35.7},
		{"negative rounds toward zero", -35.64, -35.6},
		{"already rounded", 139.7, 139.7},
		{"zero", 0, 0},
		{"lon half", 139.75, 139.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round1(tt.in), 1e-9)
		})
	}
}

func TestRound1_Idempotent(t *testing.T) {
	inputs := []float64{35.6895, 139.6917, -122.6765, 0.05, -0.05, 89.99, -180.0, 35.65}
	for _, x := range inputs {
		once := Round1(x)
		assert.Equal(t, once, Round1(once), "Round1 must be idempotent for %v", x)
	}
}

func TestCellFor_NearbyPointsShareCell(t *testing.T) {
	// Two users ~5km apart land in the same 0.1-degree cell.
	a := CellFor(35.65, 139.70)
	b := CellFor(35.69, 139.71)

	assert.Equal(t, Cell{Lat: 35.7, Lon: 139.7}, a)
	assert.Equal(t, a, b)
}

func TestHaversine_ZeroDistance(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(35.6812, 139.7671, 35.6812, 139.7671))
}

func TestHaversine_OneDegreeAtEquator(t *testing.T) {
	// One degree of longitude at the equator is ~111,195m.
	d := Haversine(0, 0, 0, 1)
	assert.InDelta(t, 111195, d, 111195*0.01)
}

func TestHaversine_TokyoToOsaka(t *testing.T) {
	// Tokyo -> Osaka is roughly 400km.
	d := Haversine(35.6762, 139.6503, 34.6937, 135.5023)
	assert.InDelta(t, 400000, d, 15000)
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{0, "0m"},
		{340.4, "340m"},
		{999.4, "999m"},
		{1000, "1.0km"},
		{1234, "1.2km"},
		{12345, "12.3km"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDistance(tt.meters))
	}
}
