package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayer(t *testing.T) {
	for _, l := range Layers() {
		got, err := ParseLayer(string(l))
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	_, err := ParseLayer("clouds")
	require.ErrorIs(t, err, ErrNoData)
}

func TestLayer_ProviderName(t *testing.T) {
	assert.Equal(t, "temp_new", LayerTemperature.ProviderName())
	assert.Equal(t, "wind_new", LayerWind.ProviderName())
	assert.Equal(t, "pressure_new", LayerPressure.ProviderName())
	assert.Equal(t, "Pressure (hPa)", LayerPressure.Legend())
}

func TestTile_Validate(t *testing.T) {
	valid := []Tile{{0, 0, 0}, {3, 7, 7}, {MaxZoom, 0, 1<<MaxZoom - 1}}
	for _, tile := range valid {
		assert.NoError(t, tile.Validate(), "%+v", tile)
	}

	invalid := []Tile{{-1, 0, 0}, {MaxZoom + 1, 0, 0}, {2, 4, 0}, {2, 0, -1}}
	for _, tile := range invalid {
		assert.ErrorIs(t, tile.Validate(), ErrNoData, "%+v", tile)
	}
}
