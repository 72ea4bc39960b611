package domain

import "fmt"

// Layer is a map overlay rendered as tinted raster tiles.
type Layer string

const (
	LayerTemperature Layer = "temp"
	LayerWind        Layer = "wind"
	LayerPressure    Layer = "pressure"
)

// MaxZoom is the deepest tile zoom level the dashboard requests.
const MaxZoom = 18

// Layers lists the supported overlays in menu order.
func Layers() []Layer {
	return []Layer{LayerTemperature, LayerWind, LayerPressure}
}

// ParseLayer validates a layer name.
func ParseLayer(s string) (Layer, error) {
	switch l := Layer(s); l {
	case LayerTemperature, LayerWind, LayerPressure:
		return l, nil
	default:
		return "", fmt.Errorf("%w: unknown weather layer %q", ErrNoData, s)
	}
}

// ProviderName returns the tile service's name for the layer.
func (l Layer) ProviderName() string {
	return string(l) + "_new"
}

// Legend returns the unit caption shown next to the overlay.
func (l Layer) Legend() string {
	switch l {
	case LayerTemperature:
		return "Temperature (°C)"
	case LayerWind:
		return "Wind Speed (m/s)"
	case LayerPressure:
		return "Pressure (hPa)"
	default:
		return ""
	}
}

// Tile addresses one slippy-map tile.
type Tile struct {
	Z int
	X int
	Y int
}

// Validate checks that the tile lies inside the zoom level's grid.
func (t Tile) Validate() error {
	if t.Z < 0 || t.Z > MaxZoom {
		return fmt.Errorf("%w: zoom %d out of range 0-%d", ErrNoData, t.Z, MaxZoom)
	}
	n := 1 << t.Z
	if t.X < 0 || t.X >= n || t.Y < 0 || t.Y >= n {
		return fmt.Errorf("%w: tile %d/%d out of range at zoom %d", ErrNoData, t.X, t.Y, t.Z)
	}
	return nil
}
