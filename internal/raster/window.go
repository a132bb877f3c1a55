package raster

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Window is the bounding rectangle every band is cropped to, in the source CRS.
type Window struct {
	Bound orb.Bound
}

// NewWindow builds a window from QGIS-style [xmin, ymin, xmax, ymax] values.
func NewWindow(xmin, ymin, xmax, ymax float64) (Window, error) {
	if xmin >= xmax {
		return Window{}, fmt.Errorf("invalid window: xmin %v must be lower than xmax %v", xmin, xmax)
	}
	if ymin >= ymax {
		return Window{}, fmt.Errorf("invalid window: ymin %v must be lower than ymax %v", ymin, ymax)
	}
	return Window{Bound: orb.Bound{Min: orb.Point{xmin, ymin}, Max: orb.Point{xmax, ymax}}}, nil
}

// WindowFromSlice accepts the four bounding box values as given on the command line.
func WindowFromSlice(values []float64) (Window, error) {
	if len(values) != 4 {
		return Window{}, errors.New("bounding box needs exactly 4 values: xmin ymin xmax ymax")
	}
	return NewWindow(values[0], values[1], values[2], values[3])
}

// upperLeftLowerRight orders the corners the way gdal_translate expects them.
func (w Window) upperLeftLowerRight() []string {
	return []string{
		formatCoord(w.Bound.Left()),
		formatCoord(w.Bound.Top()),
		formatCoord(w.Bound.Right()),
		formatCoord(w.Bound.Bottom()),
	}
}

// Feature returns the window footprint as a GeoJSON polygon feature.
func (w Window) Feature() *geojson.Feature {
	feature := geojson.NewFeature(w.Bound.ToPolygon())
	feature.Properties["xmin"] = w.Bound.Left()
	feature.Properties["ymin"] = w.Bound.Bottom()
	feature.Properties["xmax"] = w.Bound.Right()
	feature.Properties["ymax"] = w.Bound.Top()
	return feature
}

func (w Window) String() string {
	return fmt.Sprintf("[%v %v %v %v]", w.Bound.Left(), w.Bound.Bottom(), w.Bound.Right(), w.Bound.Top())
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
