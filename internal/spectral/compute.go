package spectral

import (
	"fmt"

	"github.com/forest-guardian/lindex/internal/landsat"
	"github.com/forest-guardian/lindex/internal/raster"
)

// GridReader reads a band file into memory.
type GridReader interface {
	ReadGrid(path string) (*raster.Grid, error)
}

// Result is a computed index grid and the band files it was derived from.
type Result struct {
	Index     Index
	Grid      *raster.Grid
	BandPaths map[landsat.Band]string
	NonFinite int
}

// Compute resolves the bands an index needs in sceneDir and evaluates its
// formula per pixel. Division by zero yields NaN or Inf and is counted, not
// returned as an error.
func Compute(def Definition, sceneDir string, reader GridReader) (*Result, error) {
	paths, err := landsat.ResolveBands(sceneDir, def.Bands)
	if err != nil {
		return nil, err
	}

	bandData := make(map[landsat.Band]*raster.Grid, len(def.Bands))
	var shape *raster.Grid
	for _, band := range def.Bands {
		grid, err := reader.ReadGrid(paths[band])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s band: %w", band, err)
		}
		if shape == nil {
			shape = grid
		} else if !shape.SameShape(grid) {
			return nil, fmt.Errorf("%s band is %dx%d, expected %dx%d", band, grid.Width, grid.Height, shape.Width, shape.Height)
		}
		bandData[band] = grid
	}

	out := raster.NewGrid(shape.Width, shape.Height)
	for i := range out.Data {
		var px Reflectance
		for band, grid := range bandData {
			px.set(band, grid.Data[i])
		}
		out.Data[i] = def.Formula(px)
	}

	return &Result{
		Index:     def.Name,
		Grid:      out,
		BandPaths: paths,
		NonFinite: out.NonFinite(),
	}, nil
}
