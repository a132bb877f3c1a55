package output

import (
	"path/filepath"

	"github.com/forest-guardian/lindex/internal/raster"
	"github.com/forest-guardian/lindex/internal/utils"
)

// RasterWriter persists a derived grid.
type RasterWriter interface {
	WriteGrid(grid *raster.Grid, ref raster.GeoReference, dst string) error
}

// WriteRaster writes the grid as a Float32 GeoTIFF carrying the source
// geotransform and projection.
func WriteRaster(writer RasterWriter, grid *raster.Grid, ref raster.GeoReference, dest string) error {
	if err := utils.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	return writer.WriteGrid(grid, ref, dest)
}

// WriteVisualization renders the grid and saves it as a PNG at dest.
func (v *Visualizer) WriteVisualization(grid *raster.Grid, dest string) error {
	return v.SaveImage(v.Render(grid), dest)
}
