package output

import (
	"fmt"
	"image"
	"math"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"

	"github.com/forest-guardian/lindex/internal/properties"
	"github.com/forest-guardian/lindex/internal/raster"
	"github.com/forest-guardian/lindex/internal/utils"
)

// Visualizer renders index grids with the diverging colour map and assembles
// them into time-lapses.
type Visualizer struct {
	// MinSize is the shortest edge, in pixels, a rendered image is scaled up to.
	MinSize int
}

func NewVisualizer(minSize int) *Visualizer {
	return &Visualizer{MinSize: minSize}
}

func normalize(value, min, max float64) float64 {
	if max == min {
		return 0.5
	}
	norm := (value - min) / (max - min)
	if norm < 0 {
		return 0
	}
	if norm > 1 {
		return 1
	}
	return norm
}

// valueToColor interpolates linearly between the colour map stops.
func valueToColor(norm float64) properties.Color {
	stops := properties.ColorMap
	pos := norm * float64(len(stops)-1)
	i := int(math.Floor(pos))
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	ratio := pos - float64(i)
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*ratio))
	}
	return properties.Color{
		R: lerp(stops[i].R, stops[i+1].R),
		G: lerp(stops[i].G, stops[i+1].G),
		B: lerp(stops[i].B, stops[i+1].B),
	}
}

// Render draws one pixel per grid cell, scaled over the finite value range,
// with no axes or labels.
func (v *Visualizer) Render(grid *raster.Grid) image.Image {
	min, max, _ := grid.FiniteRange()

	dc := gg.NewContext(grid.Width, grid.Height)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			value := grid.At(x, y)
			c := properties.NoDataColor
			if !math.IsNaN(value) && !math.IsInf(value, 0) {
				c = valueToColor(normalize(value, min, max))
			}
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.SetPixel(x, y)
		}
	}

	img := dc.Image()
	shortest := grid.Width
	if grid.Height < shortest {
		shortest = grid.Height
	}
	if shortest == 0 || shortest >= v.MinSize {
		return img
	}
	scale := int(math.Ceil(float64(v.MinSize) / float64(shortest)))
	return resize.Resize(uint(grid.Width*scale), uint(grid.Height*scale), img, resize.NearestNeighbor)
}

// SaveImage writes img as a PNG, creating the parent directory.
func (v *Visualizer) SaveImage(img image.Image, path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
