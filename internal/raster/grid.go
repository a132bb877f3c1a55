package raster

import "math"

// Grid is a single band held in memory, row major.
type Grid struct {
	Width  int
	Height int
	Data   []float64
	// Bits is the sample depth of the band the grid was read from.
	Bits int
}

// NewGrid allocates a zeroed float grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
		Bits:   64,
	}
}

// Filled returns a grid of the given size with every pixel set to value.
func Filled(width, height, bits int, value float64) *Grid {
	g := NewGrid(width, height)
	g.Bits = bits
	for i := range g.Data {
		g.Data[i] = value
	}
	return g
}

func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

func (g *Grid) SameShape(other *Grid) bool {
	return g.Width == other.Width && g.Height == other.Height
}

// Intensity8 scales samples to the 0-255 range an 8-bit image decoder would
// produce. Wider samples are divided by 256.
func (g *Grid) Intensity8() []float64 {
	out := make([]float64, len(g.Data))
	for i, v := range g.Data {
		if g.Bits > 8 {
			v = math.Round(v / 256)
		}
		out[i] = math.Max(0, math.Min(255, v))
	}
	return out
}

// NonFinite counts NaN and infinite pixels.
func (g *Grid) NonFinite() int {
	count := 0
	for _, v := range g.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			count++
		}
	}
	return count
}

// FiniteRange returns the min and max over finite pixels; ok is false when
// every pixel is NaN or infinite.
func (g *Grid) FiniteRange() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range g.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}
