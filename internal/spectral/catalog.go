// Package spectral holds the registry of spectral indices and computes them
// pixel by pixel over the bands of a windowed scene.
package spectral

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/forest-guardian/lindex/internal/landsat"
)

var ErrUnknownIndex = errors.New("unknown index")

// Index names a registered spectral index, e.g. "ndwi".
type Index string

const (
	NDWI Index = "ndwi"
	NDVI Index = "ndvi"
	EVI  Index = "evi"
	AVI  Index = "avi"
	SAVI Index = "savi"
	NDMI Index = "ndmi"
	MSI  Index = "msi"
	GCI  Index = "gci"
	NBRI Index = "nbri"
	BSI  Index = "bsi"
	NDSI Index = "ndsi"
	NDGI Index = "ndgi"
)

// Reflectance is one pixel of every logical band, promoted to float64.
// Bands an index does not require are left at zero.
type Reflectance struct {
	Coastal float64
	Blue    float64
	Green   float64
	Red     float64
	NIR     float64
	SWIR1   float64
	SWIR2   float64
}

func (r *Reflectance) set(band landsat.Band, v float64) {
	switch band {
	case landsat.Coastal:
		r.Coastal = v
	case landsat.Blue:
		r.Blue = v
	case landsat.Green:
		r.Green = v
	case landsat.Red:
		r.Red = v
	case landsat.NIR:
		r.NIR = v
	case landsat.SWIR1:
		r.SWIR1 = v
	case landsat.SWIR2:
		r.SWIR2 = v
	}
}

// Definition binds an index to the bands it reads and its per-pixel formula.
type Definition struct {
	Name    Index
	Bands   []landsat.Band
	Formula func(r Reflectance) float64
}

func normalizedDifference(a, b float64) float64 {
	return (a - b) / (a + b)
}

var registry = map[Index]Definition{
	NDWI: {NDWI, []landsat.Band{landsat.Green, landsat.NIR}, func(r Reflectance) float64 {
		return normalizedDifference(r.NIR, r.Green)
	}},
	NDVI: {NDVI, []landsat.Band{landsat.Red, landsat.NIR}, func(r Reflectance) float64 {
		return normalizedDifference(r.NIR, r.Red)
	}},
	EVI: {EVI, []landsat.Band{landsat.Blue, landsat.Red, landsat.NIR}, func(r Reflectance) float64 {
		return 2.5 * (r.NIR - r.Red) / (r.NIR + 6*r.Red - 7.5*r.Blue + 1)
	}},
	// math.Pow returns NaN for a negative base with a fractional exponent.
	AVI: {AVI, []landsat.Band{landsat.Red, landsat.NIR}, func(r Reflectance) float64 {
		return math.Pow(r.NIR*(1-r.Red)*(r.NIR-r.Red), 1.0/3)
	}},
	SAVI: {SAVI, []landsat.Band{landsat.Red, landsat.NIR}, func(r Reflectance) float64 {
		return ((r.NIR - r.Red) / (r.NIR + r.Red + 0.5)) * 1.5
	}},
	NDMI: {NDMI, []landsat.Band{landsat.SWIR1, landsat.NIR}, func(r Reflectance) float64 {
		return normalizedDifference(r.NIR, r.SWIR1)
	}},
	MSI: {MSI, []landsat.Band{landsat.SWIR1, landsat.NIR}, func(r Reflectance) float64 {
		return r.SWIR1 / r.NIR
	}},
	GCI: {GCI, []landsat.Band{landsat.Green, landsat.NIR}, func(r Reflectance) float64 {
		return r.NIR/r.Green - 1
	}},
	NBRI: {NBRI, []landsat.Band{landsat.SWIR2, landsat.NIR}, func(r Reflectance) float64 {
		return normalizedDifference(r.NIR, r.SWIR2)
	}},
	BSI: {BSI, []landsat.Band{landsat.Blue, landsat.Red, landsat.NIR, landsat.SWIR1}, func(r Reflectance) float64 {
		return normalizedDifference(r.Red+r.SWIR1, r.NIR+r.Blue)
	}},
	// Degenerate on purpose: 1 where green != swir, NaN otherwise.
	NDSI: {NDSI, []landsat.Band{landsat.Green, landsat.SWIR1}, func(r Reflectance) float64 {
		return (r.Green - r.SWIR1) / (r.Green - r.SWIR1)
	}},
	// Normalized difference with B3 in the "nir" slot and B4 in the "green" slot.
	NDGI: {NDGI, []landsat.Band{landsat.Green, landsat.Red}, func(r Reflectance) float64 {
		return normalizedDifference(r.Green, r.Red)
	}},
}

// Lookup returns the definition of a registered index. Names are case-insensitive.
func Lookup(name string) (Definition, error) {
	def, ok := registry[Index(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownIndex, name, strings.Join(Names(), ", "))
	}
	return def, nil
}

// Names lists the registered indices in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
