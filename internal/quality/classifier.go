// Package quality decides whether a windowed scene is usable from the pixel
// statistics of its coastal band.
package quality

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/forest-guardian/lindex/internal/log"
	"github.com/forest-guardian/lindex/internal/raster"
)

type Verdict string

const (
	Clear  Verdict = "clear"
	Cloudy Verdict = "cloudy"
)

const (
	// Disabled as strictness turns classification off.
	Disabled = 999.0

	maxMeanIntensity = 35.0
	minMeanIntensity = 10.0
)

var errEmptyBand = errors.New("reference band has no pixels")

// GridReader reads a band file into memory.
type GridReader interface {
	ReadGrid(path string) (*raster.Grid, error)
}

// Assessment is a verdict together with the statistics behind it.
type Assessment struct {
	Verdict   Verdict
	Mode      float64
	Mean      float64
	AboveMode int
	Pixels    int
	Reason    string
	// Skipped is set when classification was disabled and no pixel was read.
	Skipped bool
}

type Classifier struct {
	reader GridReader
}

func NewClassifier(reader GridReader) *Classifier {
	return &Classifier{reader: reader}
}

// firstMode returns the most frequent value. Among equally frequent values
// the one met first wins, so the result is stable across runs.
func firstMode(pixels []float64) float64 {
	counts := make(map[float64]int, 256)
	top := 0
	for _, v := range pixels {
		counts[v]++
		if counts[v] > top {
			top = counts[v]
		}
	}
	for _, v := range pixels {
		if counts[v] == top {
			return v
		}
	}
	return 0
}

// Classify reads the reference band at path as 8-bit intensities and returns
// cloudy when too many pixels are brighter than the mode or the mean falls
// outside [10, 35]. A strictness of 999 returns clear without reading.
func (c *Classifier) Classify(path string, strictness float64) (Assessment, error) {
	if strictness == Disabled {
		return Assessment{Verdict: Clear, Reason: "classification disabled", Skipped: true}, nil
	}

	grid, err := c.reader.ReadGrid(path)
	if err != nil {
		return Assessment{}, fmt.Errorf("failed to read reference band: %w", err)
	}
	pixels := grid.Intensity8()
	if len(pixels) == 0 {
		return Assessment{}, fmt.Errorf("%s: %w", path, errEmptyBand)
	}

	mode := firstMode(pixels)
	mean := stat.Mean(pixels, nil)
	above := 0
	for _, v := range pixels {
		if v > mode {
			above++
		}
	}

	a := Assessment{
		Verdict:   Clear,
		Mode:      mode,
		Mean:      mean,
		AboveMode: above,
		Pixels:    len(pixels),
	}

	if mode == 0 {
		log.Infow("Reference band mode is 0, likely scene edge or no data", "path", path)
	}

	switch {
	case float64(above) >= float64(len(pixels))*strictness:
		a.Verdict = Cloudy
		a.Reason = fmt.Sprintf("%d of %d pixels brighter than mode %v", above, len(pixels), mode)
	case mean > maxMeanIntensity:
		a.Verdict = Cloudy
		a.Reason = fmt.Sprintf("mean intensity %.2f above %v", mean, maxMeanIntensity)
	case mean < minMeanIntensity:
		a.Verdict = Cloudy
		a.Reason = fmt.Sprintf("mean intensity %.2f below %v", mean, minMeanIntensity)
	}

	log.Debugw("Classified scene", "path", path, "verdict", a.Verdict, "mode", mode, "mean", mean, "above_mode", above)
	return a, nil
}
