package spectral

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/lindex/internal/landsat"
	"github.com/forest-guardian/lindex/internal/raster"
)

// fakeReader serves constant grids keyed by band id suffix.
type fakeReader struct {
	values map[string][]float64
	reads  int
}

func (f *fakeReader) ReadGrid(path string) (*raster.Grid, error) {
	f.reads++
	data, ok := f.values[landsat.BandIDFromFileName(path)]
	if !ok {
		return nil, errors.New("no fixture for " + path)
	}
	return &raster.Grid{Width: len(data), Height: 1, Data: append([]float64(nil), data...), Bits: 16}, nil
}

func constantScene(t *testing.T, values map[string]float64) (string, *fakeReader) {
	t.Helper()
	dir := t.TempDir()
	reader := &fakeReader{values: map[string][]float64{}}
	for id, v := range values {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "20210115_"+id+".TIF"), nil, 0o644))
		reader.values[id] = []float64{v, v}
	}
	return dir, reader
}

func TestComputeClosedForms(t *testing.T) {
	const (
		coastal = 1.0
		blue    = 1.0
		green   = 2.0
		red     = 3.0
		nir     = 6.0
		swir1   = 4.0
		swir2   = 5.0
	)
	dir, reader := constantScene(t, map[string]float64{
		"B1": coastal, "B2": blue, "B3": green, "B4": red, "B5": nir, "B6": swir1, "B7": swir2,
	})

	tests := []struct {
		index Index
		want  float64
	}{
		{NDWI, 0.5},
		{NDVI, (nir - red) / (nir + red)},
		{EVI, 2.5 * (nir - red) / (nir + 6*red - 7.5*blue + 1)},
		{SAVI, ((nir - red) / (nir + red + 0.5)) * 1.5},
		{NDMI, (nir - swir1) / (nir + swir1)},
		{MSI, swir1 / nir},
		{GCI, nir/green - 1},
		{NBRI, (nir - swir2) / (nir + swir2)},
		{BSI, 0},
		{NDSI, 1},
		{NDGI, (green - red) / (green + red)},
	}

	for _, tt := range tests {
		t.Run(string(tt.index), func(t *testing.T) {
			def, err := Lookup(string(tt.index))
			require.NoError(t, err)

			result, err := Compute(def, dir, reader)
			require.NoError(t, err)
			assert.Equal(t, 2, result.Grid.Width)
			assert.Equal(t, 0, result.NonFinite)
			for _, v := range result.Grid.Data {
				assert.InDelta(t, tt.want, v, 1e-12)
			}
			assert.Len(t, result.BandPaths, len(def.Bands))
		})
	}
}

func TestAVI(t *testing.T) {
	dir, reader := constantScene(t, map[string]float64{"B4": 0.5, "B5": 0.8})
	def, err := Lookup("avi")
	require.NoError(t, err)

	result, err := Compute(def, dir, reader)
	require.NoError(t, err)
	assert.InDelta(t, math.Cbrt(0.8*0.5*0.3), result.Grid.Data[0], 1e-12)

	// a negative radicand has no real cube root under a fractional power
	dir, reader = constantScene(t, map[string]float64{"B4": 3, "B5": 6})
	result, err = Compute(def, dir, reader)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result.Grid.Data[0]))
	assert.Equal(t, 2, result.NonFinite)
}

func TestNDSIIsNaNWhereGreenEqualsSwir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20210115_B3.TIF"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20210115_B6.TIF"), nil, 0o644))
	reader := &fakeReader{values: map[string][]float64{
		"B3": {2, 4, 7},
		"B6": {5, 4, 1},
	}}

	def, err := Lookup("NDSI")
	require.NoError(t, err)
	result, err := Compute(def, dir, reader)
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Grid.Data[0])
	assert.True(t, math.IsNaN(result.Grid.Data[1]))
	assert.Equal(t, 1.0, result.Grid.Data[2])
	assert.Equal(t, 1, result.NonFinite)
}

func TestDivisionByZeroIsRecorded(t *testing.T) {
	dir, reader := constantScene(t, map[string]float64{"B3": 0, "B5": 0})
	def, err := Lookup("ndwi")
	require.NoError(t, err)

	result, err := Compute(def, dir, reader)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NonFinite)
}

func TestComputeMissingBand(t *testing.T) {
	dir, reader := constantScene(t, map[string]float64{"B3": 2})
	def, err := Lookup("ndwi")
	require.NoError(t, err)

	_, err = Compute(def, dir, reader)
	assert.ErrorIs(t, err, landsat.ErrBandNotFound)
	assert.Zero(t, reader.reads)
}

func TestComputeShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20210115_B3.TIF"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20210115_B5.TIF"), nil, 0o644))
	reader := &fakeReader{values: map[string][]float64{"B3": {1, 2}, "B5": {1, 2, 3}}}

	def, err := Lookup("ndwi")
	require.NoError(t, err)
	_, err = Compute(def, dir, reader)
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	_, err := Lookup("ndxx")
	assert.ErrorIs(t, err, ErrUnknownIndex)

	def, err := Lookup(" NDVI ")
	require.NoError(t, err)
	assert.Equal(t, NDVI, def.Name)
	_, err = Lookup("template")
	assert.ErrorIs(t, err, ErrUnknownIndex)
	assert.Len(t, Names(), 12)
	assert.Equal(t, "avi", Names()[0])
}
