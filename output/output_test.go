package output

import (
	"encoding/json"
	"image"
	"image/gif"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/lindex/internal/properties"
	"github.com/forest-guardian/lindex/internal/raster"
)

func rgb(img image.Image, x, y int) properties.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return properties.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

func TestValueToColor(t *testing.T) {
	assert.Equal(t, properties.ColorMap[0], valueToColor(0))
	assert.Equal(t, properties.ColorMap[2], valueToColor(0.5))
	assert.Equal(t, properties.ColorMap[4], valueToColor(1))
	assert.Equal(t, 0.5, normalize(3, 3, 3))
	assert.Equal(t, 0.0, normalize(-5, 0, 1))
}

func TestRender(t *testing.T) {
	grid := &raster.Grid{Width: 3, Height: 1, Data: []float64{-0.5, math.NaN(), 0.5}}

	img := NewVisualizer(0).Render(grid)
	require.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, properties.ColorMap[0], rgb(img, 0, 0))
	assert.Equal(t, properties.NoDataColor, rgb(img, 1, 0))
	assert.Equal(t, properties.ColorMap[4], rgb(img, 2, 0))
}

func TestRender_UpscalesSmallWindows(t *testing.T) {
	grid := &raster.Grid{Width: 2, Height: 1, Data: []float64{0, 1}}

	img := NewVisualizer(4).Render(grid)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
	assert.Equal(t, properties.ColorMap[0], rgb(img, 0, 3))
	assert.Equal(t, properties.ColorMap[4], rgb(img, 7, 0))
}

func writeFrames(t *testing.T, dir string, n int) []string {
	t.Helper()
	v := NewVisualizer(0)
	var paths []string
	for i := 0; i < n; i++ {
		grid := &raster.Grid{Width: 4, Height: 3, Data: make([]float64, 12)}
		for j := range grid.Data {
			grid.Data[j] = float64(j * (i + 1))
		}
		path := filepath.Join(dir, "visualizations", "2021011"+string(rune('0'+i))+"_ndwi.png")
		require.NoError(t, v.WriteVisualization(grid, path))
		paths = append(paths, path)
	}
	return paths
}

func TestSaveAnimation(t *testing.T) {
	dir := t.TempDir()
	paths := writeFrames(t, dir, 3)
	dest := filepath.Join(dir, "visualizations", properties.AnimationName)

	require.NoError(t, NewVisualizer(0).SaveAnimation(paths, properties.AnimationFPS, dest))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 3)
	assert.Equal(t, []int{500, 500, 500}, anim.Delay)
}

func TestSaveAnimation_NoFrames(t *testing.T) {
	err := NewVisualizer(0).SaveAnimation(nil, properties.AnimationFPS, filepath.Join(t.TempDir(), "final.gif"))
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestSaveVideo(t *testing.T) {
	dir := t.TempDir()
	paths := writeFrames(t, dir, 2)
	dest := filepath.Join(dir, "visualizations", properties.VideoName)

	require.NoError(t, NewVisualizer(0).SaveVideo(paths, 5, dest))
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ndwi", properties.ReportName)
	rows := []SceneReport{
		{Scene: "20210115", Verdict: "clear", Mode: 20, Mean: 21.5, Outcome: "written"},
		{Scene: "20210131", Verdict: "cloudy", Mode: 0, Mean: 50, Outcome: "skipped"},
	}

	require.NoError(t, WriteReport(rows, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "scene,verdict,mode,mean,non_finite_pixels"))
	assert.True(t, strings.HasPrefix(lines[2], "20210131,cloudy"))
}

func TestWriteFootprint(t *testing.T) {
	window, err := raster.NewWindow(1, 2, 3, 4)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), properties.FootprintName)

	require.NoError(t, WriteFootprint(window, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 1)
	assert.Equal(t, "Polygon", doc.Features[0].Geometry.Type)
}

type recordingWriter struct {
	dst string
}

func (w *recordingWriter) WriteGrid(_ *raster.Grid, _ raster.GeoReference, dst string) error {
	w.dst = dst
	return nil
}

func TestWriteRasterCreatesParent(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "ndwi", "raw", "20210115_ndwi.TIF")
	writer := &recordingWriter{}

	require.NoError(t, WriteRaster(writer, raster.NewGrid(1, 1), raster.GeoReference{}, dest))
	assert.Equal(t, dest, writer.dst)
	assert.DirExists(t, filepath.Dir(dest))
}
