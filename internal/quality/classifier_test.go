package quality

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/forest-guardian/lindex/internal/log"
	"github.com/forest-guardian/lindex/internal/raster"
)

type countingReader struct {
	grid  *raster.Grid
	err   error
	reads int
}

func (r *countingReader) ReadGrid(string) (*raster.Grid, error) {
	r.reads++
	return r.grid, r.err
}

func TestClassify_DisabledNeverReads(t *testing.T) {
	reader := &countingReader{err: errors.New("must not be called")}

	a, err := NewClassifier(reader).Classify("/nowhere/20210115_B1.TIF", Disabled)
	require.NoError(t, err)
	assert.Equal(t, Clear, a.Verdict)
	assert.True(t, a.Skipped)
	assert.Zero(t, reader.reads)
}

func TestClassify_AllZeroRejectedByMean(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer log.Replace(zap.New(core))()
	reader := &countingReader{grid: raster.Filled(10, 10, 8, 0)}

	a, err := NewClassifier(reader).Classify("b1.TIF", 0.7)
	require.NoError(t, err)
	assert.Equal(t, Cloudy, a.Verdict)
	assert.Equal(t, 0.0, a.Mode)
	assert.Equal(t, 0, a.AboveMode)
	assert.Contains(t, a.Reason, "below")

	flagged := logs.FilterMessageSnippet("mode is 0").All()
	require.Len(t, flagged, 1)
	assert.Equal(t, "b1.TIF", flagged[0].ContextMap()["path"])
}

func TestClassify_NonZeroModeIsNotFlagged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer log.Replace(zap.New(core))()
	reader := &countingReader{grid: raster.Filled(10, 10, 8, 20)}

	_, err := NewClassifier(reader).Classify("b1.TIF", 0.7)
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessageSnippet("mode is 0").Len())
}

func TestClassify_BrightSceneIsCloudy(t *testing.T) {
	// 16-bit samples of 12800 decode to intensity 50
	reader := &countingReader{grid: raster.Filled(4, 4, 16, 12800)}

	a, err := NewClassifier(reader).Classify("b1.TIF", 0.7)
	require.NoError(t, err)
	assert.Equal(t, Cloudy, a.Verdict)
	assert.Equal(t, 50.0, a.Mean)
	assert.Contains(t, a.Reason, "above")
}

func TestClassify_Clear(t *testing.T) {
	g := raster.Filled(10, 10, 8, 20)
	g.Data[0] = 30
	reader := &countingReader{grid: g}

	a, err := NewClassifier(reader).Classify("b1.TIF", 0.7)
	require.NoError(t, err)
	assert.Equal(t, Clear, a.Verdict)
	assert.Equal(t, 20.0, a.Mode)
	assert.Equal(t, 1, a.AboveMode)
	assert.Equal(t, 100, a.Pixels)
}

func TestClassify_TooManyAboveMode(t *testing.T) {
	g := raster.Filled(10, 1, 8, 20)
	for i := 6; i < 10; i++ {
		g.Data[i] = 25
	}
	reader := &countingReader{grid: g}

	// 4 of 10 above the mode: cloudy at 0.3, clear at 0.5
	a, err := NewClassifier(reader).Classify("b1.TIF", 0.3)
	require.NoError(t, err)
	assert.Equal(t, Cloudy, a.Verdict)

	a, err = NewClassifier(reader).Classify("b1.TIF", 0.5)
	require.NoError(t, err)
	assert.Equal(t, Clear, a.Verdict)
}

func TestClassify_ReadError(t *testing.T) {
	reader := &countingReader{err: errors.New("corrupt")}

	_, err := NewClassifier(reader).Classify("b1.TIF", 0.7)
	assert.Error(t, err)
}

func TestClassify_EmptyBand(t *testing.T) {
	reader := &countingReader{grid: raster.NewGrid(0, 0)}

	_, err := NewClassifier(reader).Classify("b1.TIF", 0.7)
	assert.ErrorIs(t, err, errEmptyBand)
}

func TestClassify_ModeTieTakesFirstValue(t *testing.T) {
	g := &raster.Grid{Width: 5, Height: 1, Data: []float64{30, 30, 20, 20, 25}, Bits: 8}
	reader := &countingReader{grid: g}
	classifier := NewClassifier(reader)

	for i := 0; i < 50; i++ {
		a, err := classifier.Classify("b1.TIF", 0.5)
		require.NoError(t, err)
		assert.Equal(t, 30.0, a.Mode)
		assert.Equal(t, 0, a.AboveMode)
		assert.Equal(t, Clear, a.Verdict)
	}

	g.Data = []float64{20, 20, 30, 30, 25}
	a, err := classifier.Classify("b1.TIF", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 20.0, a.Mode)
	assert.Equal(t, Cloudy, a.Verdict)
}
