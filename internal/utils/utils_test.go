package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ndwi", "raw")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
	assert.True(t, Exists(dir))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Error(t, EnsureDir(file))
}

func TestSortByDate(t *testing.T) {
	type frame struct {
		name string
		date time.Time
	}
	day := func(d int) time.Time { return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC) }
	frames := []frame{{"c", day(20)}, {"a", day(3)}, {"b1", day(10)}, {"b2", day(10)}}

	SortByDate(frames, func(f frame) time.Time { return f.date }, true)

	var names []string
	for _, f := range frames {
		names = append(names, f.name)
	}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, names)

	SortByDate(frames, func(f frame) time.Time { return f.date }, false)
	assert.Equal(t, "c", frames[0].name)
}
