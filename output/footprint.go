package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"

	"github.com/forest-guardian/lindex/internal/raster"
	"github.com/forest-guardian/lindex/internal/utils"
)

// WriteFootprint saves the bounding window as a GeoJSON feature collection.
func WriteFootprint(window raster.Window, path string) error {
	fc := geojson.NewFeatureCollection()
	fc.Append(window.Feature())

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode footprint: %w", err)
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
