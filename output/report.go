package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/forest-guardian/lindex/internal/utils"
)

// SceneReport is one row of the run report.
type SceneReport struct {
	Scene         string  `csv:"scene"`
	Verdict       string  `csv:"verdict"`
	Mode          float64 `csv:"mode"`
	Mean          float64 `csv:"mean"`
	NonFinite     int     `csv:"non_finite_pixels"`
	Raster        string  `csv:"raster"`
	Visualization string  `csv:"visualization"`
	Outcome       string  `csv:"outcome"`
	Relocated     bool    `csv:"relocated"`
}

// WriteReport writes the rows as CSV, replacing any previous report.
func WriteReport(rows []SceneReport, path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
