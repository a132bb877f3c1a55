package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/forest-guardian/lindex/internal/landsat"
	"github.com/forest-guardian/lindex/internal/log"
	"github.com/forest-guardian/lindex/internal/raster"
)

// Cropper cuts a band file down to the bounding window.
type Cropper interface {
	Crop(src, dst string, window raster.Window) error
}

// RawScenes lists the extracted Landsat product directories under inputDir.
func RawScenes(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", inputDir, err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && landsat.IsRawSceneName(entry.Name()) {
			dirs = append(dirs, filepath.Join(inputDir, entry.Name()))
		}
	}
	return dirs, nil
}

// Keys lists the windowed scene directories directly under dir.
func Keys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() && landsat.IsSceneKey(entry.Name()) {
			keys = append(keys, entry.Name())
		}
	}
	return keys, nil
}

// reserveKey creates the first free directory among <date>, <date>_1, ...
func reserveKey(outDir, date string) (string, error) {
	for n := 0; ; n++ {
		key := date
		if n > 0 {
			key = date + "_" + strconv.Itoa(n)
		}
		err := os.Mkdir(filepath.Join(outDir, key), os.ModePerm)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to create scene directory %s: %w", key, err)
		}
	}
}

// WindowScene crops every band of a raw scene into a new scene directory under
// outDir and returns its key. Band files are renamed <key>_<band id>.TIF,
// with Landsat 7 ids mapped onto Landsat 8 ones.
func WindowScene(cropper Cropper, rawDir, outDir string, window raster.Window) (string, error) {
	name := filepath.Base(rawDir)
	date, err := landsat.AcquisitionDate(name)
	if err != nil {
		return "", err
	}
	sensor := landsat.SensorFromSceneName(name)

	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", rawDir, err)
	}

	key, err := reserveKey(outDir, date)
	if err != nil {
		return "", err
	}
	sceneDir := filepath.Join(outDir, key)

	for _, entry := range entries {
		if entry.IsDir() || !landsat.IsBandFile(entry.Name()) {
			continue
		}
		id := sensor.NormalizeBandID(landsat.BandIDFromFileName(entry.Name()))
		dst := filepath.Join(sceneDir, fmt.Sprintf("%s_%s.TIF", key, id))
		if _, err := os.Stat(dst); err == nil {
			log.Warnw("Duplicate band id in raw scene, keeping the first", "scene", name, "file", entry.Name(), "band", id)
			continue
		}
		if err := cropper.Crop(filepath.Join(rawDir, entry.Name()), dst, window); err != nil {
			return key, fmt.Errorf("failed to window %s: %w", entry.Name(), err)
		}
	}

	log.Debugw("Windowed scene", "raw", name, "key", key, "sensor", sensor)
	return key, nil
}
