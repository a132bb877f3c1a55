package landsat

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const dateLayout = "20060102"

// RawScenePrefix starts every raw Landsat product folder (LC08_..., LE07_...).
const RawScenePrefix = "L"

var sceneKeyPattern = regexp.MustCompile(`^(\d{8})(_\d+)?$`)

// IsRawSceneName reports whether a folder name looks like an extracted Landsat product.
func IsRawSceneName(name string) bool {
	return strings.HasPrefix(name, RawScenePrefix)
}

// AcquisitionDate extracts the date token from a product name such as
// LC08_L1TP_042034_20210115_20210125_01_T1. The token is the fourth from the end.
func AcquisitionDate(name string) (string, error) {
	parts := strings.Split(filepath.Base(name), "_")
	if len(parts) < 4 {
		return "", fmt.Errorf("%w: %s", ErrInvalidSceneName, name)
	}
	date := parts[len(parts)-4]
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", fmt.Errorf("%w: %s: date token %q", ErrInvalidSceneName, name, date)
	}
	return date, nil
}

// BandIDFromFileName returns the band id suffix of a band file name,
// e.g. "B3" for LC08_L1TP_042034_20210115_20210125_01_T1_B3.TIF and
// "B6_VCID_1" for the Landsat 7 thermal bands.
func BandIDFromFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.Split(base, "_")
	n := len(parts)
	if n >= 3 && strings.EqualFold(parts[n-2], "VCID") {
		return strings.Join(parts[n-3:], "_")
	}
	return parts[n-1]
}

// IsSceneKey reports whether a folder name is a windowed scene key: a date,
// optionally followed by a collision counter.
func IsSceneKey(name string) bool {
	m := sceneKeyPattern.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	_, err := time.Parse(dateLayout, m[1])
	return err == nil
}

// SceneDate parses the acquisition date of a scene key.
func SceneDate(key string) (time.Time, error) {
	m := sceneKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidSceneName, key)
	}
	return time.Parse(dateLayout, m[1])
}

// IsBandFile reports whether a file name is a GeoTIFF band.
func IsBandFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".tif")
}
