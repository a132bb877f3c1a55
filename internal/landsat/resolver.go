package landsat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveBand locates the single file holding the given band in a windowed scene.
// A band file name ends with "_<id>.TIF"; zero or several matches are an error.
func ResolveBand(sceneDir string, band Band) (string, error) {
	id := band.ID()
	if id == "" {
		return "", fmt.Errorf("%w: unknown logical band %q", ErrBandNotFound, band)
	}
	return resolveBandID(sceneDir, id)
}

func resolveBandID(sceneDir, id string) (string, error) {
	entries, err := os.ReadDir(sceneDir)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrBandNotFound, sceneDir, err)
	}

	suffix := "_" + strings.ToUpper(id)
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() || !IsBandFile(entry.Name()) {
			continue
		}
		base := strings.ToUpper(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if strings.HasSuffix(base, suffix) {
			matches = append(matches, filepath.Join(sceneDir, entry.Name()))
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: no %s file in %s", ErrBandNotFound, id, sceneDir)
	default:
		return "", fmt.Errorf("%w: %d candidate %s files in %s", ErrBandNotFound, len(matches), id, sceneDir)
	}
}

// ResolveReference locates the first of ReferenceBands present in the scene.
func ResolveReference(sceneDir string) (string, Band, error) {
	var firstErr error
	for _, band := range ReferenceBands {
		path, err := ResolveBand(sceneDir, band)
		if err == nil {
			return path, band, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", "", firstErr
}

// ResolveBands resolves every band in the set, failing on the first one missing.
func ResolveBands(sceneDir string, bands []Band) (map[Band]string, error) {
	paths := make(map[Band]string, len(bands))
	for _, band := range bands {
		path, err := ResolveBand(sceneDir, band)
		if err != nil {
			return nil, err
		}
		paths[band] = path
	}
	return paths, nil
}
