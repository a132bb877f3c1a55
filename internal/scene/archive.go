// Package scene turns raw Landsat archives into windowed, date-keyed scene
// directories.
package scene

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/forest-guardian/lindex/internal/landsat"
	"github.com/forest-guardian/lindex/internal/log"
	"github.com/forest-guardian/lindex/internal/utils"
)

// ArchiveSource lists and unpacks the archives found in an input directory.
type ArchiveSource interface {
	List(dir string) ([]string, error)
	Extract(archive, dest string) error
}

var archiveExtensions = []string{".tar.gz", ".tgz", ".tar"}

// ArchiveBaseName strips a known archive extension from a file name.
func ArchiveBaseName(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) && len(name) > len(ext) {
			return name[:len(name)-len(ext)], true
		}
	}
	return "", false
}

// TarArchiveSource reads plain and gzip-compressed tarballs.
type TarArchiveSource struct{}

// List returns the archives directly under dir, in directory order.
func (TarArchiveSource) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var archives []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := ArchiveBaseName(entry.Name()); ok {
			archives = append(archives, filepath.Join(dir, entry.Name()))
		}
	}
	return archives, nil
}

// Extract unpacks archive into dest. Entries that would land outside dest
// are rejected.
func (TarArchiveSource) Extract(archive, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if lower := strings.ToLower(archive); strings.HasSuffix(lower, ".gz") || strings.HasSuffix(lower, ".tgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	root := filepath.Clean(dest)
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		target := filepath.Join(root, hdr.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("entry %q escapes %s", hdr.Name, dest)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := utils.EnsureDir(target); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(tr, target, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		default:
			log.Debugw("Skipping tar entry", "name", hdr.Name, "type", hdr.Typeflag)
		}
	}
}

func writeEntry(r io.Reader, target string, perm os.FileMode) error {
	if err := utils.EnsureDir(filepath.Dir(target)); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return out.Close()
}

// ExtractArchives unpacks every archive in inputDir into a sibling directory
// named after the archive. Archives whose directory already exists are
// skipped, so running twice does no work the second time. It returns the
// number of archives extracted.
func ExtractArchives(source ArchiveSource, inputDir string) (int, error) {
	archives, err := source.List(inputDir)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", landsat.ErrArchiveExtraction, err)
	}

	extracted := 0
	for _, archive := range archives {
		base, ok := ArchiveBaseName(filepath.Base(archive))
		if !ok {
			continue
		}
		dest := filepath.Join(filepath.Dir(archive), base)
		if utils.Exists(dest) {
			log.Debugw("Archive already extracted", "archive", archive, "dest", dest)
			continue
		}

		// hidden until complete; raw scene discovery ignores dot directories
		partial := filepath.Join(filepath.Dir(archive), "."+base+".partial")
		if err := os.RemoveAll(partial); err != nil {
			return extracted, fmt.Errorf("%w: %v", landsat.ErrArchiveExtraction, err)
		}
		if err := utils.EnsureDir(partial); err != nil {
			return extracted, fmt.Errorf("%w: %v", landsat.ErrArchiveExtraction, err)
		}
		if err := source.Extract(archive, partial); err != nil {
			_ = os.RemoveAll(partial)
			return extracted, fmt.Errorf("%w: %s: %v", landsat.ErrArchiveExtraction, archive, err)
		}
		if err := os.Rename(partial, dest); err != nil {
			return extracted, fmt.Errorf("%w: %v", landsat.ErrArchiveExtraction, err)
		}

		log.Infow("Extracted archive", "archive", archive, "dest", dest)
		extracted++
	}
	return extracted, nil
}
