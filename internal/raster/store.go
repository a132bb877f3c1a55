// Package raster reads, crops and writes single-band GeoTIFFs through GDAL.
package raster

import (
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
)

// GeoReference is what a derived raster inherits from its source band.
type GeoReference struct {
	Transform  [6]float64
	Projection string
	Width      int
	Height     int
}

// PixelSize returns the x and y resolution in CRS units.
func (r GeoReference) PixelSize() (float64, float64) {
	return r.Transform[1], r.Transform[5]
}

// Store is the raster I/O surface the pipeline depends on. Every call opens
// and closes its own datasets.
type Store interface {
	ReadGrid(path string) (*Grid, error)
	GeoReference(path string) (GeoReference, error)
	Crop(src, dst string, window Window) error
	WriteGrid(grid *Grid, ref GeoReference, dst string) error
	AssignBounds(src, dst string, window Window) error
}

// GDALStore implements Store with godal.
type GDALStore struct{}

// NewGDALStore registers the GDAL drivers once and returns a store.
func NewGDALStore() *GDALStore {
	godal.RegisterAll()
	return &GDALStore{}
}

func open(path string) (*godal.Dataset, error) {
	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return ds, nil
}

// ReadGrid reads the first band of a raster into a float grid.
func (s *GDALStore) ReadGrid(path string) (*Grid, error) {
	ds, err := open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("%s has no raster bands", path)
	}

	structure := ds.Structure()
	width, height := structure.SizeX, structure.SizeY
	data := make([]float64, width*height)
	if err := bands[0].Read(0, 0, data, width, height); err != nil {
		return nil, fmt.Errorf("failed to read raster data from %s: %w", path, err)
	}

	return &Grid{
		Width:  width,
		Height: height,
		Data:   data,
		Bits:   sampleBits(bands[0].Structure().DataType),
	}, nil
}

// GeoReference returns the geotransform, projection and size of a raster.
func (s *GDALStore) GeoReference(path string) (GeoReference, error) {
	ds, err := open(path)
	if err != nil {
		return GeoReference{}, err
	}
	defer ds.Close()

	transform, err := ds.GeoTransform()
	if err != nil {
		return GeoReference{}, fmt.Errorf("failed to get GeoTransform of %s: %w", path, err)
	}
	structure := ds.Structure()
	return GeoReference{
		Transform:  transform,
		Projection: ds.Projection(),
		Width:      structure.SizeX,
		Height:     structure.SizeY,
	}, nil
}

// Crop writes the part of src inside the window to dst as a GeoTIFF.
func (s *GDALStore) Crop(src, dst string, window Window) error {
	switches := append([]string{"-of", "GTiff", "-projwin"}, window.upperLeftLowerRight()...)
	return s.translate(src, dst, switches)
}

// AssignBounds copies src to a GeoTIFF at dst with the window as its extent.
// Used to georeference rendered images.
func (s *GDALStore) AssignBounds(src, dst string, window Window) error {
	switches := append([]string{"-of", "GTiff", "-a_ullr"}, window.upperLeftLowerRight()...)
	return s.translate(src, dst, switches)
}

func (s *GDALStore) translate(src, dst string, switches []string) error {
	ds, err := open(src)
	if err != nil {
		return err
	}
	defer ds.Close()

	out, err := ds.Translate(dst, switches)
	if err != nil {
		return fmt.Errorf("failed to translate %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// WriteGrid writes a derived grid as a single-band Float32 GeoTIFF.
func (s *GDALStore) WriteGrid(grid *Grid, ref GeoReference, dst string) error {
	return writeBand(grid, ref, dst, godal.Float32)
}

func writeBand(grid *Grid, ref GeoReference, dst string, dtype godal.DataType) (err error) {
	if grid.Width*grid.Height != len(grid.Data) {
		return errors.New("grid data does not match its dimensions")
	}

	ds, err := godal.Create(godal.GTiff, dst, 1, dtype, grid.Width, grid.Height)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dst, cerr)
		}
	}()

	if err := ds.SetGeoTransform(ref.Transform); err != nil {
		return fmt.Errorf("failed to set GeoTransform on %s: %w", dst, err)
	}
	if ref.Projection != "" {
		if err := ds.SetProjection(ref.Projection); err != nil {
			return fmt.Errorf("failed to set projection on %s: %w", dst, err)
		}
	}
	if err := ds.Bands()[0].Write(0, 0, grid.Data, grid.Width, grid.Height); err != nil {
		return fmt.Errorf("failed to write raster data to %s: %w", dst, err)
	}
	return nil
}

func sampleBits(dtype godal.DataType) int {
	switch dtype {
	case godal.Byte:
		return 8
	case godal.UInt16, godal.Int16:
		return 16
	case godal.UInt32, godal.Int32, godal.Float32:
		return 32
	default:
		return 64
	}
}
