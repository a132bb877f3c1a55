package output

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"
	"github.com/nfnt/resize"

	"github.com/forest-guardian/lindex/internal/utils"
)

var ErrNoFrames = errors.New("no frames to animate")

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// loadFrames decodes every image, scaling later frames to the size of the first.
func loadFrames(imagePaths []string) ([]image.Image, error) {
	if len(imagePaths) == 0 {
		return nil, ErrNoFrames
	}
	frames := make([]image.Image, 0, len(imagePaths))
	var width, height int
	for i, path := range imagePaths {
		img, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			width, height = img.Bounds().Dx(), img.Bounds().Dy()
		} else if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
			img = resize.Resize(uint(width), uint(height), img, resize.NearestNeighbor)
		}
		frames = append(frames, img)
	}
	return frames, nil
}

// SaveAnimation writes the images, in the given order, to an animated GIF
// shown at fps frames per second.
func (v *Visualizer) SaveAnimation(imagePaths []string, fps float64, outputPath string) error {
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %v", fps)
	}
	frames, err := loadFrames(imagePaths)
	if err != nil {
		return err
	}

	delay := int(math.Round(100 / fps))
	anim := &gif.GIF{}
	for _, img := range frames {
		paletted := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.Draw(paletted, paletted.Rect, img, img.Bounds().Min, draw.Src)
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
	}

	if err := utils.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode animation: %w", err)
	}
	return f.Close()
}

// SaveVideo writes the images to a motion JPEG AVI. Each image is repeated so
// it stays on screen for secondsPerFrame seconds at 1 fps.
func (v *Visualizer) SaveVideo(imagePaths []string, secondsPerFrame int, outputPath string) error {
	if secondsPerFrame < 1 {
		secondsPerFrame = 1
	}
	frames, err := loadFrames(imagePaths)
	if err != nil {
		return err
	}
	bounds := frames[0].Bounds()

	if err := utils.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return err
	}
	writer, err := mjpeg.New(outputPath, int32(bounds.Dx()), int32(bounds.Dy()), 1)
	if err != nil {
		return err
	}

	for _, img := range frames {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
			writer.Close()
			return err
		}
		for i := 0; i < secondsPerFrame; i++ {
			if err := writer.AddFrame(buf.Bytes()); err != nil {
				writer.Close()
				return err
			}
		}
	}

	return writer.Close()
}
