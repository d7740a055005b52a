// Package overlay rasterizes translated ROI shapes onto a canvas, either a
// fetched thumbnail or a blank background, and encodes the result.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
)

// Canvas wraps a drawing context together with the coordinate scale mapping
// full-resolution image coordinates onto the overlay.
type Canvas struct {
	dc    *gg.Context
	scale float64
}

// New creates a blank canvas of the given overlay dimensions. The background
// starts out black; MakeBlackTransparent turns it transparent after drawing,
// so untouched background never survives into an --exclude-image overlay.
func New(w, h int, scale float64) *Canvas {
	dc := gg.NewContext(w, h)
	dc.SetColor(color.Black)
	dc.Clear()
	return &Canvas{dc: dc, scale: normalizeScale(scale)}
}

// ForImage creates a canvas backed by an existing image (the thumbnail).
func ForImage(img image.Image, scale float64) *Canvas {
	return &Canvas{dc: gg.NewContextForImage(img), scale: normalizeScale(scale)}
}

func normalizeScale(scale float64) float64 {
	if scale <= 0 {
		return 1
	}
	return scale
}

// Image returns the rendered overlay.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// Bounds returns the canvas dimensions.
func (c *Canvas) Bounds() image.Rectangle {
	return c.dc.Image().Bounds()
}

// EncodePNG writes the overlay as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.dc.Image())
}

// Save writes the overlay to path, choosing the encoder from the extension
// (.png, .jpg or .jpeg).
func (c *Canvas) Save(path string) error {
	return SaveImage(c.dc.Image(), path)
}

// SaveImage writes an image to path, choosing the encoder from the extension.
func SaveImage(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create overlay file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", "":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		return fmt.Errorf("unsupported overlay format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return nil
}

// MakeBlackTransparent replaces pure-black pixels with fully transparent
// white, turning a blank-background overlay into a compositable layer.
func MakeBlackTransparent(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if px.R == 0 && px.G == 0 && px.B == 0 {
				px = color.NRGBA{R: 255, G: 255, B: 255, A: 0}
			}
			out.SetNRGBA(x, y, px)
		}
	}
	return out
}
