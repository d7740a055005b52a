package overlay

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"roverlay/internal/shape"
)

func TestNew_BlackBackground(t *testing.T) {
	c := New(10, 8, 1)
	if b := c.Bounds(); b.Dx() != 10 || b.Dy() != 8 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if got := nrgbaAt(c.Image(), 5, 5); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("background = %v, want opaque black", got)
	}
}

func TestForImage_PreservesBackground(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			src.Set(x, y, color.RGBA{10, 20, 30, 255})
		}
	}
	c := ForImage(src, 1)
	if got := nrgbaAt(c.Image(), 10, 10); got.R != 10 || got.G != 20 || got.B != 30 {
		t.Errorf("thumbnail pixel = %v, want preserved", got)
	}
}

func TestMakeBlackTransparent(t *testing.T) {
	c := New(20, 20, 1)
	d := shape.Drawable{
		Shape: shape.Rectangle{X: 5, Y: 5, Width: 10, Height: 10},
		Style: shape.Style{Fill: opaque(200, 0, 0), Stroke: opaque(200, 0, 0), StrokeWidth: 1},
	}
	if err := c.Draw(d); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	out := MakeBlackTransparent(c.Image())

	bg := out.NRGBAAt(1, 1)
	if bg.A != 0 {
		t.Errorf("black background must become transparent, got %v", bg)
	}
	fg := out.NRGBAAt(10, 10)
	if fg.A != 255 || fg.R != 200 {
		t.Errorf("drawn pixels must survive, got %v", fg)
	}
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	c := New(16, 16, 1)

	pngPath := filepath.Join(dir, "overlay.png")
	if err := c.Save(pngPath); err != nil {
		t.Fatalf("Save png failed: %v", err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("failed to reopen overlay: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("saved file is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("unexpected decoded bounds %v", img.Bounds())
	}

	if err := c.Save(filepath.Join(dir, "overlay.jpg")); err != nil {
		t.Errorf("Save jpg failed: %v", err)
	}
	if err := c.Save(filepath.Join(dir, "overlay.bmp")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestNormalizeScale(t *testing.T) {
	if c := New(4, 4, 0); c.scale != 1 {
		t.Errorf("zero scale should normalize to 1, got %v", c.scale)
	}
	if c := New(4, 4, -2); c.scale != 1 {
		t.Errorf("negative scale should normalize to 1, got %v", c.scale)
	}
}
