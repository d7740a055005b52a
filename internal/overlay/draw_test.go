package overlay

import (
	"image"
	"image/color"
	"testing"

	"roverlay/internal/shape"
)

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func opaque(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func TestDraw_RectangleFillAndStroke(t *testing.T) {
	c := New(100, 100, 1)
	d := shape.Drawable{
		Shape: shape.Rectangle{X: 20, Y: 20, Width: 40, Height: 40},
		Style: shape.Style{
			Fill:        opaque(255, 0, 0),
			Stroke:      opaque(0, 0, 255),
			StrokeWidth: 2,
		},
	}
	if err := c.Draw(d); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	img := c.Image()
	if got := nrgbaAt(img, 40, 40); got.R != 255 || got.G != 0 || got.B != 0 {
		t.Errorf("interior pixel = %v, want red fill", got)
	}
	if got := nrgbaAt(img, 40, 20); got.B < 200 {
		t.Errorf("top edge pixel = %v, want blue stroke", got)
	}
	if got := nrgbaAt(img, 5, 5); got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("background pixel = %v, want untouched black", got)
	}
}

func TestDraw_ScalesCoordinates(t *testing.T) {
	// Shape coordinates are in full-resolution space; scale 10 maps a
	// 400x400 rectangle onto 40x40 overlay pixels.
	c := New(100, 100, 10)
	d := shape.Drawable{
		Shape: shape.Rectangle{X: 200, Y: 200, Width: 400, Height: 400},
		Style: shape.Style{Fill: opaque(0, 255, 0), Stroke: opaque(0, 255, 0), StrokeWidth: 1},
	}
	if err := c.Draw(d); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	img := c.Image()
	if got := nrgbaAt(img, 40, 40); got.G != 255 {
		t.Errorf("pixel inside scaled rect = %v, want green", got)
	}
	if got := nrgbaAt(img, 10, 10); got.G != 0 {
		t.Errorf("pixel outside scaled rect = %v, want black", got)
	}
}

func TestDraw_EllipseCenterFilled(t *testing.T) {
	c := New(100, 100, 1)
	d := shape.Drawable{
		Shape: shape.Ellipse{X: 50, Y: 50, RadiusX: 20, RadiusY: 10},
		Style: shape.Style{Fill: opaque(255, 255, 255), Stroke: opaque(255, 0, 0), StrokeWidth: 1},
	}
	if err := c.Draw(d); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if got := nrgbaAt(c.Image(), 50, 50); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("ellipse center = %v, want white fill", got)
	}
	if got := nrgbaAt(c.Image(), 50, 25); got != opaque(0, 0, 0) {
		t.Errorf("outside ellipse = %v, want black", got)
	}
}

func TestDraw_Line(t *testing.T) {
	c := New(50, 50, 1)
	d := shape.Drawable{
		Shape: shape.Line{X1: 10, Y1: 25, X2: 40, Y2: 25},
		Style: shape.Style{Stroke: opaque(255, 255, 0), StrokeWidth: 3},
	}
	if err := c.Draw(d); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if got := nrgbaAt(c.Image(), 25, 25); got.R < 200 || got.G < 200 {
		t.Errorf("line center = %v, want yellow stroke", got)
	}
}

func TestDraw_PolygonAndPolyline(t *testing.T) {
	c := New(60, 60, 1)
	poly := shape.Drawable{
		Shape: shape.Polygon{Points: []shape.Vertex{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 50}, {X: 10, Y: 50}}},
		Style: shape.Style{Fill: opaque(0, 0, 255), Stroke: opaque(255, 255, 255), StrokeWidth: 1},
	}
	if err := c.Draw(poly); err != nil {
		t.Fatalf("Draw polygon failed: %v", err)
	}
	if got := nrgbaAt(c.Image(), 30, 30); got.B != 255 {
		t.Errorf("polygon interior = %v, want blue fill", got)
	}

	c2 := New(60, 60, 1)
	pl := shape.Drawable{
		Shape: shape.Polyline{Points: []shape.Vertex{{X: 5, Y: 30}, {X: 55, Y: 30}}},
		Style: shape.Style{Stroke: opaque(255, 0, 255), StrokeWidth: 3},
	}
	if err := c2.Draw(pl); err != nil {
		t.Fatalf("Draw polyline failed: %v", err)
	}
	if got := nrgbaAt(c2.Image(), 30, 30); got.R < 200 || got.B < 200 {
		t.Errorf("polyline pixel = %v, want magenta stroke", got)
	}

	if err := c2.Draw(shape.Drawable{Shape: shape.Polygon{Points: []shape.Vertex{{X: 1, Y: 1}}}}); err == nil {
		t.Error("expected error for degenerate polygon")
	}
	if err := c2.Draw(shape.Drawable{Shape: shape.Polyline{Points: []shape.Vertex{{X: 1, Y: 1}}}}); err == nil {
		t.Error("expected error for degenerate polyline")
	}
}

func TestDraw_PointMarker(t *testing.T) {
	c := New(40, 40, 1)
	d := shape.Drawable{
		Shape: shape.Point{X: 20, Y: 20},
		Style: shape.Style{Stroke: shape.DefaultStroke},
	}
	if err := c.Draw(d); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	// The marker circle makes the point visible beyond its single pixel.
	touched := 0
	img := c.Image()
	for y := 15; y <= 25; y++ {
		for x := 15; x <= 25; x++ {
			px := nrgbaAt(img, x, y)
			if px.R > 100 && px.G > 100 {
				touched++
			}
		}
	}
	if touched < 5 {
		t.Errorf("expected a visible point marker, only %d pixels touched", touched)
	}
}

func TestDraw_Label(t *testing.T) {
	c := New(120, 40, 1)
	d := shape.Drawable{
		Shape: shape.Label{X: 10, Y: 30, FontSize: 18},
		Text:  "vessel",
		Style: shape.Style{Stroke: opaque(255, 255, 255)},
	}
	if err := c.Draw(d); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	// Text rendering must leave non-black pixels behind.
	img := c.Image()
	touched := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := nrgbaAt(img, x, y)
			if px.R > 0 || px.G > 0 || px.B > 0 {
				touched++
			}
		}
	}
	if touched == 0 {
		t.Error("label drew nothing")
	}

	// Empty label text is a no-op, not an error.
	if err := c.Draw(shape.Drawable{Shape: shape.Label{X: 1, Y: 1, FontSize: 10}}); err != nil {
		t.Errorf("empty label should be a no-op, got %v", err)
	}
}
