package overlay

import (
	"fmt"

	"roverlay/internal/shape"
)

// pointMarkerRadius is the radius of the circle drawn around point shapes so
// single pixels stay visible on a scaled-down overlay.
const pointMarkerRadius = 3

// Draw rasterizes one translated shape onto the canvas, dividing all
// coordinates by the canvas scale.
func (c *Canvas) Draw(d shape.Drawable) error {
	switch s := d.Shape.(type) {
	case shape.Rectangle:
		c.dc.DrawRectangle(c.px(s.X), c.px(s.Y), c.px(s.Width), c.px(s.Height))
		c.fillAndStroke(d.Style)

	case shape.Ellipse:
		c.dc.DrawEllipse(c.px(s.X), c.px(s.Y), c.px(s.RadiusX), c.px(s.RadiusY))
		c.fillAndStroke(d.Style)

	case shape.Line:
		c.dc.DrawLine(c.px(s.X1), c.px(s.Y1), c.px(s.X2), c.px(s.Y2))
		c.strokeOnly(d.Style)

	case shape.Polyline:
		if len(s.Points) < 2 {
			return fmt.Errorf("polyline needs at least 2 points, got %d", len(s.Points))
		}
		c.dc.MoveTo(c.px(s.Points[0].X), c.px(s.Points[0].Y))
		for _, p := range s.Points[1:] {
			c.dc.LineTo(c.px(p.X), c.px(p.Y))
		}
		c.strokeOnly(d.Style)

	case shape.Polygon:
		if len(s.Points) < 3 {
			return fmt.Errorf("polygon needs at least 3 points, got %d", len(s.Points))
		}
		c.dc.MoveTo(c.px(s.Points[0].X), c.px(s.Points[0].Y))
		for _, p := range s.Points[1:] {
			c.dc.LineTo(c.px(p.X), c.px(p.Y))
		}
		c.dc.ClosePath()
		c.fillAndStroke(d.Style)

	case shape.Point:
		// A bare pixel plus a marker circle around it.
		c.dc.SetColor(d.Style.Stroke)
		c.dc.DrawPoint(c.px(s.X), c.px(s.Y), 0.5)
		c.dc.Fill()
		c.dc.DrawCircle(c.px(s.X), c.px(s.Y), pointMarkerRadius)
		c.dc.SetLineWidth(1)
		c.dc.Stroke()

	case shape.Label:
		if d.Text == "" {
			return nil
		}
		size := s.FontSize / c.scale
		if size < 1 {
			size = 1
		}
		face, err := labelFace(size)
		if err != nil {
			return err
		}
		c.dc.SetFontFace(face)
		c.dc.SetColor(d.Style.Stroke)
		c.dc.DrawString(d.Text, c.px(s.X), c.px(s.Y))

	default:
		return fmt.Errorf("cannot draw shape kind %q", d.Shape.Kind())
	}
	return nil
}

// px maps a full-resolution coordinate onto the overlay.
func (c *Canvas) px(v float64) float64 {
	return v / c.scale
}

// fillAndStroke fills the current path, then outlines it.
func (c *Canvas) fillAndStroke(st shape.Style) {
	c.dc.SetColor(st.Fill)
	c.dc.FillPreserve()
	c.dc.SetColor(st.Stroke)
	c.dc.SetLineWidth(st.StrokeWidth)
	c.dc.Stroke()
}

// strokeOnly outlines the current path without filling it.
func (c *Canvas) strokeOnly(st shape.Style) {
	c.dc.SetColor(st.Stroke)
	c.dc.SetLineWidth(st.StrokeWidth)
	c.dc.Stroke()
}
