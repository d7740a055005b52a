// Package shape translates raw OMERO API shapes into the seven drawing
// primitives the overlay renderer understands, carrying fill/stroke styling
// and plane coordinates along.
package shape

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"roverlay/internal/omero"
)

// defaultStrokeWidth applies when the authoring tool never stored one
// (QuPath exports shapes without a stroke width).
const defaultStrokeWidth = 1

// defaultFontSize applies to labels without an explicit font size.
const defaultFontSize = 12

// Shape is one of the seven drawing primitives.
type Shape interface {
	Kind() string
}

// Vertex is a 2-D point in image pixel coordinates.
type Vertex struct {
	X, Y float64
}

type Point struct {
	X, Y float64
}

type Line struct {
	X1, Y1, X2, Y2         float64
	MarkerStart, MarkerEnd string
}

type Rectangle struct {
	X, Y, Width, Height float64
}

type Ellipse struct {
	X, Y, RadiusX, RadiusY float64
}

type Polygon struct {
	Points []Vertex
}

type Polyline struct {
	Points []Vertex
}

type Label struct {
	X, Y     float64
	FontSize float64
}

func (Point) Kind() string     { return "Point" }
func (Line) Kind() string      { return "Line" }
func (Rectangle) Kind() string { return "Rectangle" }
func (Ellipse) Kind() string   { return "Ellipse" }
func (Polygon) Kind() string   { return "Polygon" }
func (Polyline) Kind() string  { return "Polyline" }
func (Label) Kind() string     { return "Label" }

// Plane is the Z/C/T position of a shape; nil axes span all planes.
type Plane struct {
	Z, C, T *int
}

// Style carries the decoded drawing attributes of a shape.
type Style struct {
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

// Drawable pairs a primitive with its style, text and plane metadata.
type Drawable struct {
	Shape Shape
	Text  string
	Plane Plane
	Style Style
}

// FromAPI maps a raw API shape onto a drawing primitive. Unknown shape types
// are an error naming the offending @type.
func FromAPI(s omero.Shape) (Drawable, error) {
	d := Drawable{
		Text:  s.Text,
		Plane: Plane{Z: s.TheZ, C: s.TheC, T: s.TheT},
		Style: Style{
			Fill:        FillColor(s.FillColor),
			Stroke:      StrokeColor(s.StrokeColor),
			StrokeWidth: strokeWidth(s.StrokeWidth),
		},
	}

	switch kind := s.Kind(); kind {
	case "Point":
		d.Shape = Point{X: s.X, Y: s.Y}
	case "Line":
		d.Shape = Line{
			X1: s.X1, Y1: s.Y1, X2: s.X2, Y2: s.Y2,
			MarkerStart: s.MarkerStart, MarkerEnd: s.MarkerEnd,
		}
	case "Rectangle":
		d.Shape = Rectangle{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
	case "Ellipse":
		d.Shape = Ellipse{X: s.X, Y: s.Y, RadiusX: s.RadiusX, RadiusY: s.RadiusY}
	case "Polygon":
		pts, err := ParsePoints(s.Points)
		if err != nil {
			return Drawable{}, fmt.Errorf("polygon %d: %w", s.ID, err)
		}
		d.Shape = Polygon{Points: pts}
	case "Polyline":
		pts, err := ParsePoints(s.Points)
		if err != nil {
			return Drawable{}, fmt.Errorf("polyline %d: %w", s.ID, err)
		}
		d.Shape = Polyline{Points: pts}
	case "Label":
		size := float64(defaultFontSize)
		if s.FontSize != nil && s.FontSize.Value > 0 {
			size = s.FontSize.Value
		}
		d.Shape = Label{X: s.X, Y: s.Y, FontSize: size}
	default:
		return Drawable{}, fmt.Errorf("shape %d has unsupported type %q", s.ID, kind)
	}

	return d, nil
}

func strokeWidth(l *omero.Length) float64 {
	if l == nil || l.Value <= 0 {
		return defaultStrokeWidth
	}
	return l.Value
}

// ParsePoints parses the OME "x1,y1 x2,y2 ..." point list format.
func ParsePoints(s string) ([]Vertex, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty point list")
	}
	pts := make([]Vertex, 0, len(fields))
	for _, field := range fields {
		xy := strings.Split(field, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("malformed point %q", field)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", field, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", field, err)
		}
		pts = append(pts, Vertex{X: x, Y: y})
	}
	return pts, nil
}
