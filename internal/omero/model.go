package omero

import "strings"

// Model types for the subset of the OMERO JSON API (api/v0/m) this tool
// touches. Shapes are kept as loose attribute bags exactly as the API sends
// them; internal/shape turns them into drawing primitives.

// omeroModelPrefix is the schema URI prefix carried by every @type field.
const omeroModelPrefix = "http://www.openmicroscopy.org/Schemas/OME/2016-06#"

// Image is an OMERO image with its pixel dimensions.
type Image struct {
	ID     int64   `json:"@id"`
	Name   string  `json:"Name"`
	Pixels *Pixels `json:"Pixels,omitempty"`
}

// Pixels carries the dimensions of an image's pixel data.
type Pixels struct {
	SizeX int `json:"SizeX"`
	SizeY int `json:"SizeY"`
	SizeZ int `json:"SizeZ"`
	SizeC int `json:"SizeC"`
	SizeT int `json:"SizeT"`
}

// SizeX returns the image width in pixels, 0 when unknown.
func (i Image) SizeX() int {
	if i.Pixels == nil {
		return 0
	}
	return i.Pixels.SizeX
}

// SizeY returns the image height in pixels, 0 when unknown.
func (i Image) SizeY() int {
	if i.Pixels == nil {
		return 0
	}
	return i.Pixels.SizeY
}

// Dataset is an OMERO dataset container.
type Dataset struct {
	ID   int64  `json:"@id"`
	Name string `json:"Name"`
}

// Project is an OMERO project container.
type Project struct {
	ID   int64  `json:"@id"`
	Name string `json:"Name"`
}

// Plate is an OMERO HCS plate.
type Plate struct {
	ID   int64  `json:"@id"`
	Name string `json:"Name"`
}

// Screen is an OMERO HCS screen.
type Screen struct {
	ID   int64  `json:"@id"`
	Name string `json:"Name"`
}

// Well holds the well samples of a plate well; each sample references the
// acquired image.
type Well struct {
	ID          int64        `json:"@id"`
	WellSamples []WellSample `json:"WellSamples"`
}

// WellSample links a well to an image.
type WellSample struct {
	ID    int64  `json:"@id"`
	Image *Image `json:"Image,omitempty"`
}

// ROI is a region of interest with its shapes embedded.
type ROI struct {
	ID     int64   `json:"@id"`
	Name   string  `json:"Name,omitempty"`
	Shapes []Shape `json:"shapes"`
}

// Shape is the raw attribute bag the API returns for any shape type. Which
// fields are meaningful depends on the @type schema URI.
type Shape struct {
	Type string `json:"@type"`
	ID   int64  `json:"@id"`

	// Plane position, absent when the shape spans all planes.
	TheZ *int `json:"TheZ,omitempty"`
	TheC *int `json:"TheC,omitempty"`
	TheT *int `json:"TheT,omitempty"`

	Text string `json:"Text,omitempty"`

	// Point, Rectangle, Ellipse, Label
	X float64 `json:"X,omitempty"`
	Y float64 `json:"Y,omitempty"`

	// Rectangle
	Width  float64 `json:"Width,omitempty"`
	Height float64 `json:"Height,omitempty"`

	// Ellipse
	RadiusX float64 `json:"RadiusX,omitempty"`
	RadiusY float64 `json:"RadiusY,omitempty"`

	// Line
	X1          float64 `json:"X1,omitempty"`
	Y1          float64 `json:"Y1,omitempty"`
	X2          float64 `json:"X2,omitempty"`
	Y2          float64 `json:"Y2,omitempty"`
	MarkerStart string  `json:"MarkerStart,omitempty"`
	MarkerEnd   string  `json:"MarkerEnd,omitempty"`

	// Polygon, Polyline: "x1,y1 x2,y2 ..."
	Points string `json:"Points,omitempty"`

	// Style. Colors are RGBA packed into a signed 32-bit int; nil when the
	// authoring tool never set them (QuPath leaves StrokeWidth out).
	FillColor   *int64  `json:"FillColor,omitempty"`
	StrokeColor *int64  `json:"StrokeColor,omitempty"`
	StrokeWidth *Length `json:"StrokeWidth,omitempty"`
	FontSize    *Length `json:"FontSize,omitempty"`
}

// Length is a unit-qualified scalar (OMERO LengthI).
type Length struct {
	Value  float64 `json:"Value"`
	Unit   string  `json:"Unit,omitempty"`
	Symbol string  `json:"Symbol,omitempty"`
}

// Kind returns the bare shape kind ("Rectangle", "Ellipse", ...) stripped of
// the OME schema prefix.
func (s Shape) Kind() string {
	if len(s.Type) > len(omeroModelPrefix) && s.Type[:len(omeroModelPrefix)] == omeroModelPrefix {
		return s.Type[len(omeroModelPrefix):]
	}
	// Tolerate bare kinds and unknown prefixes; the translation layer
	// rejects anything it does not recognize.
	if idx := strings.LastIndexByte(s.Type, '#'); idx >= 0 {
		return s.Type[idx+1:]
	}
	return s.Type
}
