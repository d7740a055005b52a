package shape

import "image/color"

// OMERO packs shape colors as RGBA in a signed 32-bit integer. A value of
// zero is indistinguishable from "never set" in the model, so it falls back
// to the defaults below, matching the OMERO.web viewer.

// DefaultFill is fully transparent: unset fills must not obscure the image.
var DefaultFill = color.NRGBA{0, 0, 0, 0}

// DefaultStroke is opaque yellow, the viewer's fallback outline color.
var DefaultStroke = color.NRGBA{255, 255, 0, 255}

// FillColor decodes a packed fill color, defaulting to transparent.
func FillColor(v *int64) color.NRGBA {
	return unpack(v, DefaultFill)
}

// StrokeColor decodes a packed stroke color, defaulting to yellow.
func StrokeColor(v *int64) color.NRGBA {
	return unpack(v, DefaultStroke)
}

func unpack(v *int64, fallback color.NRGBA) color.NRGBA {
	if v == nil || *v == 0 {
		return fallback
	}
	val := *v
	if val < 0 {
		val += 1 << 32
	}
	return color.NRGBA{
		R: uint8(val >> 24 & 0xff),
		G: uint8(val >> 16 & 0xff),
		B: uint8(val >> 8 & 0xff),
		A: uint8(val & 0xff),
	}
}
