package shape

import (
	"image/color"
	"testing"
)

func int64p(v int64) *int64 { return &v }

func TestStrokeColor_PackedRGBA(t *testing.T) {
	tests := []struct {
		name string
		in   *int64
		want color.NRGBA
	}{
		// -1 is how OMERO stores opaque white
		{"opaque white", int64p(-1), color.NRGBA{255, 255, 255, 255}},
		{"opaque red", int64p(int64(0xff0000ff) - (1 << 32)), color.NRGBA{255, 0, 0, 255}},
		{"opaque green", int64p(0x00ff00ff), color.NRGBA{0, 255, 0, 255}},
		{"half alpha blue", int64p(0x0000ff80), color.NRGBA{0, 0, 255, 128}},
		{"unset defaults to yellow", nil, DefaultStroke},
		{"zero defaults to yellow", int64p(0), DefaultStroke},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StrokeColor(tt.in); got != tt.want {
				t.Errorf("StrokeColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFillColor_Defaults(t *testing.T) {
	if got := FillColor(nil); got != DefaultFill {
		t.Errorf("FillColor(nil) = %v, want transparent", got)
	}
	if got := FillColor(int64p(0)); got != DefaultFill {
		t.Errorf("FillColor(0) = %v, want transparent", got)
	}
	want := color.NRGBA{18, 52, 86, 120}
	if got := FillColor(int64p(0x12345678)); got != want {
		t.Errorf("FillColor(0x12345678) = %v, want %v", got, want)
	}
}
