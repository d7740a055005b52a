package overlay

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontOnce   sync.Once
	fontParsed *opentype.Font
	fontErr    error
)

// labelFace builds a font face for label text at the given pixel size. The Go
// regular face ships with the binary, so label rendering never depends on
// fonts installed on the host.
func labelFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontParsed, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", fontErr)
	}
	face, err := opentype.NewFace(fontParsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build label font face: %w", err)
	}
	return face, nil
}
