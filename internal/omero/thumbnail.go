package omero

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Thumbnails come back as JPEG; PNG registered for servers configured
	// otherwise.
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// Thumbnail fetches a server-rendered thumbnail of the image at the requested
// dimensions. Servers cap thumbnail sizes, so the decoded image is rescaled
// locally when its bounds differ from the request.
func (c *Client) Thumbnail(ctx context.Context, imageID int64, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %dx%d", w, h)
	}
	body, err := c.getBytes(ctx, fmt.Sprintf("/webgateway/render_thumbnail/%d/%d/%d/", imageID, w, h), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thumbnail for image %d: %w", imageID, err)
	}
	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail for image %d: %w", imageID, err)
	}
	c.logger.Debug("thumbnail decoded",
		zap.Int64("image_id", imageID),
		zap.String("format", format))

	bounds := img.Bounds()
	if bounds.Dx() == w && bounds.Dy() == h {
		return img, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst, nil
}
