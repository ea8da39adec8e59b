package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeRGBA decodes data in any registered format and returns it as a
// non-premultiplied RGBA image, re-drawing when the source uses a
// different color model.
func DecodeRGBA(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if rgba, ok := img.(*image.NRGBA); ok {
		return rgba, nil
	}

	bounds := img.Bounds()
	rgba := image.NewNRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	return rgba, nil
}
