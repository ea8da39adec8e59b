package imgutil

import (
	"image"
	"io"

	"github.com/chai2010/webp"
)

// EncodeWebPLossless writes img to w as lossless WebP at maximum quality.
func EncodeWebPLossless(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Lossless: true, Quality: 100})
}
