package carrier

import (
	"errors"
	"image"
	"image/draw"
	"io"

	"github.com/spakin/netpbm"
	"golang.org/x/image/bmp"
)

var errEmpty = errors.New("carrier: image has no pixels")

// flatten returns m as an opaque RGBA image with its top-left corner at
// (0, 0), composited over white
func flatten(m image.Image) *image.RGBA {
	b := m.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Over)
	return dst
}

// EncodeBMP writes the Image m to w as an uncompressed 24-bit BMP.
func EncodeBMP(w io.Writer, m image.Image) error {
	if m.Bounds().Empty() {
		return errEmpty
	}
	return bmp.Encode(w, flatten(m))
}

// EncodePPM writes the Image m to w as a binary PPM with 8-bit samples.
func EncodePPM(w io.Writer, m image.Image) error {
	if m.Bounds().Empty() {
		return errEmpty
	}
	return netpbm.Encode(w, flatten(m), &netpbm.EncodeOptions{
		Format:   netpbm.PPM,
		MaxValue: 255,
		Plain:    false,
	})
}
