package stego

import (
	"image"
	// Source images may be in any of these formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/stego/carrier"
	"github.com/pkg/errors"
)

var encoders = map[string]func(io.Writer, image.Image) error{
	".bmp": carrier.EncodeBMP,
	".ppm": carrier.EncodePPM,
}

// Generate decodes the image at src and writes it to dst as an uncompressed
// carrier. The format is chosen by the extension of dst, either ".bmp" or
// ".ppm".
func (e *Engine) Generate(src, dst string) (err error) {
	encode, ok := encoders[strings.ToLower(filepath.Ext(dst))]
	if !ok {
		return errors.Wrapf(ErrUnsupportedFormat, "cannot write \"%s\"", dst)
	}

	in, _, err := open(src, os.O_RDONLY)
	if err != nil {
		return err
	}
	defer in.Close()

	m, name, err := carrier.Decode(in)
	if err != nil {
		return errors.Wrapf(err, "decode \"%s\"", src)
	}
	e.logger.Printf("Decoded \"%s\" as %s, %dx%d\n", src, name, m.Bounds().Dx(), m.Bounds().Dy())

	out, err := os.Create(dst)
	if err != nil {
		return &OpenError{Path: dst, Err: err}
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	return encode(out, m)
}
