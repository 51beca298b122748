package carrier

import (
	"bufio"
	"bytes"
	"errors"
	"image"
	"io"

	// Register BMP with the image package
	_ "golang.org/x/image/bmp"

	"github.com/spakin/netpbm"
)

var errTooLarge = errors.New("carrier: image dimensions are invalid or too large")

func checkConfig(c image.Config) error {
	if c.Width <= 0 || c.Height <= 0 || c.Width > maxDimension || c.Height > maxDimension {
		return errTooLarge
	}
	if int64(c.Width)*int64(c.Height) > maxPixels {
		return errTooLarge
	}
	return nil
}

func isNetpbm(magic []byte) bool {
	return magic[0] == 'P' && magic[1] >= '1' && magic[1] <= '7'
}

// decodeNetpbm validates the header before handing the whole stream to
// netpbm so a hostile header cannot force a huge allocation
func decodeNetpbm(r io.Reader) (image.Image, error) {
	var header bytes.Buffer
	c, err := netpbm.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, err
	}
	if err := checkConfig(c); err != nil {
		return nil, err
	}
	return netpbm.Decode(io.MultiReader(&header, r), nil)
}

// Decode decodes an image in any registered format from r. Netpbm images
// have their dimensions checked before the raster is read.
func Decode(r io.Reader) (image.Image, string, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, "", err
	}

	if !isNetpbm(magic) {
		return image.Decode(br)
	}

	name := "netpbm"
	if magic[1] == '3' || magic[1] == '6' {
		name = "ppm"
	}
	m, err := decodeNetpbm(br)
	if err != nil {
		return nil, "", err
	}
	return m, name, nil
}

// DecodeConfig returns the color model and dimensions of an image in any
// registered format without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, string, error) {
	c, name, err := image.DecodeConfig(r)
	if err != nil {
		return image.Config{}, "", err
	}
	if err := checkConfig(c); err != nil {
		return image.Config{}, "", err
	}
	return c, name, nil
}
