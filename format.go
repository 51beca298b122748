package stego

import (
	"bytes"
	"io"
)

// Format identifies the type of a carrier file.
type Format int

// Supported carrier formats.
const (
	Unsupported Format = iota
	BMP
	PPM
)

func (f Format) String() string {
	switch f {
	case BMP:
		return "bmp"
	case PPM:
		return "ppm"
	default:
		return "unsupported"
	}
}

type signature struct {
	format Format
	magic  [2]byte
}

// The PPM entry is written as the decimal values it has always been
// matched against; they are the "P6" binary pixmap magic.
var legacySignatures = []signature{
	{BMP, [2]byte{0x42, 0x4d}},
	{PPM, [2]byte{80, 54}},
}

var strictSignatures = []signature{
	{BMP, [2]byte{'B', 'M'}},
	{PPM, [2]byte{'P', '3'}},
	{PPM, [2]byte{'P', '6'}},
}

// Identify reads the first two bytes of r and reports the carrier format. A
// source shorter than two bytes is Unsupported.
func (e *Engine) Identify(r io.ReaderAt) (Format, error) {
	var header [2]byte
	n, err := r.ReadAt(header[:], 0)
	if n < len(header) {
		if err == nil || err == io.EOF {
			return Unsupported, nil
		}
		return Unsupported, err
	}

	for _, s := range e.signatures {
		if bytes.Equal(header[:], s.magic[:]) {
			return s.format, nil
		}
	}
	return Unsupported, nil
}

// gate fails with ErrUnsupportedFormat unless r is a known carrier
func (e *Engine) gate(r io.ReaderAt) (Format, error) {
	f, err := e.Identify(r)
	if err != nil {
		return Unsupported, err
	}
	if f == Unsupported {
		return Unsupported, ErrUnsupportedFormat
	}
	return f, nil
}
