package stego

import (
	"bufio"
	"bytes"
	"io"
	"math"

	"github.com/bodgit/stego/bits"
	"github.com/pkg/errors"
)

// ReadWriterAt is the access a carrier needs for embedding.
type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// Report is the result of probing a carrier for a specific message.
type Report struct {
	// Found is set when the framed message is present at HeaderSize.
	Found bool
	// Fits is set when the framed message fits after the header.
	Fits bool
	// Size is the total size of the carrier in bytes.
	Size int64
	// Required is the number of carrier bytes the framed message needs.
	Required int64
	// MaxChars is the historical size/8 limit, which ignores the header and
	// the sentinels.
	MaxChars int64
	// ExactMaxChars is the longest message that fits in the carrier.
	ExactMaxChars int64
	// Record is the matching embedding history entry, if any.
	Record *Record
}

// Capacity returns the longest message, in bytes, that fits in a carrier
// of the given size.
func Capacity(size int64) int64 {
	n := (size-HeaderSize)/bits.PerByte - int64(len(Begin)+len(End))
	if n < 0 {
		return 0
	}
	return n
}

// readCarrier reads len(b) bytes at HeaderSize, returning false on a short read
func readCarrier(r io.ReaderAt, b []byte) (bool, error) {
	n, err := r.ReadAt(b, HeaderSize)
	switch {
	case n == len(b):
		return true, nil
	case err == nil || err == io.EOF:
		return false, nil
	default:
		return false, err
	}
}

// Embed hides message in rw, a carrier of size bytes. Each carrier byte whose
// parity differs from its payload bit is incremented by one; bytes that
// already match are not written.
func (e *Engine) Embed(rw ReadWriterAt, size int64, message []byte) error {
	if _, err := e.gate(rw); err != nil {
		return err
	}

	payload, err := Frame(message)
	if err != nil {
		return err
	}
	want := bits.ToBits(payload)

	if int64(len(want)) > size-HeaderSize {
		return errors.Wrapf(ErrInsufficientCapacity, "need %d bytes after the header, have %d", len(want), size-HeaderSize)
	}

	buf := make([]byte, len(want))
	ok, err := readCarrier(rw, buf)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(ErrInsufficientCapacity, "short read")
	}

	var flipped int
	for j, bit := range want {
		if buf[j]&1 == bit {
			continue
		}
		// 0xff wraps to 0x00 which still flips the parity
		if _, err := rw.WriteAt([]byte{buf[j] + 1}, HeaderSize+int64(j)); err != nil {
			return errors.Wrapf(err, "write offset %d", HeaderSize+j)
		}
		flipped++
	}
	e.logger.Printf("Embedded %d bits at offset %d, flipped %d bytes\n", len(want), HeaderSize, flipped)

	return nil
}

// Check reports whether message is hidden in r, a carrier of size bytes, and
// whether it would fit.
func (e *Engine) Check(r io.ReaderAt, size int64, message []byte) (*Report, error) {
	if _, err := e.gate(r); err != nil {
		return nil, err
	}

	payload, err := Frame(message)
	if err != nil {
		return nil, err
	}
	want := bits.ToBits(payload)

	report := &Report{
		Size:          size,
		Required:      int64(len(want)),
		Fits:          int64(len(want)) <= size-HeaderSize,
		MaxChars:      size / bits.PerByte,
		ExactMaxChars: Capacity(size),
	}

	buf := make([]byte, len(want))
	ok, err := readCarrier(r, buf)
	if err != nil {
		return nil, err
	}
	report.Found = ok && bytes.Equal(bits.Parity(buf), want)
	e.logger.Printf("Compared %d carrier bytes, found: %t\n", len(want), report.Found)

	return report, nil
}

// Extract recovers a hidden message from r. The boolean result is false when
// r does not start with the Begin sentinel, which is not an error. Reaching
// the end of r before the End sentinel returns ErrUnterminatedMessage.
func (e *Engine) Extract(r io.ReaderAt) ([]byte, bool, error) {
	if _, err := e.gate(r); err != nil {
		return nil, false, err
	}

	begin := bits.ToBits([]byte(Begin))
	buf := make([]byte, len(begin))
	ok, err := readCarrier(r, buf)
	if err != nil {
		return nil, false, err
	}
	if !ok || !bytes.Equal(bits.Parity(buf), begin) {
		e.logger.Printf("No %q sentinel at offset %d\n", Begin, HeaderSize)
		return nil, false, nil
	}

	offset := int64(HeaderSize + len(begin))
	br := bufio.NewReader(io.NewSectionReader(r, offset, math.MaxInt64-offset))

	var message []byte
	var chunk [bits.PerByte]byte
	for {
		if _, err := io.ReadFull(br, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, false, errors.Wrapf(ErrUnterminatedMessage, "after %d characters", len(message))
			}
			return nil, false, err
		}
		message = append(message, bits.Byte(bits.Parity(chunk[:])))

		// Characters are appended one at a time so the first occurrence of
		// End is always at the tail
		if bytes.HasSuffix(message, []byte(End)) {
			break
		}
	}
	e.logger.Printf("Read %d characters from offset %d\n", len(message), offset)

	return message[:len(message)-len(End)], true, nil
}
