package stego

import "github.com/pkg/errors"

var (
	// ErrUnsupportedFormat is returned when a file is neither BMP nor PPM.
	ErrUnsupportedFormat = errors.New("file is not BMP, nor PPM format")
	// ErrInsufficientCapacity is returned when a framed message needs more
	// carrier bytes than the file has after the header.
	ErrInsufficientCapacity = errors.New("message can't be written in this file")
	// ErrUnterminatedMessage is returned when the end of the file is reached
	// before the End sentinel.
	ErrUnterminatedMessage = errors.New("hidden message is not terminated")
	// ErrMalformedMessage is returned when a message contains End.
	ErrMalformedMessage = errors.New(`message must not contain "` + End + `"`)
)

// OpenError records a failure to open or stat a carrier.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return "could not open the file: " + e.Err.Error()
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
