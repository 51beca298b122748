package stego

import (
	"crypto/sha1"
	"fmt"
	"io"
)

// sha1File returns the upper case hex SHA-1 of everything read from r
func sha1File(r io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("%X", h.Sum(nil)), nil
}
