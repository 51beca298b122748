package stego

import "bytes"

// Frame returns message wrapped in the Begin and End sentinels. Messages
// containing End would end decoding early and are rejected.
func Frame(message []byte) ([]byte, error) {
	if bytes.Contains(message, []byte(End)) {
		return nil, ErrMalformedMessage
	}
	b := make([]byte, 0, len(Begin)+len(message)+len(End))
	b = append(b, Begin...)
	b = append(b, message...)
	return append(b, End...), nil
}
