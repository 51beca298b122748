/*
Package bits converts between byte strings and their constituent bits.

Bits are stored one per byte, holding either 0 or 1, and every input byte
expands to exactly eight bits ordered most significant first.
*/
package bits

import "errors"

// PerByte is the number of bits each byte expands to.
const PerByte = 8

var errPartial = errors.New("bits: length is not a multiple of 8")

// ToBits returns the bits of b, most significant bit first.
func ToBits(b []byte) []byte {
	out := make([]byte, 0, len(b)*PerByte)
	for _, c := range b {
		for power := PerByte - 1; power >= 0; power-- {
			out = append(out, c>>uint(power)&1)
		}
	}
	return out
}

// FromBits packs each group of eight bits back into a byte. Any non-zero
// value counts as a set bit.
func FromBits(bits []byte) ([]byte, error) {
	if len(bits)%PerByte != 0 {
		return nil, errPartial
	}
	out := make([]byte, 0, len(bits)/PerByte)
	for i := 0; i < len(bits); i += PerByte {
		out = append(out, Byte(bits[i:i+PerByte]))
	}
	return out, nil
}

// Byte packs the first eight bits of bits into a single byte.
func Byte(bits []byte) byte {
	var c byte
	for _, b := range bits[:PerByte] {
		c <<= 1
		if b != 0 {
			c |= 1
		}
	}
	return c
}

// Parity returns the parity of each byte in b; 0 for even, 1 for odd.
func Parity(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c & 1
	}
	return out
}
