/*
Package stego hides and recovers text messages inside uncompressed BMP and
PPM files using least significant bit steganography.

The first HeaderSize bytes of a carrier are never modified regardless of the
real size of the format header. Starting at that offset every carrier byte
stores one bit of the framed payload in its parity, even for 0 and odd for
1. The payload is the message wrapped in the Begin and End sentinels; there
is no length field so decoding scans forward until End is seen.
*/
package stego

import (
	"io"
	"log"
)

const (
	// HeaderSize is the number of leading bytes left untouched in every
	// carrier. Embedding always starts at this offset.
	HeaderSize = 200

	// Begin marks the start of a hidden payload.
	Begin = "BOF"
	// End marks the end of a hidden payload.
	End = "EOF"
)

// Engine embeds, probes and extracts hidden messages. It holds no state
// between operations other than its configuration, so one Engine can be
// shared by many goroutines working on different files.
type Engine struct {
	db         *HistoryDB
	logger     *log.Logger
	signatures []signature
}

// New returns an Engine. db may be nil to disable the embedding history.
// With strict set, PPM detection accepts both the plain and binary magic
// rather than only the legacy header bytes.
func New(db *HistoryDB, logger *log.Logger, strict bool) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	signatures := legacySignatures
	if strict {
		signatures = strictSignatures
	}
	return &Engine{
		db:         db,
		logger:     logger,
		signatures: signatures,
	}
}
