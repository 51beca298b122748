package stego

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/stego/bits"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(strict bool) *Engine {
	return New(nil, log.New(io.Discard, "", 0), strict)
}

// writeCarrier creates a file starting with magic, padded to size bytes with fill
func writeCarrier(t *testing.T, magic []byte, size int, fill byte) string {
	t.Helper()
	b := bytes.Repeat([]byte{fill}, size)
	copy(b, magic)
	file := filepath.Join(t.TempDir(), "carrier")
	require.NoError(t, os.WriteFile(file, b, 0600))
	return file
}

func readFile(t *testing.T, file string) []byte {
	t.Helper()
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	return b
}

var magicBMP = []byte{0x42, 0x4d}

func TestIdentify(t *testing.T) {
	tables := []struct {
		name   string
		header []byte
		strict bool
		want   Format
	}{
		{"bmp", []byte{0x42, 0x4d}, false, BMP},
		{"ppm legacy bytes", []byte{80, 54}, false, PPM},
		{"ppm binary magic", []byte{0x50, 0x36}, false, PPM},
		{"ppm plain magic", []byte{0x50, 0x33}, false, Unsupported},
		{"ppm plain magic strict", []byte{0x50, 0x33}, true, PPM},
		{"bmp strict", []byte{0x42, 0x4d}, true, BMP},
		{"png", []byte{0x89, 0x50, 0x4e, 0x47}, false, Unsupported},
		{"lower case", []byte("bm"), false, Unsupported},
		{"short", []byte{0x42}, false, Unsupported},
		{"empty", []byte{}, false, Unsupported},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "file")
			require.NoError(t, os.WriteFile(file, table.header, 0600))

			e := newEngine(table.strict)
			for i := 0; i < 3; i++ {
				f, err := e.IdentifyFile(file)
				require.NoError(t, err)
				assert.Equal(t, table.want, f)
			}
			assert.Equal(t, table.header, readFile(t, file))
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "bmp", BMP.String())
	assert.Equal(t, "ppm", PPM.String())
	assert.Equal(t, "unsupported", Unsupported.String())
}

func TestFrame(t *testing.T) {
	b, err := Frame([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, []byte("BOFhiEOF"), b)

	b, err = Frame(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("BOFEOF"), b)

	for _, m := range []string{"EOF", "xEOFy", "the end EOF"} {
		_, err := Frame([]byte(m))
		assert.Equal(t, ErrMalformedMessage, err)
	}
}

func TestEmbedExtract(t *testing.T) {
	file := writeCarrier(t, magicBMP, 1000, 0x00)
	e := newEngine(false)

	require.NoError(t, e.EmbedFile(file, []byte("hi")))

	message, found, err := e.ExtractFile(file)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("hi"), message)
}

func TestRoundTrip(t *testing.T) {
	tables := []struct {
		name    string
		magic   []byte
		fill    byte
		message []byte
	}{
		{"empty", magicBMP, 0x00, []byte{}},
		{"text", magicBMP, 0x00, []byte("Hello world!")},
		{"saturated", magicBMP, 0xff, []byte("wrap around")},
		{"ppm", []byte("P6"), 0x7f, []byte("pixmap")},
		{"binary", magicBMP, 0x10, []byte{0x00, 0xff, 0x80, 0x01, 'E', 'O'}},
		{"near sentinel", magicBMP, 0x00, []byte("EO")},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			file := writeCarrier(t, table.magic, 2000, table.fill)
			e := newEngine(false)

			require.NoError(t, e.EmbedFile(file, table.message))

			message, found, err := e.ExtractFile(file)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, table.message, message)

			report, err := e.CheckFile(file, table.message)
			require.NoError(t, err)
			assert.True(t, report.Found)
		})
	}
}

func TestEmbedMutation(t *testing.T) {
	size := 1000
	orig := make([]byte, size)
	copy(orig, magicBMP)
	for i := 2; i < size; i++ {
		orig[i] = byte(i * 31)
	}
	file := filepath.Join(t.TempDir(), "carrier.bmp")
	require.NoError(t, os.WriteFile(file, orig, 0600))

	message := []byte("parity")
	require.NoError(t, newEngine(false).EmbedFile(file, message))

	payload, err := Frame(message)
	require.NoError(t, err)
	want := bits.ToBits(payload)

	got := readFile(t, file)
	require.Len(t, got, size)
	assert.Equal(t, orig[:HeaderSize], got[:HeaderSize])
	for j, bit := range want {
		o, n := orig[HeaderSize+j], got[HeaderSize+j]
		assert.Equal(t, bit, n&1)
		if o&1 == bit {
			assert.Equal(t, o, n)
		} else {
			assert.Equal(t, o+1, n)
		}
	}
	end := HeaderSize + len(want)
	assert.Equal(t, orig[end:], got[end:])
}

func TestEmbedErrors(t *testing.T) {
	e := newEngine(false)

	file := writeCarrier(t, magicBMP, HeaderSize+8*len("BOFhiEOF")-1, 0x00)
	before := readFile(t, file)
	err := e.EmbedFile(file, []byte("hi"))
	assert.True(t, errors.Is(err, ErrInsufficientCapacity))
	assert.Equal(t, before, readFile(t, file))

	file = writeCarrier(t, magicBMP, 1000, 0x00)
	assert.Equal(t, ErrMalformedMessage, e.EmbedFile(file, []byte("oops EOF")))

	file = writeCarrier(t, []byte("GIF89a"), 1000, 0x00)
	assert.Equal(t, ErrUnsupportedFormat, e.EmbedFile(file, []byte("hi")))

	err = e.EmbedFile(filepath.Join(t.TempDir(), "missing.bmp"), []byte("hi"))
	var oe *OpenError
	require.True(t, errors.As(err, &oe))
	assert.True(t, os.IsNotExist(oe.Err))
}

func TestEmbedExactFit(t *testing.T) {
	size := HeaderSize + 8*len("BOFhiEOF")
	file := writeCarrier(t, magicBMP, size, 0x00)
	e := newEngine(false)

	require.NoError(t, e.EmbedFile(file, []byte("hi")))
	assert.Len(t, readFile(t, file), size)

	message, found, err := e.ExtractFile(file)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("hi"), message)
}

func TestCheck(t *testing.T) {
	file := writeCarrier(t, magicBMP, 1000, 0x00)
	e := newEngine(false)

	report, err := e.CheckFile(file, []byte("hi"))
	require.NoError(t, err)
	assert.False(t, report.Found)
	assert.True(t, report.Fits)

	require.NoError(t, e.EmbedFile(file, []byte("hi")))

	report, err = e.CheckFile(file, []byte("hi"))
	require.NoError(t, err)
	assert.True(t, report.Found)
	assert.Equal(t, int64(1000), report.Size)
	assert.Equal(t, int64(64), report.Required)
	assert.Nil(t, report.Record)

	for _, m := range []string{"ho", "h", "hi!", ""} {
		report, err = e.CheckFile(file, []byte(m))
		require.NoError(t, err)
		assert.False(t, report.Found, m)
	}

	_, err = e.CheckFile(file, []byte("EOF"))
	assert.Equal(t, ErrMalformedMessage, err)
}

func TestCapacity(t *testing.T) {
	message := []byte("capacity")
	required := 8 * (len(message) + len(Begin) + len(End))

	tables := []struct {
		size int
		fits bool
	}{
		{HeaderSize + required + 1, true},
		{HeaderSize + required, true},
		{HeaderSize + required - 1, false},
		{HeaderSize, false},
		{10, false},
	}

	e := newEngine(false)
	for _, table := range tables {
		file := writeCarrier(t, magicBMP, table.size, 0x00)

		report, err := e.CheckFile(file, message)
		require.NoError(t, err)
		assert.Equal(t, table.fits, report.Fits, table.size)
		assert.False(t, report.Found)
		assert.Equal(t, int64(table.size/8), report.MaxChars)
		assert.Equal(t, Capacity(int64(table.size)), report.ExactMaxChars)
	}

	assert.Equal(t, int64(0), Capacity(0))
	assert.Equal(t, int64(0), Capacity(HeaderSize+47))
	assert.Equal(t, int64(0), Capacity(HeaderSize+48))
	assert.Equal(t, int64(1), Capacity(HeaderSize+56))
	assert.Equal(t, int64(94), Capacity(1000))
}

func TestExtractNoMessage(t *testing.T) {
	e := newEngine(false)

	// Exactly the sentinel region; scanning further would fail
	file := writeCarrier(t, magicBMP, HeaderSize+24, 0x00)
	message, found, err := e.ExtractFile(file)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, message)

	file = writeCarrier(t, magicBMP, 100, 0x00)
	_, found, err = e.ExtractFile(file)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExtractUnterminated(t *testing.T) {
	b := make([]byte, HeaderSize+24+8*5+3)
	copy(b, magicBMP)
	for j, bit := range bits.ToBits([]byte(Begin + "abcde")) {
		b[HeaderSize+j] = bit
	}
	file := filepath.Join(t.TempDir(), "carrier.bmp")
	require.NoError(t, os.WriteFile(file, b, 0600))

	_, found, err := newEngine(false).ExtractFile(file)
	assert.False(t, found)
	assert.True(t, errors.Is(err, ErrUnterminatedMessage))
}

func TestUnsupported(t *testing.T) {
	file := writeCarrier(t, []byte{0x50, 0x33}, 1000, 0x00)
	e := newEngine(false)

	_, _, err := e.ExtractFile(file)
	assert.Equal(t, ErrUnsupportedFormat, err)

	_, err = e.CheckFile(file, []byte("hi"))
	assert.Equal(t, ErrUnsupportedFormat, err)

	_, err = e.Info(file)
	assert.Equal(t, ErrUnsupportedFormat, err)

	// Strict matching accepts the plain pixmap magic
	require.NoError(t, newEngine(true).EmbedFile(file, []byte("hi")))
}
