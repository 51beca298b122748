/*
Package carrier decodes and encodes the uncompressed raster formats used to
carry hidden messages.

BMP support is provided by golang.org/x/image/bmp and is always written as a
24-bit bottom-up bitmap with a 54 byte header. Netpbm support, including the
binary "P6" and plain "P3" pixmaps, is provided by github.com/spakin/netpbm
and PPM files are always written in the binary variant with 8-bit samples.

Importing this package registers both formats with the image package.
*/
package carrier

const (
	// Dimensions beyond these are rejected before any pixels are allocated
	maxDimension = 1 << 16
	maxPixels    = 1 << 26
)
