// Package qoi implements the "Quite OK Image" lossless image format.
package qoi

// MagicBytes is the 4-byte magic that opens every QOI header.
const MagicBytes = "qoif"

// HeaderSize is the fixed, big-endian encoded size of a QOI header.
const HeaderSize = 14

// EndMarker is the fixed 8-byte trailer that closes every QOI chunk stream.
var EndMarker = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}

// Colorspace values accepted in a Header.
const (
	ColorspaceSRGB   uint8 = 0
	ColorspaceLinear uint8 = 1
)

// chunk tags, from the QOI v1.0 wire format.
const (
	tagRGB   byte = 0b1111_1110
	tagRGBA  byte = 0b1111_1111
	tagIndex byte = 0b00_000000
	tagDiff  byte = 0b01_000000
	tagLuma  byte = 0b10_000000
	tagRun   byte = 0b11_000000

	mask2 byte = 0b1100_0000
)

// Header is the 14-byte QOI record that precedes the chunk stream.
type Header struct {
	Width      uint32
	Height     uint32
	Channels   uint8
	Colorspace uint8
}

// Pixel is a single RGBA sample. All arithmetic on its fields wraps modulo
// 256, as Go's uint8 already does.
type Pixel struct {
	R, G, B, A uint8
}

// Equals reports whether p and other have identical channels.
func (p Pixel) Equals(other Pixel) bool {
	return p == other
}

// hash computes the running color table slot for p: (3r+5g+7b+11a) mod 64.
func (p Pixel) hash() uint8 {
	return (p.R*3 + p.G*5 + p.B*7 + p.A*11) % 64
}

// defaultPixel is the running predictor's seed value, used before the first
// pixel of an image is seen.
var defaultPixel = Pixel{R: 0, G: 0, B: 0, A: 255}

// colorTable is the 64-entry running color hash shared by the encoder and
// decoder. The zero value is a correctly initialized, all-transparent-black
// table.
type colorTable struct {
	slots [64]Pixel
}

// get returns the pixel currently stored at idx.
func (t *colorTable) get(idx uint8) Pixel {
	return t.slots[idx]
}

// matchPut computes p's hash slot. If that slot already holds p it returns
// the index without mutating the table. Otherwise it stores p in the slot
// and reports no match.
func (t *colorTable) matchPut(p Pixel) (idx uint8, hit bool) {
	idx = p.hash()
	if t.slots[idx] == p {
		return idx, true
	}
	t.slots[idx] = p
	return idx, false
}

// fitsInSigned reports whether n, as a signed value, fits in a field of
// width bits: -(2^(width-1)) <= n < 2^(width-1). width is one of 2, 4, 6.
func fitsInSigned(width uint, n int8) bool {
	lo := int8(-(1 << (width - 1)))
	hi := int8((1 << (width - 1)) - 1)
	return n >= lo && n <= hi
}

// addBias wraps n+bias into an unsigned 8-bit field, the packing half of a
// signed-diff/bias pair.
func addBias(n, bias int8) uint8 {
	return uint8(n + bias)
}

// subBias is the inverse of addBias: it recovers the signed diff from an
// unsigned field and the same bias used to pack it.
func subBias(n uint8, bias int8) int8 {
	return int8(n) - bias
}
