package qoi

import (
	"io"

	"github.com/pkg/errors"
)

// decoderState is the explicit tagged state of a PixelIterator, replacing
// the scattered lookahead variables a naive port would carry.
type decoderState int

const (
	stateRunning decoderState = iota
	stateInsideRun
	statePendingIndexZero
	stateFinished
	stateFailed
)

// PixelIterator is a lazy, finite sequence of pixels decoded from a QOI
// chunk stream. Call Next repeatedly until it returns io.EOF.
type PixelIterator struct {
	r     io.Reader
	state decoderState
	err   error

	prev  Pixel
	table colorTable

	remainingRun int
	pendingPixel Pixel

	pendingByte     byte
	havePendingByte bool
}

// Decode parses a QOI header from r and returns it along with a
// PixelIterator over the remaining chunk stream. It does not read beyond
// the header; pixels are produced lazily as Next is called.
func Decode(r io.Reader) (Header, *PixelIterator, error) {
	h, err := decodeHeader(r)
	if err != nil {
		return Header{}, nil, err
	}
	it := &PixelIterator{r: r, prev: defaultPixel}
	return h, it, nil
}

// DecodeAll drains the full pixel sequence of a QOI stream into a slice.
func DecodeAll(r io.Reader) (Header, []Pixel, error) {
	h, it, err := Decode(r)
	if err != nil {
		return Header{}, nil, err
	}
	pixels := []Pixel{}
	for {
		p, err := it.Next()
		if err == io.EOF {
			return h, pixels, nil
		}
		if err != nil {
			return Header{}, nil, err
		}
		pixels = append(pixels, p)
	}
}

// DecodeStrict behaves like DecodeAll but additionally validates that the
// number of pixels produced equals Width*Height, per the optional
// consistency check the QOI format does not itself mandate.
func DecodeStrict(r io.Reader) (Header, []Pixel, error) {
	h, pixels, err := DecodeAll(r)
	if err != nil {
		return Header{}, nil, err
	}
	want := int(h.Width) * int(h.Height)
	if len(pixels) != want {
		return Header{}, nil, errors.Wrapf(ErrInvalidFormat, "expected %d pixels, decoded %d", want, len(pixels))
	}
	return h, pixels, nil
}

// Next advances the iterator by one pixel. It returns io.EOF once the end
// marker has been observed, and a wrapped ErrInvalidFormat if the stream is
// structurally invalid.
func (it *PixelIterator) Next() (Pixel, error) {
	switch it.state {
	case stateFinished:
		return Pixel{}, io.EOF
	case stateFailed:
		return Pixel{}, it.err
	case stateInsideRun:
		return it.nextRunPixel(), nil
	case statePendingIndexZero:
		return it.resolvePendingIndexZero()
	}

	b, err := it.readByte()
	if err != nil {
		return it.failRead(err)
	}

	switch {
	case b == tagRGB:
		return it.decodeRGB()
	case b == tagRGBA:
		return it.decodeRGBA()
	case b == 0x00:
		return it.startPendingIndexZero()
	case b&mask2 == tagIndex:
		return it.decodeIndex(b)
	case b&mask2 == tagDiff:
		return it.decodeDiff(b)
	case b&mask2 == tagLuma:
		return it.decodeLuma(b)
	case b&mask2 == tagRun:
		return it.decodeRun(b)
	}

	return it.fail(errors.Wrapf(ErrInvalidFormat, "unrecognized tag byte %#08b", b))
}

func (it *PixelIterator) decodeRGB() (Pixel, error) {
	var rgb [3]byte
	if _, err := io.ReadFull(it.r, rgb[:]); err != nil {
		return it.failRead(err)
	}
	p := Pixel{R: rgb[0], G: rgb[1], B: rgb[2], A: it.prev.A}
	return it.emit(p, true), nil
}

func (it *PixelIterator) decodeRGBA() (Pixel, error) {
	var rgba [4]byte
	if _, err := io.ReadFull(it.r, rgba[:]); err != nil {
		return it.failRead(err)
	}
	p := Pixel{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return it.emit(p, true), nil
}

func (it *PixelIterator) decodeIndex(b byte) (Pixel, error) {
	p := it.table.get(b & 0x3F)
	return it.emit(p, false), nil
}

func (it *PixelIterator) decodeDiff(b byte) (Pixel, error) {
	dr := subBias((b>>4)&0x3, 2)
	dg := subBias((b>>2)&0x3, 2)
	db := subBias(b&0x3, 2)
	p := Pixel{
		R: it.prev.R + uint8(dr),
		G: it.prev.G + uint8(dg),
		B: it.prev.B + uint8(db),
		A: it.prev.A,
	}
	return it.emit(p, true), nil
}

func (it *PixelIterator) decodeLuma(b byte) (Pixel, error) {
	b1, err := it.readByte()
	if err != nil {
		return it.failRead(err)
	}
	dg := subBias(b&0x3F, 32)
	drDg := subBias((b1>>4)&0xF, 8)
	dbDg := subBias(b1&0xF, 8)
	p := Pixel{
		R: it.prev.R + uint8(dg+drDg),
		G: it.prev.G + uint8(dg),
		B: it.prev.B + uint8(dg+dbDg),
		A: it.prev.A,
	}
	return it.emit(p, true), nil
}

func (it *PixelIterator) decodeRun(b byte) (Pixel, error) {
	length := int(b&0x3F) + 1
	it.remainingRun = length - 1
	if it.remainingRun > 0 {
		it.state = stateInsideRun
	}
	return it.prev, nil
}

func (it *PixelIterator) nextRunPixel() Pixel {
	it.remainingRun--
	if it.remainingRun == 0 {
		it.state = stateRunning
	}
	return it.prev
}

// startPendingIndexZero defers emission of color_table[0] until the next
// byte disambiguates it from the first byte of the end marker.
func (it *PixelIterator) startPendingIndexZero() (Pixel, error) {
	it.pendingPixel = it.table.get(0)
	b1, err := it.readByte()
	if err != nil {
		return it.failRead(err)
	}
	if b1 != 0x00 {
		return it.resolveIndexZeroNotEnd(b1)
	}
	it.state = statePendingIndexZero
	return it.Next()
}

// resolvePendingIndexZero is only reached by re-entry after
// startPendingIndexZero has already consumed both leading 0x00 bytes; it
// scans the rest of the end marker.
func (it *PixelIterator) resolvePendingIndexZero() (Pixel, error) {
	var rest [6]byte
	if _, err := io.ReadFull(it.r, rest[:]); err != nil {
		return it.failRead(err)
	}
	want := [6]byte{0, 0, 0, 0, 0, 1}
	if rest != want {
		return it.fail(errors.Wrapf(ErrInvalidFormat, "malformed end marker, got 00 00 %02x %02x %02x %02x %02x %02x", rest[0], rest[1], rest[2], rest[3], rest[4], rest[5]))
	}
	it.state = stateFinished
	return Pixel{}, io.EOF
}

// resolveIndexZeroNotEnd emits the stashed OP_INDEX(0) pixel, then
// classifies b1 as the following chunk's first byte.
func (it *PixelIterator) resolveIndexZeroNotEnd(b1 byte) (Pixel, error) {
	p := it.emit(it.pendingPixel, false)
	it.pendingByte = b1
	it.havePendingByte = true
	return p, nil
}

// emit records p as the new previous pixel and, unless the chunk was an
// index or run hit (which never changes table membership), updates the
// color table.
func (it *PixelIterator) emit(p Pixel, updateTable bool) Pixel {
	it.prev = p
	if updateTable {
		it.table.matchPut(p)
	}
	return p
}

func (it *PixelIterator) fail(err error) (Pixel, error) {
	it.state = stateFailed
	it.err = err
	return Pixel{}, err
}

// failRead reports a read failure encountered mid-chunk. A genuine io.EOF or
// io.ErrUnexpectedEOF from the underlying reader here means the stream was
// truncated before a legitimate end marker was observed, which is a
// structural violation, not the iterator's own Finished signal — so it is
// promoted to a wrapped ErrInvalidFormat rather than passed through as
// io.EOF.
func (it *PixelIterator) failRead(err error) (Pixel, error) {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return it.fail(errors.Wrapf(ErrInvalidFormat, "unexpected EOF mid-chunk: %s", err))
	}
	return it.fail(err)
}

// readByte reads the next chunk-stream byte, honoring a byte deferred by
// resolveIndexZeroNotEnd.
func (it *PixelIterator) readByte() (byte, error) {
	if it.havePendingByte {
		it.havePendingByte = false
		return it.pendingByte, nil
	}
	var b [1]byte
	if _, err := io.ReadFull(it.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
