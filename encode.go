package qoi

import "io"

const maxRunLength = 62

// Encoder holds the running predictor state for a single encode pass: the
// previous pixel, a pending run length, and the 64-entry color table. An
// Encoder is single-use — construct one per image.
type Encoder struct {
	w         io.Writer
	prev      Pixel
	runLength int
	table     colorTable
	err       error
}

// NewEncoder returns an Encoder that writes chunks to w. It does not write
// the header; call Encode for the full header+chunks+end-marker sequence.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, prev: defaultPixel}
}

// Encode writes h's header, then every chunk produced by draining src, then
// the end marker, to w.
//
// Encode surfaces only errors from w; the chunk selector below is total
// over all Pixel inputs, so the encoder itself cannot fail structurally.
func Encode(w io.Writer, h Header, src PixelSource) error {
	if err := encodeHeader(w, h); err != nil {
		return err
	}
	e := NewEncoder(w)
	for {
		p, ok := src.NextPixel()
		if !ok {
			break
		}
		e.writePixel(p)
		if e.err != nil {
			return e.err
		}
	}
	return e.Close()
}

// writePixel runs the chunk-selection priority from the QOI spec for one
// incoming pixel against the encoder's running state.
func (e *Encoder) writePixel(cur Pixel) {
	if e.err != nil {
		return
	}

	if cur == e.prev {
		e.runLength++
		if e.runLength == maxRunLength {
			e.flushRun()
		}
		return
	}

	if e.runLength > 0 {
		e.flushRun()
	}

	if idx, hit := e.table.matchPut(cur); hit {
		e.writeByte(tagIndex | idx)
		e.prev = cur
		return
	}

	if cur.A == e.prev.A {
		dr := int8(cur.R - e.prev.R)
		dg := int8(cur.G - e.prev.G)
		db := int8(cur.B - e.prev.B)

		if fitsInSigned(2, dr) && fitsInSigned(2, dg) && fitsInSigned(2, db) {
			e.writeByte(tagDiff | addBias(dr, 2)<<4 | addBias(dg, 2)<<2 | addBias(db, 2))
			e.prev = cur
			return
		}

		drDg := dr - dg
		dbDg := db - dg
		if fitsInSigned(6, dg) && fitsInSigned(4, drDg) && fitsInSigned(4, dbDg) {
			e.writeByte(tagLuma | addBias(dg, 32))
			e.writeByte(addBias(drDg, 8)<<4 | addBias(dbDg, 8))
			e.prev = cur
			return
		}

		e.writeByte(tagRGB)
		e.writeByte(cur.R)
		e.writeByte(cur.G)
		e.writeByte(cur.B)
		e.prev = cur
		return
	}

	e.writeByte(tagRGBA)
	e.writeByte(cur.R)
	e.writeByte(cur.G)
	e.writeByte(cur.B)
	e.writeByte(cur.A)
	e.prev = cur
}

// flushRun emits a pending OP_RUN chunk and resets the run counter.
func (e *Encoder) flushRun() {
	e.writeByte(tagRun | uint8(e.runLength-1))
	e.runLength = 0
}

// Close flushes any pending run and writes the end marker. Callers that
// drive writePixel directly (rather than via Encode) must call Close
// exactly once when their pixel source is exhausted.
func (e *Encoder) Close() error {
	if e.err != nil {
		return e.err
	}
	if e.runLength > 0 {
		e.flushRun()
	}
	if e.err != nil {
		return e.err
	}
	if _, err := e.w.Write(EndMarker[:]); err != nil {
		e.err = err
	}
	return e.err
}

func (e *Encoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	_, err := e.w.Write([]byte{b})
	e.err = err
}
