package qoi

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func header(w, h uint32) []byte {
	return []byte{'q', 'o', 'i', 'f',
		byte(w >> 24), byte(w >> 16), byte(w >> 8), byte(w),
		byte(h >> 24), byte(h >> 16), byte(h >> 8), byte(h),
		4, 0}
}

// TestDecodeEndMarkerDisambiguation is spec.md scenario S4: a stashed
// OP_INDEX(0) candidate whose "end marker" scan fails must surface
// ErrInvalidFormat.
func TestDecodeEndMarkerDisambiguation(t *testing.T) {
	body := []byte{0x00, 0x00, 0xFE, 0x05, 0x06, 0x07, 0x08, 0x09}
	stream := append(header(1, 1), body...)

	_, it, err := Decode(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = it.Next()
	if err == nil {
		t.Fatal("expected ErrInvalidFormat from a malformed end marker")
	}
	if !isInvalidFormat(err) {
		t.Errorf("got error %v, want wrapped ErrInvalidFormat", err)
	}
}

// TestDecodeLegitimateIndexZero is spec.md scenario S5: a lone 0x00 chunk
// followed by a non-zero byte must be treated as OP_INDEX(0), not the start
// of an end marker.
func TestDecodeLegitimateIndexZero(t *testing.T) {
	body := []byte{0x00, 0xFE, 0x10, 0x20, 0x30}
	body = append(body, EndMarker[:]...)
	stream := append(header(2, 1), body...)

	h, it, err := Decode(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if h.Width != 2 || h.Height != 1 {
		t.Fatalf("unexpected header %v", h)
	}

	p1, err := it.Next()
	if err != nil {
		t.Fatalf("Next() #1: %v", err)
	}
	if p1 != (Pixel{}) {
		t.Errorf("OP_INDEX(0) on a fresh table should be the zero pixel, got %v", p1)
	}

	p2, err := it.Next()
	if err != nil {
		t.Fatalf("Next() #2: %v", err)
	}
	want := Pixel{R: 0x10, G: 0x20, B: 0x30, A: p1.A}
	if p2 != want {
		t.Errorf("Next() #2 = %v, want %v", p2, want)
	}

	if _, err := it.Next(); err != io.EOF {
		t.Errorf("Next() #3 = %v, want io.EOF", err)
	}
}

// TestDecodeInvalidMagic is spec.md scenario S6.
func TestDecodeInvalidMagic(t *testing.T) {
	stream := []byte{0x89, 0x50, 0x4E, 0x47, 0, 0, 0, 1, 0, 0, 0, 1, 4, 0}
	_, _, err := Decode(bytes.NewReader(stream))
	if err == nil {
		t.Fatal("expected ErrInvalidMagic")
	}
	if !isInvalidMagic(err) {
		t.Errorf("got error %v, want wrapped ErrInvalidMagic", err)
	}
}

func TestDecodeRunNeverExceeds62(t *testing.T) {
	// An OP_RUN byte stores length-1 in its low 6 bits, so lengths 63 and 64
	// would be the bytes 0xFE and 0xFF, which the format forbids (they collide
	// with the 8-bit tags); verify the
	// decoder still only ever replays the chunk's own declared length.
	stream := append(header(62, 1), 0xFD) // OP_RUN(62)
	stream = append(stream, EndMarker[:]...)

	_, pixels, err := DecodeAll(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(pixels) != 62 {
		t.Fatalf("got %d pixels, want 62", len(pixels))
	}
}

func TestDecodeStrictPixelCountMismatch(t *testing.T) {
	stream := append(header(4, 1), EndMarker[:]...)
	_, _, err := DecodeStrict(bytes.NewReader(stream))
	if err == nil {
		t.Fatal("expected ErrInvalidFormat for a pixel-count mismatch")
	}
	if !isInvalidFormat(err) {
		t.Errorf("got error %v, want wrapped ErrInvalidFormat", err)
	}
}

func TestDecodeOPDiffAndLuma(t *testing.T) {
	// OP_DIFF: dr=+1 dg=-1 db=0 -> biased nibbles (3,1,2) -> 0b01_11_01_10
	diffByte := tagDiff | (3 << 4) | (1 << 2) | 2
	// OP_LUMA: dg=+2 (bias32->34), dr-dg=+1 (bias8->9), db-dg=-1 (bias8->7)
	lumaByte := tagLuma | 34
	lumaByte2 := byte(9<<4 | 7)

	stream := append(header(2, 1), diffByte, lumaByte, lumaByte2)
	stream = append(stream, EndMarker[:]...)

	_, pixels, err := DecodeAll(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}

	want := []Pixel{
		{R: 1, G: 255, B: 0, A: 255}, // prev(0,0,0,255) + (1,-1,0)
	}
	p1 := want[0]
	dg := int8(2)
	dr := dg + 1
	db := dg - 1
	want = append(want, Pixel{
		R: p1.R + uint8(dr),
		G: p1.G + uint8(dg),
		B: p1.B + uint8(db),
		A: p1.A,
	})

	if diff := cmp.Diff(want, pixels); diff != "" {
		t.Errorf("decoded pixels mismatch (-want +got):\n%s", diff)
	}
}
