package qoi

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// encodeHeader writes h's 14-byte big-endian wire representation to w.
func encodeHeader(w io.Writer, h Header) error {
	var buf [HeaderSize]byte
	copy(buf[0:4], MagicBytes)
	binary.BigEndian.PutUint32(buf[4:8], h.Width)
	binary.BigEndian.PutUint32(buf[8:12], h.Height)
	buf[12] = h.Channels
	buf[13] = h.Colorspace
	_, err := w.Write(buf[:])
	return err
}

// decodeHeader reads and validates a 14-byte QOI header from r.
func decodeHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}

	if string(buf[0:4]) != MagicBytes {
		return Header{}, errors.Wrapf(ErrInvalidMagic, "got %q", buf[0:4])
	}

	h := Header{
		Width:      binary.BigEndian.Uint32(buf[4:8]),
		Height:     binary.BigEndian.Uint32(buf[8:12]),
		Channels:   buf[12],
		Colorspace: buf[13],
	}

	if h.Colorspace != ColorspaceSRGB && h.Colorspace != ColorspaceLinear {
		return Header{}, errors.Wrapf(ErrInvalidColorspace, "got %d", h.Colorspace)
	}
	if h.Channels != 3 && h.Channels != 4 {
		return Header{}, errors.Wrapf(ErrInvalidFormat, "channels must be 3 or 4, got %d", h.Channels)
	}

	return h, nil
}
