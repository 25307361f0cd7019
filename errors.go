package qoi

import "github.com/pkg/errors"

// Sentinel errors for the three structural failure kinds the decoder can
// surface. Any other error returned from a decode reaches the caller
// unwrapped and represents an I/O failure from the underlying reader.
var (
	ErrInvalidMagic      = errors.New("qoi: invalid magic bytes")
	ErrInvalidColorspace = errors.New("qoi: invalid colorspace")
	ErrInvalidFormat     = errors.New("qoi: malformed chunk stream")
)

func isInvalidMagic(err error) bool      { return errors.Is(err, ErrInvalidMagic) }
func isInvalidColorspace(err error) bool { return errors.Is(err, ErrInvalidColorspace) }
func isInvalidFormat(err error) bool     { return errors.Is(err, ErrInvalidFormat) }
