package qoi

import (
	"image"
	"image/color"
	"image/draw"
	"io"
)

// ImageDecode decodes a QOI stream into an *image.NRGBA, for use with the
// stdlib image package.
func ImageDecode(r io.Reader) (image.Image, error) {
	h, pixels, err := DecodeAll(r)
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(h.Width), int(h.Height)))
	for i, p := range pixels {
		img.SetNRGBA(i%int(h.Width), i/int(h.Width), color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A})
	}
	return img, nil
}

// ImageDecodeConfig decodes only the 14-byte QOI header from r.
func ImageDecodeConfig(r io.Reader) (image.Config, error) {
	h, err := decodeHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		Width:      int(h.Width),
		Height:     int(h.Height),
		ColorModel: color.NRGBAModel,
	}, nil
}

// ImageEncode writes m to w as a QOI stream. Images that are not already
// *image.NRGBA are converted via image/draw first.
func ImageEncode(w io.Writer, m image.Image) error {
	nrgba := asNRGBA(m)
	b := nrgba.Bounds()

	h := Header{
		Width:      uint32(b.Dx()),
		Height:     uint32(b.Dy()),
		Channels:   4,
		Colorspace: ColorspaceSRGB,
	}
	return Encode(w, h, newImagePixelSource(nrgba))
}

// asNRGBA returns m itself if it is already *image.NRGBA, otherwise a
// freshly drawn NRGBA copy.
func asNRGBA(m image.Image) *image.NRGBA {
	if n, ok := m.(*image.NRGBA); ok {
		return n
	}
	dst := image.NewNRGBA(m.Bounds())
	draw.Draw(dst, dst.Bounds(), m, m.Bounds().Min, draw.Src)
	return dst
}

func init() {
	image.RegisterFormat("qoi", MagicBytes, ImageDecode, ImageDecodeConfig)
}
