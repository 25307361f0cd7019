package qoi

import "os"

// EncodeFile encodes h and src to a QOI file at path, creating or
// truncating it.
func EncodeFile(path string, h Header, src PixelSource) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Encode(f, h, src)
}

// DecodeFile decodes the QOI file at path into its header and full pixel
// sequence.
func DecodeFile(path string) (Header, []Pixel, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()
	return DecodeAll(f)
}
