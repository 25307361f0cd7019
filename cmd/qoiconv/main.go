// Command qoiconv converts a single image file to or from QOI.
//
// Usage:
//
//	qoiconv <input-image>
//
// Any input decodable by the stdlib image package (PNG, JPEG, GIF, or QOI
// itself, via this package's init-time registration) is accepted. QOI
// input is converted to PNG; everything else is converted to QOI. The
// output is written to the working directory, named after the input's stem.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-qoi/qoi"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: qoiconv <input-image>")
		os.Exit(1)
	}
	in := flag.Arg(0)

	if err := convert(in); err != nil {
		fmt.Fprintf(os.Stderr, "qoiconv: %s: %s\n", in, err)
		os.Exit(1)
	}
}

func convert(in string) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("cant open input: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("cant decode input: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))

	var out string
	var encode func(*os.File) error
	if format == "qoi" {
		out = stem + ".png"
		encode = func(w *os.File) error { return png.Encode(w, img) }
	} else {
		out = stem + ".qoi"
		encode = func(w *os.File) error { return qoi.ImageEncode(w, img) }
	}

	w, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("cant open output: %w", err)
	}
	defer w.Close()

	if err := encode(w); err != nil {
		return fmt.Errorf("cant encode output: %w", err)
	}
	return nil
}
