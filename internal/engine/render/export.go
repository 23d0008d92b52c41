package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePDF produces a single-page PDF with the image placed at the origin
// at its native pixel dimensions (one point per pixel).
func EncodePDF(img image.Image) ([]byte, error) {
	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())

	pngBytes, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(pngBytes))
	pdf.ImageOptions("qr", 0, 0, w, h, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// EncodeSVG re-encodes the payload and emits the module grid as vector
// rectangles, one per dark module, with the quiet zone as background.
func EncodeSVG(payload string, opts Options) ([]byte, error) {
	bitmap, err := moduleBitmap(payload, opts.ErrorCorrection)
	if err != nil {
		return nil, err
	}

	fill := colorOrDefault(opts.FillColor, DefaultFillColor)
	back := colorOrDefault(opts.BackColor, DefaultBackColor)
	if _, err := ParseHexColor(fill); err != nil {
		return nil, err
	}
	if _, err := ParseHexColor(back); err != nil {
		return nil, err
	}

	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	n := len(bitmap)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`+"\n", size, size, n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`+"\n", n, n, back)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if bitmap[y][x] {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="1" fill="%s"/>`+"\n", x, y, fill)
			}
		}
	}
	b.WriteString("</svg>\n")

	return []byte(b.String()), nil
}
