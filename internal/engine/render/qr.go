package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

var ErrEncodingOverflow = errors.New("payload exceeds QR symbol capacity")

const (
	// Logo edge length relative to the final image.
	logoRatio = 0.25

	DefaultFillColor       = "#000000"
	DefaultBackColor       = "#FFFFFF"
	DefaultErrorCorrection = "M"
	DefaultSize            = 300
)

type Options struct {
	FillColor       string
	BackColor       string
	ErrorCorrection string // L, M, Q, H
	Size            int    // final edge length in pixels
	Logo            image.Image
}

func recoveryLevel(ec string) (qrcode.RecoveryLevel, error) {
	switch ec {
	case "L":
		return qrcode.Low, nil
	case "M", "":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("invalid error correction level %q", ec)
	}
}

// Generate encodes payload as a QR symbol, paints the modules with the
// requested colors, scales the result to Size x Size with CatmullRom
// resampling and composites the optional logo centered over the middle of the
// image. The symbol version is auto-selected: go-qrcode picks the smallest
// version that fits at the chosen error correction level, and payloads that
// fit no version surface as ErrEncodingOverflow.
func Generate(payload string, opts Options) (*image.RGBA, error) {
	bitmap, err := moduleBitmap(payload, opts.ErrorCorrection)
	if err != nil {
		return nil, err
	}

	fill, err := ParseHexColor(colorOrDefault(opts.FillColor, DefaultFillColor))
	if err != nil {
		return nil, err
	}
	back, err := ParseHexColor(colorOrDefault(opts.BackColor, DefaultBackColor))
	if err != nil {
		return nil, err
	}

	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}

	// One pixel per module, quiet zone included.
	n := len(bitmap)
	native := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if bitmap[y][x] {
				native.Set(x, y, fill)
			} else {
				native.Set(x, y, back)
			}
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), native, native.Bounds(), xdraw.Src, nil)

	if opts.Logo != nil {
		overlayLogo(dst, opts.Logo)
	}

	return dst, nil
}

// overlayLogo scales the logo to a quarter of the image edge and draws it
// centered, preserving the logo's alpha channel.
func overlayLogo(dst *image.RGBA, logo image.Image) {
	size := dst.Bounds().Dx()
	logoSize := int(float64(size) * logoRatio)

	x0 := (size - logoSize) / 2
	y0 := (size - logoSize) / 2
	target := image.Rect(x0, y0, x0+logoSize, y0+logoSize)

	xdraw.CatmullRom.Scale(dst, target, logo, logo.Bounds(), xdraw.Over, nil)
}

// moduleBitmap returns the module grid (quiet zone included) for payload.
func moduleBitmap(payload, ec string) ([][]bool, error) {
	level, err := recoveryLevel(ec)
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.New(payload, level)
	if err != nil {
		// go-qrcode rejects payloads that exceed version 40 capacity (and
		// empty content); both are caller input problems.
		return nil, fmt.Errorf("%w: %v", ErrEncodingOverflow, err)
	}

	return qr.Bitmap(), nil
}

func colorOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
