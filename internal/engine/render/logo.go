package render

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// LoadLogo reads a PNG or JPEG logo from disk.
func LoadLogo(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
