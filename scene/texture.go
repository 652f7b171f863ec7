package scene

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Image holds RGBA8 pixels, bottom row first, ready for upload.
type Image struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
}

// LoadImage reads a PNG or JPEG file.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	return decodeImageBytes(path, data)
}

func decodeImageBytes(name string, data []byte) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", name, err)
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	// flip so row 0 is the bottom, matching GL texture coordinates
	out := make([]byte, len(rgba.Pix))
	for y := 0; y < b.Dy(); y++ {
		copy(out[y*rgba.Stride:(y+1)*rgba.Stride], rgba.Pix[(b.Dy()-1-y)*rgba.Stride:])
	}
	return &Image{Name: name, Width: b.Dx(), Height: b.Dy(), Pixels: out}, nil
}
