package textures

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/mrjoshuak/go-openexr/exr"
)

// decodeImage reads any registered image format into tightly packed RGBA8.
// With flip set the rows are stored bottom-up, as GL samples them.
func decodeImage(path string, flip bool) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	if flip {
		flipRows(rgba.Pix, rgba.Stride, b.Dy())
	}
	return rgba, nil
}

// resizeSquare scales img to size x size. Cubemap faces must agree.
func resizeSquare(img *image.RGBA, size int) *image.RGBA {
	if img.Bounds().Dx() == size && img.Bounds().Dy() == size {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// decodeEXR reads an OpenEXR image as float RGBA, bottom row first.
func decodeEXR(path string) (w, h int, pix []float32, err error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return 0, 0, nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	img, err := exr.DecodeFile(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	w, h = img.Rect.Dx(), img.Rect.Dy()
	pix = make([]float32, 0, w*h*4)
	for y := h - 1; y >= 0; y-- {
		row := img.Pix[y*w*img.Stride : (y+1)*w*img.Stride]
		if img.Stride == 4 {
			pix = append(pix, row...)
			continue
		}
		for x := 0; x < w; x++ {
			px := row[x*img.Stride:]
			pix = append(pix, px[0], px[1], px[2], 1)
		}
	}
	return w, h, pix, nil
}

func flipRows(pix []byte, stride, rows int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
