package resume

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const photoPixels = 100

type circle struct {
	size int
}

func (c circle) ColorModel() color.Model { return color.AlphaModel }

func (c circle) Bounds() image.Rectangle { return image.Rect(0, 0, c.size, c.size) }

func (c circle) At(x, y int) color.Color {
	r := float64(c.size) / 2
	dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
	if dx*dx+dy*dy <= r*r {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}

// CircularPhoto decodes an image, scales it to size×size on a white
// background and cuts it to a circle. The result is a PNG with a
// transparent outside.
func CircularPhoto(r io.Reader, size int) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	rect := image.Rect(0, 0, size, size)
	flat := image.NewRGBA(rect)
	draw.Draw(flat, rect, image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(flat, rect, src, src.Bounds(), draw.Over, nil)

	out := image.NewNRGBA(rect)
	draw.DrawMask(out, rect, flat, image.Point{}, circle{size: size}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), nil
}
