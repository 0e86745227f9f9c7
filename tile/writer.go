package tile

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"sort"

	"github.com/ericpauley/go-quantize/quantize"
)

type encoder struct {
	w io.Writer
}

// shadeMap ranks a palette lightest to darkest so palette index i maps
// to a 2-bit shade.
func shadeMap(p color.Palette) []uint8 {
	luma := func(c color.Color) uint32 {
		r, g, b, _ := c.RGBA()
		return 299*r + 587*g + 114*b
	}

	order := make([]int, len(p))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return luma(p[order[i]]) > luma(p[order[j]])
	})

	shades := make([]uint8, len(p))
	for rank, i := range order {
		shades[i] = uint8(rank)
	}
	return shades
}

func (e *encoder) encode(m *image.Paletted) error {
	shades := shadeMap(m.Palette)
	tx, ty := m.Rect.Dx()/Width, m.Rect.Dy()/Height

	var rec [Size]byte
	for t := 0; t < tx*ty; t++ {
		ox := t % tx * Width
		oy := t / tx * Height

		rec = [Size]byte{}
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				s := shades[m.ColorIndexAt(ox+x, oy+y)]
				bit := uint(Width - 1 - x)
				rec[y] |= s & 1 << bit
				rec[planeBytes+y] |= s >> 1 & 1 << bit
			}
		}

		if _, err := e.w.Write(rec[:]); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the Image m to w as packed 2bpp tile records, left to
// right and top to bottom. The image dimensions must be non-zero
// multiples of the tile size. An image without a four shade palette is
// first quantized down to four colors, which are then ranked lightest
// to darkest.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || b.Dx()%Width != 0 || b.Dy()%Height != 0 {
		return errors.New("tile: image is wrong size")
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok {
			pm = image.NewPaletted(b, cp)
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					pm.Set(x, y, cp.Convert(m.At(x, y)))
				}
			}
		}
	}
	if pm == nil || len(pm.Palette) > numShades {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, numShades), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	e := encoder{w: w}

	return e.encode(pm)
}
