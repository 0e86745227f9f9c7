/*
Package render draws resolved maps and blocks into paletted images
using the four shade palette.
*/
package render

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/brynnb/pokemon-online/block"
	"github.com/brynnb/pokemon-online/mapgrid"
	"github.com/brynnb/pokemon-online/tile"
)

// Map draws g into a new paletted image, one image pixel per tile
// pixel.
func Map(g *mapgrid.Grid) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, g.Width*tile.Width, g.Height*tile.Height), tile.Palette)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			t := g.TileAt(x, y)
			ox, oy := x*tile.Width, y*tile.Height
			for py := 0; py < tile.Height; py++ {
				for px := 0; px < tile.Width; px++ {
					m.SetColorIndex(ox+px, oy+py, t.At(px, py))
				}
			}
		}
	}

	return m
}

// Block draws block i of a blockset into a 32 by 32 paletted image.
func Block(blocks *block.Set, i int) (*image.Paletted, error) {
	b, err := blocks.Block(i)
	if err != nil {
		return nil, err
	}

	tiles := blocks.Tiles()
	m := image.NewPaletted(image.Rect(0, 0, block.Side*tile.Width, block.Side*tile.Height), tile.Palette)

	for ty := 0; ty < block.Side; ty++ {
		for tx := 0; tx < block.Side; tx++ {
			t := tiles.Tile(int(b.TileIndex(tx, ty)))
			ox, oy := tx*tile.Width, ty*tile.Height
			for py := 0; py < tile.Height; py++ {
				for px := 0; px < tile.Width; px++ {
					m.SetColorIndex(ox+px, oy+py, t.At(px, py))
				}
			}
		}
	}

	return m, nil
}

// Scale returns m scaled up by an integer factor with hard pixel
// edges. Factors below two return m unchanged.
func Scale(m image.Image, factor int) image.Image {
	if factor <= 1 {
		return m
	}

	b := m.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
	return dst
}

// WritePNG renders g scaled by factor and writes it to w as a PNG.
func WritePNG(w io.Writer, g *mapgrid.Grid, factor int) error {
	if err := png.Encode(w, Scale(Map(g), factor)); err != nil {
		return fmt.Errorf("render: %s: %w", g.Name, err)
	}
	return nil
}
