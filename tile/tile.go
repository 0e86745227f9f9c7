/*
Package tile implements a Game Boy 2bpp tile decoder and encoder.

A tile is 8 by 8 pixels at two bits per pixel, stored as 16 bytes split
into two bit-planes: bytes 0-7 are the low plane, one byte per pixel row
top to bottom, and bytes 8-15 are the high plane for the same eight rows.
Within a row byte, bit 7 is the leftmost pixel, and a pixel's value is
its low-plane bit combined with its high-plane bit shifted left by one,
giving one of four shades from 0 (lightest) to 3 (darkest).

A tileset is a plain concatenation of tile records with no header or
padding, so any multiple of 16 bytes is a valid tileset and a tile index
counts records from the start.
*/
package tile

import "image/color"

const (
	// Width and Height are the pixel dimensions of a single tile.
	Width  = 8
	Height = Width

	// Size is the encoded size of one tile record.
	Size = 16

	tilePixels  = Width * Height
	planeBytes  = Size >> 1
	numShades   = 4
	sheetTilesX = 16
)

// Palette is the four shade ramp used when rendering decoded tiles,
// lightest to darkest.
var Palette = color.Palette{
	color.RGBA{0xff, 0xff, 0xff, 0xff},
	color.RGBA{0xc0, 0xc0, 0xc0, 0xff},
	color.RGBA{0x60, 0x60, 0x60, 0xff},
	color.RGBA{0x00, 0x00, 0x00, 0xff},
}

// A Tile is a single decoded tile, one shade value per pixel in
// row-major order.
type Tile [tilePixels]uint8

// At returns the shade of the pixel at (x, y), in the range 0 to 3.
func (t *Tile) At(x, y int) uint8 {
	return t[y*Width+x]
}
