package tile

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrMalformedTileData is returned when a single tile record is not
	// exactly Size bytes.
	ErrMalformedTileData = errors.New("tile: malformed tile data")

	// ErrTruncatedTileset is returned when tileset data is not a whole
	// number of tile records.
	ErrTruncatedTileset = errors.New("tile: truncated tileset")
)

// DecodeTile unpacks one 16 byte record into a Tile.
func DecodeTile(data []byte) (Tile, error) {
	var t Tile
	if len(data) != Size {
		return t, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedTileData, len(data), Size)
	}

	for y := 0; y < Height; y++ {
		lo, hi := data[y], data[planeBytes+y]
		for x := 0; x < Width; x++ {
			bit := uint(Width - 1 - x)
			t[y*Width+x] = lo>>bit&1 | hi>>bit&1<<1
		}
	}

	return t, nil
}

// A Set is a decoded tileset: the ordered tiles of one graphics bank,
// immutable once constructed and safe to share between goroutines.
type Set struct {
	name  string
	tiles []Tile
}

// NewSet decodes a whole tileset. The name is carried into errors and
// into anything later derived from the set.
func NewSet(name string, data []byte) (*Set, error) {
	n, rem := len(data)/Size, len(data)%Size
	if rem != 0 {
		return nil, fmt.Errorf("%w: %s: %d bytes decodes %d whole tiles with %d left over",
			ErrTruncatedTileset, name, len(data), n, rem)
	}

	s := &Set{name: name, tiles: make([]Tile, n)}
	for i := range s.tiles {
		t, err := DecodeTile(data[i*Size : (i+1)*Size])
		if err != nil {
			return nil, fmt.Errorf("%s: tile %d: %w", name, i, err)
		}
		s.tiles[i] = t
	}

	return s, nil
}

// Name returns the name the set was constructed with.
func (s *Set) Name() string {
	return s.name
}

// Len returns the number of tiles in the set.
func (s *Set) Len() int {
	return len(s.tiles)
}

// Tile returns tile i. The index must be in range; block assembly
// validates every stored index against Len before resolution.
func (s *Set) Tile(i int) *Tile {
	return &s.tiles[i]
}

// Image renders the set as a tile sheet, 16 tiles per row, using the
// four shade palette.
func (s *Set) Image() *image.Paletted {
	rows := (len(s.tiles) + sheetTilesX - 1) / sheetTilesX
	m := image.NewPaletted(image.Rect(0, 0, sheetTilesX*Width, rows*Height), Palette)

	for i := range s.tiles {
		ox := i % sheetTilesX * Width
		oy := i / sheetTilesX * Height
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				m.SetColorIndex(ox+x, oy+y, s.tiles[i].At(x, y))
			}
		}
	}

	return m
}
