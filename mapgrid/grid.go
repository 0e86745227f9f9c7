/*
Package mapgrid expands a map's block indices into a fully resolved
tile grid.

Map data is a row-major run of block indices, one byte per block, of
length width times height in blocks. Outdoor maps joined into the
overworld store their block rows bottom-up; resolution flips them once
so that row 0 of every grid is the visual top, and nothing downstream
inverts again.
*/
package mapgrid

import (
	"errors"
	"fmt"

	"github.com/brynnb/pokemon-online/block"
	"github.com/brynnb/pokemon-online/tile"
)

var (
	// ErrBlockCountMismatch is returned when a map's block data is not
	// exactly width times height bytes.
	ErrBlockCountMismatch = errors.New("mapgrid: block count mismatch")

	// ErrUnknownTileset is returned when a map references a tileset
	// for which no blockset is available.
	ErrUnknownTileset = errors.New("mapgrid: unknown tileset")
)

// A Map is the metadata and raw block data needed to resolve one map.
type Map struct {
	ID        int
	Name      string
	Width     int // in blocks
	Height    int // in blocks
	TilesetID int
	Overworld bool
	Blocks    []byte
}

// A Cell is one tile of a resolved grid.
type Cell struct {
	Tile     uint8 // tile index into the grid's tileset
	Block    uint8 // block index the cell was expanded from
	BlockX   int   // owning block column in the output orientation
	BlockY   int   // owning block row in the output orientation
	Walkable bool
}

// A Grid is a map resolved to per-tile granularity: width*4 by
// height*4 cells in row-major order with row 0 the visual top. Grids
// are rebuilt wholesale, never mutated.
type Grid struct {
	MapID     int
	Name      string
	Width     int // in tiles
	Height    int // in tiles
	Tiles     *tile.Set
	Heuristic bool // walkability came from the threshold guess
	cells     []Cell
}

// Resolve expands m's block data into a Grid using the blockset
// selected by the map's tileset. A nil blockset means the tileset is
// not known to the caller. Walkability is classified per block and
// applies uniformly to the sixteen tiles beneath it.
func Resolve(m Map, blocks *block.Set, cls *block.Classifier) (*Grid, error) {
	if blocks == nil {
		return nil, fmt.Errorf("%w: map %s references tileset %d",
			ErrUnknownTileset, m.Name, m.TilesetID)
	}
	if len(m.Blocks) != m.Width*m.Height {
		return nil, fmt.Errorf("%w: map %s is %dx%d blocks but carries %d indices",
			ErrBlockCountMismatch, m.Name, m.Width, m.Height, len(m.Blocks))
	}

	g := &Grid{
		MapID:  m.ID,
		Name:   m.Name,
		Width:  m.Width * block.Side,
		Height: m.Height * block.Side,
		Tiles:  blocks.Tiles(),
	}
	g.cells = make([]Cell, g.Width*g.Height)

	for by := 0; by < m.Height; by++ {
		src := by
		if m.Overworld {
			src = m.Height - 1 - by
		}
		for bx := 0; bx < m.Width; bx++ {
			bi := m.Blocks[src*m.Width+bx]
			b, err := blocks.Block(int(bi))
			if err != nil {
				return nil, fmt.Errorf("map %s: offset %d: %w", m.Name, src*m.Width+bx, err)
			}

			walkable, heuristic := cls.Classify(m.TilesetID, bi)
			if heuristic {
				g.Heuristic = true
			}

			for ty := 0; ty < block.Side; ty++ {
				for tx := 0; tx < block.Side; tx++ {
					x := bx*block.Side + tx
					y := by*block.Side + ty
					g.cells[y*g.Width+x] = Cell{
						Tile:     b.TileIndex(tx, ty),
						Block:    bi,
						BlockX:   bx,
						BlockY:   by,
						Walkable: walkable,
					}
				}
			}
		}
	}

	return g, nil
}

// At returns the cell at tile coordinates (x, y), with (0, 0) the top
// left corner.
func (g *Grid) At(x, y int) Cell {
	return g.cells[y*g.Width+x]
}

// TileAt returns the decoded pixels for the cell at (x, y).
func (g *Grid) TileAt(x, y int) *tile.Tile {
	return g.Tiles.Tile(int(g.cells[y*g.Width+x].Tile))
}

// Len returns the number of cells in the grid.
func (g *Grid) Len() int {
	return len(g.cells)
}
