/*
Package block implements blockset decoding and the block walkability
policy.

A blockset is a run of 16 byte records, one record per block. Each
record is a 4 by 4 grid of tile indices into the blockset's tileset,
read row-major with the top-left tile first, so one block covers 32 by
32 pixels. Map data addresses blocks by their record index.
*/
package block

import (
	"errors"
	"fmt"

	"github.com/brynnb/pokemon-online/tile"
)

const (
	// Side is the width and height of a block in tiles.
	Side = 4

	// Size is the encoded size of one blockset record, one byte per
	// tile.
	Size = Side * Side
)

var (
	// ErrTruncatedBlockset is returned when blockset data is not a
	// whole number of records.
	ErrTruncatedBlockset = errors.New("block: truncated blockset")

	// ErrTileIndexOutOfRange is returned when a record references a
	// tile its tileset does not have.
	ErrTileIndexOutOfRange = errors.New("block: tile index out of range")

	// ErrBlockIndexOutOfRange is returned when map data references a
	// block its blockset does not have.
	ErrBlockIndexOutOfRange = errors.New("block: block index out of range")
)

// A Block is one decoded blockset record: a 4 by 4 grid of tile
// indices.
type Block [Size]uint8

// TileIndex returns the tile index at (x, y) within the block, with
// (0, 0) the top-left corner.
func (b *Block) TileIndex(x, y int) uint8 {
	return b[y*Side+x]
}

// A Set is a decoded blockset bound to the tileset its records index
// into, immutable once assembled and safe to share between goroutines.
type Set struct {
	name   string
	tiles  *tile.Set
	blocks []Block
}

// Assemble decodes blockset data against a tileset, checking every
// record byte against the tileset's tile count.
func Assemble(name string, data []byte, tiles *tile.Set) (*Set, error) {
	n, rem := len(data)/Size, len(data)%Size
	if rem != 0 {
		return nil, fmt.Errorf("%w: %s: %d bytes decodes %d whole blocks with %d left over",
			ErrTruncatedBlockset, name, len(data), n, rem)
	}

	s := &Set{name: name, tiles: tiles, blocks: make([]Block, n)}
	for i := range s.blocks {
		copy(s.blocks[i][:], data[i*Size:(i+1)*Size])
		for j, ti := range s.blocks[i] {
			if int(ti) >= tiles.Len() {
				return nil, fmt.Errorf("%w: %s: block %d byte %d references tile %d of tileset %s (%d tiles)",
					ErrTileIndexOutOfRange, name, i, j, ti, tiles.Name(), tiles.Len())
			}
		}
	}

	return s, nil
}

// Name returns the name the set was assembled with.
func (s *Set) Name() string {
	return s.name
}

// Len returns the number of blocks in the set.
func (s *Set) Len() int {
	return len(s.blocks)
}

// Tiles returns the tileset the set was assembled against.
func (s *Set) Tiles() *tile.Set {
	return s.tiles
}

// Block returns block i, or ErrBlockIndexOutOfRange if the set has no
// such record.
func (s *Set) Block(i int) (*Block, error) {
	if i < 0 || i >= len(s.blocks) {
		return nil, fmt.Errorf("%w: %d of %s (%d blocks)",
			ErrBlockIndexOutOfRange, i, s.name, len(s.blocks))
	}
	return &s.blocks[i], nil
}
