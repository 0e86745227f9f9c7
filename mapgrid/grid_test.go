package mapgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brynnb/pokemon-online/block"
	"github.com/brynnb/pokemon-online/tile"
)

func testBlocks(t *testing.T, records ...[]byte) *block.Set {
	t.Helper()

	tiles, err := tile.NewSet("tiles", make([]byte, 16*tile.Size))
	require.NoError(t, err)

	var data []byte
	for _, r := range records {
		data = append(data, r...)
	}

	s, err := block.Assemble("blocks", data, tiles)
	require.NoError(t, err)
	return s
}

func seq16() []byte {
	b := make([]byte, block.Size)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func uniform(v byte) []byte {
	b := make([]byte, block.Size)
	for i := range b {
		b[i] = v
	}
	return b
}

func TestResolve(t *testing.T) {
	t.Parallel()

	blocks := testBlocks(t, seq16())
	cls := block.NewClassifier(nil, 0)

	g, err := Resolve(Map{ID: 1, Name: "pallet", Width: 1, Height: 1, Blocks: []byte{0}}, blocks, cls)
	require.NoError(t, err)

	assert.Equal(t, 4, g.Width)
	assert.Equal(t, 4, g.Height)
	assert.Equal(t, 16, g.Len())

	assert.EqualValues(t, 0, g.At(0, 0).Tile)
	assert.EqualValues(t, 3, g.At(3, 0).Tile)
	assert.EqualValues(t, 9, g.At(1, 2).Tile)
	assert.EqualValues(t, 15, g.At(3, 3).Tile)
	assert.Equal(t, 0, g.At(3, 3).BlockX)
	assert.Equal(t, 0, g.At(3, 3).BlockY)

	require.NotNil(t, g.TileAt(0, 0))
	assert.EqualValues(t, 0, g.TileAt(0, 0).At(0, 0))
}

func TestResolveBlockCoordinates(t *testing.T) {
	t.Parallel()

	blocks := testBlocks(t, uniform(0), uniform(1), uniform(2), uniform(3))
	cls := block.NewClassifier(nil, 0)

	g, err := Resolve(Map{Name: "square", Width: 2, Height: 2, Blocks: []byte{0, 1, 2, 3}}, blocks, cls)
	require.NoError(t, err)

	assert.Equal(t, 8, g.Width)
	assert.Equal(t, 8, g.Height)

	c := g.At(5, 6)
	assert.EqualValues(t, 3, c.Block)
	assert.Equal(t, 1, c.BlockX)
	assert.Equal(t, 1, c.BlockY)
	assert.EqualValues(t, 3, c.Tile)

	c = g.At(4, 0)
	assert.EqualValues(t, 1, c.Block)
	assert.Equal(t, 1, c.BlockX)
	assert.Equal(t, 0, c.BlockY)
}

func TestResolveOverworldRowOrder(t *testing.T) {
	t.Parallel()

	blocks := testBlocks(t, uniform(0), uniform(1))
	cls := block.NewClassifier(nil, 0)

	m := Map{Name: "strip", Width: 1, Height: 2, Blocks: []byte{0, 1}}

	g, err := Resolve(m, blocks, cls)
	require.NoError(t, err)
	assert.EqualValues(t, 0, g.At(0, 0).Block)
	assert.EqualValues(t, 1, g.At(0, 4).Block)

	m.Overworld = true
	g, err = Resolve(m, blocks, cls)
	require.NoError(t, err)
	assert.EqualValues(t, 1, g.At(0, 0).Block)
	assert.EqualValues(t, 0, g.At(0, 4).Block)

	// Block coordinates follow the output orientation, not the file
	// order.
	assert.Equal(t, 0, g.At(0, 0).BlockY)
	assert.Equal(t, 1, g.At(0, 4).BlockY)
}

func TestResolveBlockCountMismatch(t *testing.T) {
	t.Parallel()

	blocks := testBlocks(t, uniform(0))
	cls := block.NewClassifier(nil, 0)

	_, err := Resolve(Map{Name: "short", Width: 2, Height: 2, Blocks: []byte{0, 0, 0}}, blocks, cls)
	require.ErrorIs(t, err, ErrBlockCountMismatch)
	assert.Contains(t, err.Error(), "short")
	assert.Contains(t, err.Error(), "2x2")
}

func TestResolveUnknownTileset(t *testing.T) {
	t.Parallel()

	cls := block.NewClassifier(nil, 0)

	_, err := Resolve(Map{Name: "lost", TilesetID: 23, Width: 1, Height: 1, Blocks: []byte{0}}, nil, cls)
	require.ErrorIs(t, err, ErrUnknownTileset)
	assert.Contains(t, err.Error(), "23")
}

func TestResolveBlockIndexOutOfRange(t *testing.T) {
	t.Parallel()

	blocks := testBlocks(t, uniform(0))
	cls := block.NewClassifier(nil, 0)

	_, err := Resolve(Map{Name: "wild", Width: 1, Height: 1, Blocks: []byte{5}}, blocks, cls)
	require.ErrorIs(t, err, block.ErrBlockIndexOutOfRange)
	assert.Contains(t, err.Error(), "wild")
}

func TestResolveWalkability(t *testing.T) {
	t.Parallel()

	blocks := testBlocks(t, uniform(0), uniform(1))
	cls := block.NewClassifier(map[int][]uint8{7: {1}}, 0)

	g, err := Resolve(Map{Name: "gym", TilesetID: 7, Width: 2, Height: 1, Blocks: []byte{0, 1}}, blocks, cls)
	require.NoError(t, err)
	assert.False(t, g.Heuristic)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < block.Side; x++ {
			assert.True(t, g.At(x, y).Walkable, "(%d, %d)", x, y)
			assert.False(t, g.At(x+block.Side, y).Walkable, "(%d, %d)", x+block.Side, y)
		}
	}
}

func TestResolveHeuristicFlag(t *testing.T) {
	t.Parallel()

	blocks := testBlocks(t, uniform(0))
	cls := block.NewClassifier(map[int][]uint8{7: {1}}, 0)

	g, err := Resolve(Map{Name: "cave", TilesetID: 9, Width: 1, Height: 1, Blocks: []byte{0}}, blocks, cls)
	require.NoError(t, err)
	assert.True(t, g.Heuristic)
}

func TestResolveIdempotent(t *testing.T) {
	t.Parallel()

	blocks := testBlocks(t, seq16(), uniform(2))
	cls := block.NewClassifier(nil, 0)

	m := Map{ID: 3, Name: "twice", Width: 2, Height: 1, Overworld: true, Blocks: []byte{1, 0}}

	first, err := Resolve(m, blocks, cls)
	require.NoError(t, err)
	second, err := Resolve(m, blocks, cls)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
