package pokemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brynnb/pokemon-online/block"
	"github.com/brynnb/pokemon-online/gamedata"
	"github.com/brynnb/pokemon-online/mapgrid"
	"github.com/brynnb/pokemon-online/overworld"
	"github.com/brynnb/pokemon-online/tile"
)

func testTileset(nTiles, nBlocks int) *gamedata.Tileset {
	return &gamedata.Tileset{
		ID:       0,
		Name:     "overworld",
		Tiles:    make([]byte, nTiles*tile.Size),
		Blockset: make([]byte, nBlocks*block.Size),
	}
}

func TestComposerBlocksetCache(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())
	ts := testTileset(4, 2)

	first, err := c.Blockset(ts)
	require.NoError(t, err)
	second, err := c.Blockset(ts)
	require.NoError(t, err)
	assert.Same(t, first, second)

	rebuilt, err := c.Blockset(testTileset(4, 3))
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
	assert.Equal(t, 3, rebuilt.Len())
}

func TestComposerResolveMap(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())

	m := mapgrid.Map{ID: 1, Name: "pallet", Width: 2, Height: 2, Blocks: make([]byte, 4)}

	g, err := c.ResolveMap(m, testTileset(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 8, g.Width)
	assert.Equal(t, 8, g.Height)

	_, err = c.ResolveMap(m, nil)
	assert.ErrorIs(t, err, mapgrid.ErrUnknownTileset)
}

func TestComposerClassifyWalkability(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Collision = map[int][]uint8{0: {10}}
	c := NewComposer(cfg)

	walkable, heuristic := c.ClassifyWalkability(0, 10)
	assert.False(t, walkable)
	assert.False(t, heuristic)

	walkable, heuristic = c.ClassifyWalkability(0, 11)
	assert.True(t, walkable)
	assert.False(t, heuristic)

	_, heuristic = c.ClassifyWalkability(9, 0)
	assert.True(t, heuristic)
}

func TestComposerStitchOverworld(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())

	res, err := c.StitchOverworld(
		[]overworld.MapDescriptor{
			{ID: 0, Name: "pallet", Width: 10, Height: 9},
			{ID: 12, Name: "route1", Width: 10, Height: 18},
		},
		[]overworld.Connection{{From: 0, Direction: overworld.North, To: 12}},
	)
	require.NoError(t, err)
	assert.Equal(t, overworld.Placement{X: 0, Y: -18}, res.Placements[12])
}
