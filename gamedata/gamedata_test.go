package gamedata

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brynnb/pokemon-online/overworld"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestScan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	writeFile(t, filepath.Join(root, "constants/map_constants.asm"), []byte(`
	map_const PALLET_TOWN,   10,  9 ; $00
	map_const VIRIDIAN_CITY, 20, 18 ; $01
	map_const REDS_HOUSE_1F,  4,  4 ; $25
`))
	writeFile(t, filepath.Join(root, "constants/tileset_constants.asm"), []byte(`
	const_def
	const OVERWORLD
	const REDS_HOUSE
`))
	writeFile(t, filepath.Join(root, "data/maps/headers/PalletTown.asm"), []byte(`
	map_header PalletTown, PALLET_TOWN, OVERWORLD, NORTH
	connection north, ViridianCity, VIRIDIAN_CITY, -5
	connection east, UnknownLand, UNKNOWN_LAND, 2
`))
	writeFile(t, filepath.Join(root, "data/maps/headers/RedsHouse1F.asm"), []byte(`
	map_header RedsHouse1F, REDS_HOUSE_1F, REDS_HOUSE, 0
`))

	palletBlk := bytes.Repeat([]byte{1}, 90)
	writeFile(t, filepath.Join(root, "maps/PalletTown.blk"), palletBlk)

	owTiles := make([]byte, 4*16)
	writeFile(t, filepath.Join(root, "gfx/tilesets/overworld.2bpp"), owTiles)
	owBst := make([]byte, 2*16)
	writeFile(t, filepath.Join(root, "gfx/blocksets/overworld.bst"), owBst)

	a, err := Scan(root)
	require.NoError(t, err)

	require.Len(t, a.Tilesets, 2)
	assert.Equal(t, 0, a.Tilesets[0].ID)
	assert.Equal(t, "OVERWORLD", a.Tilesets[0].Name)
	assert.Equal(t, owBst, a.Tilesets[0].Blockset)
	assert.Equal(t, owTiles, a.Tilesets[0].Tiles)
	assert.Nil(t, a.Tilesets[1].Blockset)

	require.Len(t, a.Maps, 3)

	pallet := a.Maps[0]
	assert.Equal(t, 0, pallet.ID)
	assert.Equal(t, "PALLET_TOWN", pallet.Name)
	assert.Equal(t, "PalletTown", pallet.Label)
	assert.Equal(t, 10, pallet.Width)
	assert.Equal(t, 9, pallet.Height)
	assert.Equal(t, 0, pallet.TilesetID)
	assert.True(t, pallet.Overworld)
	assert.Equal(t, palletBlk, pallet.Blocks)

	viridian := a.Maps[1]
	assert.Equal(t, -1, viridian.TilesetID)
	assert.Nil(t, viridian.Blocks)

	reds := a.Maps[2]
	assert.Equal(t, 1, reds.TilesetID)
	assert.False(t, reds.Overworld)

	require.Len(t, a.Connections, 2)
	assert.Equal(t, Connection{FromID: 0, Direction: overworld.North, To: "VIRIDIAN_CITY", ToID: 1, Offset: -5}, a.Connections[0])
	assert.Equal(t, Connection{FromID: 0, Direction: overworld.East, To: "UNKNOWN_LAND", ToID: -1, Offset: 2}, a.Connections[1])
}

func TestScanMissingConstants(t *testing.T) {
	t.Parallel()

	_, err := Scan(t.TempDir())
	assert.Error(t, err)
}

func TestMatchAsset(t *testing.T) {
	t.Parallel()

	dir := &assetDir{
		names: []string{"CeladonCity", "Route2", "UndergroundPathNS"},
		data: map[string][]byte{
			"CeladonCity":       nil,
			"Route2":            nil,
			"UndergroundPathNS": nil,
		},
	}

	tables := []struct {
		name string
		want string
		ok   bool
	}{
		{"Route2", "Route2", true},
		{"ROUTE_2", "Route2", true},
		{"CELADON_CITY", "CeladonCity", true},
		{"UNDERGROUND_PATH_NS", "UndergroundPathNS", true},
		{"SAFFRON_CITY", "", false},
	}

	for _, table := range tables {
		table := table
		t.Run(table.name, func(t *testing.T) {
			t.Parallel()

			got, ok := matchAsset(table.name, dir)
			assert.Equal(t, table.ok, ok)
			assert.Equal(t, table.want, got)
		})
	}
}

func TestLookupTileset(t *testing.T) {
	t.Parallel()

	consts := []tilesetConst{{"OVERWORLD", 0}, {"REDS_HOUSE", 1}, {"DOJO", 5}}

	assert.Equal(t, 0, lookupTileset("OVERWORLD", consts))
	assert.Equal(t, 1, lookupTileset("reds_house", consts))
	assert.Equal(t, 5, lookupTileset("DOJO_1", consts))
	assert.Equal(t, -1, lookupTileset("SHIP", consts))
}
