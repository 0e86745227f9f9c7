/*
Package gamedata reads a game source tree into plain asset data.

The tree follows the original source layout: map dimensions come from
constants/map_constants.asm, tileset ids from
constants/tileset_constants.asm, per-map headers with their connection
directives from data/maps/headers/, and the binary assets from
maps/*.blk, gfx/blocksets/*.bst and gfx/tilesets/*.2bpp. Constants
name maps in UPPER_CASE while the binary files use CamelCase base
names, so assets are matched by progressively looser name forms.

Scanning is tolerant of gaps: a map with no header, tileset or block
file is still listed so the caller can report exactly what is missing.
*/
package gamedata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brynnb/pokemon-online/overworld"
)

const (
	mapConstantsFile     = "constants/map_constants.asm"
	tilesetConstantsFile = "constants/tileset_constants.asm"
	headersDir           = "data/maps/headers"
	mapsDir              = "maps"
	blocksetsDir         = "gfx/blocksets"
	tilesetsDir          = "gfx/tilesets"

	// Maps on the overworld tileset join the stitched outdoor world
	// and store their block rows bottom-up.
	overworldTileset = 0
)

// A Tileset is one tileset constant with whatever binary assets were
// found for it. Tiles and Blockset stay nil when no file matched.
type Tileset struct {
	ID       int
	Name     string
	Tiles    []byte // raw 2bpp records
	Blockset []byte // raw blockset records
}

// A Map is one map constant joined with its header and block data.
// TilesetID is -1 when no header bound the map to a tileset; Blocks
// stays nil when no block file matched. Block rows are kept exactly as
// stored in the file.
type Map struct {
	ID        int
	Name      string // constant name, e.g. PALLET_TOWN
	Label     string // header label, e.g. PalletTown
	Width     int    // in blocks
	Height    int    // in blocks
	TilesetID int
	Overworld bool
	Blocks    []byte
}

// A Connection is one connection directive with its endpoints resolved
// to map ids. ToID is -1 when the target constant is not defined, so
// the stitch phase can report the dangling edge.
type Connection struct {
	FromID    int
	Direction overworld.Direction
	To        string // target map constant name
	ToID      int
	Offset    int
}

// Assets is everything one scan of a game source tree produced.
type Assets struct {
	Tilesets    []Tileset
	Maps        []Map
	Connections []Connection
}

type assetDir struct {
	names []string
	data  map[string][]byte
}

// readAssetDir loads every file with the given extension. A missing
// directory reads as empty rather than failing, since partial trees
// are reported per map.
func readAssetDir(dir, ext string) (*assetDir, error) {
	ad := &assetDir{data: make(map[string][]byte)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ad, nil
		}
		return nil, fmt.Errorf("gamedata: read %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("gamedata: read %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ext)
		ad.names = append(ad.names, name)
		ad.data[name] = b
	}

	return ad, nil
}

// matchAsset finds the asset base name for a map or tileset constant,
// trying the exact name, the name with underscores removed, then
// case-insensitive and substring forms.
func matchAsset(name string, dir *assetDir) (string, bool) {
	if _, ok := dir.data[name]; ok {
		return name, true
	}
	stripped := strings.ReplaceAll(name, "_", "")
	if _, ok := dir.data[stripped]; ok {
		return stripped, true
	}

	for _, k := range dir.names {
		if strings.EqualFold(k, name) || strings.EqualFold(k, stripped) {
			return k, true
		}
	}

	lname, lstripped := strings.ToLower(name), strings.ToLower(stripped)
	for _, k := range dir.names {
		lk := strings.ToLower(k)
		if strings.Contains(lk, lname) || strings.Contains(lk, lstripped) {
			return k, true
		}
	}

	return "", false
}

// lookupTileset resolves a header's tileset constant to an id, trying
// the exact name, then case-insensitive and substring matches. It
// returns -1 when nothing matches.
func lookupTileset(name string, consts []tilesetConst) int {
	for _, c := range consts {
		if c.Name == name {
			return c.ID
		}
	}
	for _, c := range consts {
		if strings.EqualFold(c.Name, name) {
			return c.ID
		}
	}

	lower := strings.ToLower(name)
	for _, c := range consts {
		cl := strings.ToLower(c.Name)
		if strings.Contains(cl, lower) || strings.Contains(lower, cl) {
			return c.ID
		}
	}

	return -1
}

func loadMapConstants(path string) ([]mapConst, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gamedata: open map constants: %w", err)
	}
	defer f.Close()

	out, err := parseMapConstants(f)
	if err != nil {
		return nil, fmt.Errorf("gamedata: parse map constants: %w", err)
	}
	return out, nil
}

func loadTilesetConstants(path string) ([]tilesetConst, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gamedata: open tileset constants: %w", err)
	}
	defer f.Close()

	out, err := parseTilesetConstants(f)
	if err != nil {
		return nil, fmt.Errorf("gamedata: parse tileset constants: %w", err)
	}
	return out, nil
}

// Scan reads the whole source tree under root.
func Scan(root string) (*Assets, error) {
	mapConsts, err := loadMapConstants(filepath.Join(root, mapConstantsFile))
	if err != nil {
		return nil, err
	}
	tilesetConsts, err := loadTilesetConstants(filepath.Join(root, tilesetConstantsFile))
	if err != nil {
		return nil, err
	}

	blk, err := readAssetDir(filepath.Join(root, mapsDir), ".blk")
	if err != nil {
		return nil, err
	}
	bst, err := readAssetDir(filepath.Join(root, blocksetsDir), ".bst")
	if err != nil {
		return nil, err
	}
	bpp, err := readAssetDir(filepath.Join(root, tilesetsDir), ".2bpp")
	if err != nil {
		return nil, err
	}

	a := &Assets{}

	for _, tc := range tilesetConsts {
		ts := Tileset{ID: tc.ID, Name: tc.Name}
		if base, ok := matchAsset(tc.Name, bst); ok {
			ts.Blockset = bst.data[base]
			ts.Tiles = bpp.data[base]
		}
		a.Tilesets = append(a.Tilesets, ts)
	}

	files, err := filepath.Glob(filepath.Join(root, headersDir, "*.asm"))
	if err != nil {
		return nil, fmt.Errorf("gamedata: headers: %w", err)
	}
	sort.Strings(files)

	type boundHeader struct {
		label   string
		tileset int
	}
	bound := make(map[string]boundHeader)

	type headerConns struct {
		fromConst string
		conns     []rawConnection
	}
	var raw []headerConns

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("gamedata: open header: %w", err)
		}
		h, conns, err := parseHeader(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("gamedata: parse %s: %w", filepath.Base(path), err)
		}
		if h == nil {
			continue
		}

		bound[h.MapConst] = boundHeader{
			label:   h.Label,
			tileset: lookupTileset(h.Tileset, tilesetConsts),
		}
		if len(conns) > 0 {
			raw = append(raw, headerConns{fromConst: h.MapConst, conns: conns})
		}
	}

	index := make(map[string]int, len(mapConsts))
	for _, mc := range mapConsts {
		index[mc.Name] = mc.ID
	}

	for _, mc := range mapConsts {
		m := Map{
			ID:        mc.ID,
			Name:      mc.Name,
			Width:     mc.Width,
			Height:    mc.Height,
			TilesetID: -1,
		}
		if bh, ok := bound[mc.Name]; ok {
			m.Label = bh.label
			m.TilesetID = bh.tileset
			m.Overworld = bh.tileset == overworldTileset
		}
		if base, ok := matchAsset(mc.Name, blk); ok {
			m.Blocks = blk.data[base]
		}
		a.Maps = append(a.Maps, m)
	}

	for _, hc := range raw {
		fromID, ok := index[hc.fromConst]
		if !ok {
			continue
		}
		for _, c := range hc.conns {
			d, ok := overworld.ParseDirection(c.Direction)
			if !ok {
				continue
			}
			toID := -1
			if id, ok := index[c.ToConst]; ok {
				toID = id
			}
			a.Connections = append(a.Connections, Connection{
				FromID:    fromID,
				Direction: d,
				To:        c.ToConst,
				ToID:      toID,
				Offset:    c.Offset,
			})
		}
	}

	return a, nil
}
