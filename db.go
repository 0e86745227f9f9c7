package pokemon

import (
	"crypto/sha1"
	"database/sql"
	"fmt"

	"github.com/brynnb/pokemon-online/block"
	"github.com/brynnb/pokemon-online/gamedata"
	"github.com/brynnb/pokemon-online/mapgrid"
	"github.com/brynnb/pokemon-online/overworld"
	"github.com/brynnb/pokemon-online/tile"
	_ "github.com/mattn/go-sqlite3"
)

// GameDB stores the ingested assets and every resolved result: tilesets
// and their raw tile and block records, map metadata and connections,
// the per-tile grids, rendered block images and the stitched overworld
// positions. The serving layer reads it; nothing here is consulted
// during composition itself.
type GameDB struct {
	db *sql.DB
}

var schema = []string{
	"CREATE TABLE IF NOT EXISTS tilesets (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE)",
	"CREATE TABLE IF NOT EXISTS tileset_tiles (tileset_id INTEGER NOT NULL, tile_index INTEGER NOT NULL, tile_data BLOB NOT NULL, PRIMARY KEY (tileset_id, tile_index), FOREIGN KEY (tileset_id) REFERENCES tilesets(id))",
	"CREATE TABLE IF NOT EXISTS block_images (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, image BLOB NOT NULL)",
	"CREATE TABLE IF NOT EXISTS blocksets (tileset_id INTEGER NOT NULL, block_index INTEGER NOT NULL, block_data BLOB NOT NULL, block_image_id INTEGER, PRIMARY KEY (tileset_id, block_index), FOREIGN KEY (tileset_id) REFERENCES tilesets(id), FOREIGN KEY (block_image_id) REFERENCES block_images(id))",
	"CREATE TABLE IF NOT EXISTS maps (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, label TEXT, width INTEGER NOT NULL, height INTEGER NOT NULL, tileset_id INTEGER, is_overworld INTEGER NOT NULL DEFAULT 0, blk_data BLOB, FOREIGN KEY (tileset_id) REFERENCES tilesets(id))",
	"CREATE TABLE IF NOT EXISTS map_connections (from_map_id INTEGER NOT NULL, direction TEXT NOT NULL, to_map TEXT NOT NULL, to_map_id INTEGER, offset INTEGER NOT NULL, PRIMARY KEY (from_map_id, direction), FOREIGN KEY (from_map_id) REFERENCES maps(id))",
	"CREATE TABLE IF NOT EXISTS tiles (map_id INTEGER NOT NULL, x INTEGER NOT NULL, y INTEGER NOT NULL, global_x INTEGER, global_y INTEGER, tile_index INTEGER NOT NULL, block_index INTEGER NOT NULL, block_x INTEGER NOT NULL, block_y INTEGER NOT NULL, is_walkable INTEGER NOT NULL, PRIMARY KEY (map_id, x, y), FOREIGN KEY (map_id) REFERENCES maps(id))",
	"CREATE TABLE IF NOT EXISTS overworld_map_positions (map_id INTEGER PRIMARY KEY NOT NULL, x INTEGER NOT NULL, y INTEGER NOT NULL, FOREIGN KEY (map_id) REFERENCES maps(id))",
}

func NewGameDB(file string) (*GameDB, error) {
	// Write transactions take the database lock up front and wait for
	// it rather than failing busy, since export workers insert
	// concurrently.
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	for _, query := range schema {
		if _, err = db.Exec(query); err != nil {
			return nil, err
		}
	}

	return &GameDB{
		db: db,
	}, nil
}

func (db *GameDB) Close() error {
	return db.db.Close()
}

func (db *GameDB) addTileset(id int, name string) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO tilesets (id, name) VALUES (?, ?)", id, name); err != nil {
		return err
	}
	return nil
}

// addTilesetTiles replaces the stored tile records for one tileset with
// the 16-byte records of data, indexed in order.
func (db *GameDB) addTilesetTiles(tilesetID int, data []byte) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM tileset_tiles WHERE tileset_id = ?", tilesetID); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO tileset_tiles (tileset_id, tile_index, tile_data) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := 0; i+tile.Size <= len(data); i += tile.Size {
		if _, err := stmt.Exec(tilesetID, i/tile.Size, data[i:i+tile.Size]); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// addBlockImage stores one rendered block image, deduplicated by its
// SHA-1, and returns the row id. Identical blocks across tilesets share
// a row.
func (db *GameDB) addBlockImage(image []byte) (int64, error) {
	h := sha1.New()
	h.Write(image)
	sha := fmt.Sprintf("%X", h.Sum(nil))

	var id int64
	switch err := db.db.QueryRow("SELECT id FROM block_images WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO block_images (sha1, image) VALUES (?, ?)", sha, image)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// addBlock stores one blockset record and its rendered image, if any.
func (db *GameDB) addBlock(tilesetID, index int, record, image []byte) error {
	var imageID sql.NullInt64
	if image != nil {
		id, err := db.addBlockImage(image)
		if err != nil {
			return err
		}
		imageID.Int64 = id
		imageID.Valid = true
	}

	if _, err := db.db.Exec("INSERT OR REPLACE INTO blocksets (tileset_id, block_index, block_data, block_image_id) VALUES (?, ?, ?, ?)", tilesetID, index, record, imageID); err != nil {
		return err
	}
	return nil
}

// addMap stores a map's metadata and raw block data. Maps missing a
// tileset binding or block data are stored with NULLs so their names
// and dimensions survive even when they cannot be resolved.
func (db *GameDB) addMap(m gamedata.Map) error {
	var tileset sql.NullInt64
	if m.TilesetID >= 0 {
		tileset.Int64 = int64(m.TilesetID)
		tileset.Valid = true
	}

	if _, err := db.db.Exec("INSERT OR REPLACE INTO maps (id, name, label, width, height, tileset_id, is_overworld, blk_data) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.Name, m.Label, m.Width, m.Height, tileset, m.Overworld, m.Blocks); err != nil {
		return err
	}
	return nil
}

// addConnection stores one directional edge. Edges whose target never
// resolved to a map id keep a NULL to_map_id; the stitch phase reports
// them as dangling.
func (db *GameDB) addConnection(c gamedata.Connection) error {
	var to sql.NullInt64
	if c.ToID >= 0 {
		to.Int64 = int64(c.ToID)
		to.Valid = true
	}

	if _, err := db.db.Exec("INSERT OR REPLACE INTO map_connections (from_map_id, direction, to_map, to_map_id, offset) VALUES (?, ?, ?, ?, ?)",
		c.FromID, c.Direction.String(), c.To, to, c.Offset); err != nil {
		return err
	}
	return nil
}

// addGrid replaces the stored per-tile rows for one map with the cells
// of g. Coordinates are local; the stitch phase fills global_x and
// global_y for the overworld component.
func (db *GameDB) addGrid(mapID int, g *mapgrid.Grid) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM tiles WHERE map_id = ?", mapID); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO tiles (map_id, x, y, tile_index, block_index, block_x, block_y, is_walkable) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			cell := g.At(x, y)
			if _, err := stmt.Exec(mapID, x, y, cell.Tile, cell.Block, cell.BlockX, cell.BlockY, cell.Walkable); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	return tx.Commit()
}

// SetOverworldPositions replaces the stored overworld placements.
func (db *GameDB) SetOverworldPositions(placements map[int]overworld.Placement) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM overworld_map_positions"); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO overworld_map_positions (map_id, x, y) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for id, p := range placements {
		if _, err := stmt.Exec(id, p.X, p.Y); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// UpdateGlobalCoordinates rewrites a map's global tile coordinates from
// its block placement.
func (db *GameDB) UpdateGlobalCoordinates(mapID int, p overworld.Placement) error {
	if _, err := db.db.Exec("UPDATE tiles SET global_x = x + ?, global_y = y + ? WHERE map_id = ?",
		p.X*block.Side, p.Y*block.Side, mapID); err != nil {
		return err
	}
	return nil
}

// OverworldPositions returns the stored overworld placements keyed by
// map id.
func (db *GameDB) OverworldPositions() (map[int]overworld.Placement, error) {
	rows, err := db.db.Query("SELECT map_id, x, y FROM overworld_map_positions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make(map[int]overworld.Placement)
	for rows.Next() {
		var id int
		var p overworld.Placement
		if err := rows.Scan(&id, &p.X, &p.Y); err != nil {
			return nil, err
		}
		positions[id] = p
	}
	return positions, rows.Err()
}

// FindMapByName returns the stored map with the given constant name, or
// nil if there is none.
func (db *GameDB) FindMapByName(name string) (*mapgrid.Map, error) {
	var m mapgrid.Map
	var tileset sql.NullInt64
	switch err := db.db.QueryRow("SELECT id, name, width, height, tileset_id, is_overworld, blk_data FROM maps WHERE name = ?", name).
		Scan(&m.ID, &m.Name, &m.Width, &m.Height, &tileset, &m.Overworld, &m.Blocks); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		m.TilesetID = -1
		if tileset.Valid {
			m.TilesetID = int(tileset.Int64)
		}
		return &m, nil
	default:
		return nil, err
	}
}

// FindTileset reassembles a stored tileset's raw tile and block records,
// or returns nil if the tileset is not stored.
func (db *GameDB) FindTileset(id int) (*gamedata.Tileset, error) {
	ts := gamedata.Tileset{ID: id}
	switch err := db.db.QueryRow("SELECT name FROM tilesets WHERE id = ?", id).Scan(&ts.Name); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
	default:
		return nil, err
	}

	rows, err := db.db.Query("SELECT tile_data FROM tileset_tiles WHERE tileset_id = ? ORDER BY tile_index", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		ts.Tiles = append(ts.Tiles, data...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.db.Query("SELECT block_data FROM blocksets WHERE tileset_id = ? ORDER BY block_index", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		ts.Blockset = append(ts.Blockset, data...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ts, nil
}

// OverworldMaps lists the stored maps that take part in overworld
// stitching, skipping those whose block data never matched an asset.
func (db *GameDB) OverworldMaps() ([]overworld.MapDescriptor, error) {
	rows, err := db.db.Query("SELECT id, name, width, height FROM maps WHERE is_overworld = 1 AND blk_data IS NOT NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var maps []overworld.MapDescriptor
	for rows.Next() {
		var m overworld.MapDescriptor
		if err := rows.Scan(&m.ID, &m.Name, &m.Width, &m.Height); err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// Connections lists every stored edge. Unresolved targets come back as
// -1 so the stitcher can report them as dangling.
func (db *GameDB) Connections() ([]overworld.Connection, error) {
	rows, err := db.db.Query("SELECT from_map_id, direction, COALESCE(to_map_id, -1), offset FROM map_connections")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []overworld.Connection
	for rows.Next() {
		var c overworld.Connection
		var dir string
		if err := rows.Scan(&c.From, &dir, &c.To, &c.Offset); err != nil {
			return nil, err
		}
		d, ok := overworld.ParseDirection(dir)
		if !ok {
			return nil, fmt.Errorf("pokemon: map %d carries unknown connection direction %q", c.From, dir)
		}
		c.Direction = d
		conns = append(conns, c)
	}
	return conns, rows.Err()
}
