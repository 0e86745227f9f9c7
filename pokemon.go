/*
Package pokemon is a library for exporting a Game Boy game's map assets
into a database of fully resolved, addressable tile grids.
*/
package pokemon

import (
	"fmt"
	"io"
	"log"

	"github.com/brynnb/pokemon-online/gamedata"
	"github.com/brynnb/pokemon-online/overworld"
	"github.com/brynnb/pokemon-online/render"
)

type Exporter struct {
	db       *GameDB
	cfg      *Config
	composer *Composer
	logger   *log.Logger
}

func New(cfg *Config, logger *log.Logger) (*Exporter, error) {
	db, err := NewGameDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	return &Exporter{
		db:       db,
		cfg:      cfg,
		composer: NewComposer(cfg),
		logger:   logger,
	}, nil
}

func (e *Exporter) Close() error {
	return e.db.Close()
}

// Stitch places the stored overworld maps into one coordinate space and
// persists the component containing the configured anchor map, rebased
// so the anchor sits at the origin. Dangling connections are logged;
// inconsistent components are dropped and reported through the returned
// error after the good component is stored.
func (e *Exporter) Stitch() error {
	maps, err := e.db.OverworldMaps()
	if err != nil {
		return err
	}
	conns, err := e.db.Connections()
	if err != nil {
		return err
	}

	result, stitchErr := e.composer.StitchOverworld(maps, conns)
	for _, d := range result.Dangling {
		e.logger.Printf("%v\n", d.Err)
	}

	placements := componentOf(result.Placements, conns, e.cfg.AnchorMap)
	if len(placements) == 0 {
		if stitchErr != nil {
			return stitchErr
		}
		return fmt.Errorf("pokemon: anchor map %d was not placed", e.cfg.AnchorMap)
	}

	base := placements[e.cfg.AnchorMap]
	for id, p := range placements {
		placements[id] = overworld.Placement{X: p.X - base.X, Y: p.Y - base.Y}
	}

	if err := e.db.SetOverworldPositions(placements); err != nil {
		return err
	}
	for id, p := range placements {
		if err := e.db.UpdateGlobalCoordinates(id, p); err != nil {
			return err
		}
	}

	return stitchErr
}

// componentOf narrows placements to the connected component containing
// anchor, or nil if the anchor was never placed.
func componentOf(placements map[int]overworld.Placement, conns []overworld.Connection, anchor int) map[int]overworld.Placement {
	if _, ok := placements[anchor]; !ok {
		return nil
	}

	adj := make(map[int][]int)
	for _, c := range conns {
		if _, ok := placements[c.From]; !ok {
			continue
		}
		if _, ok := placements[c.To]; !ok {
			continue
		}
		adj[c.From] = append(adj[c.From], c.To)
		adj[c.To] = append(adj[c.To], c.From)
	}

	comp := map[int]overworld.Placement{anchor: placements[anchor]}
	queue := []int{anchor}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, to := range adj[cur] {
			if _, ok := comp[to]; ok {
				continue
			}
			comp[to] = placements[to]
			queue = append(queue, to)
		}
	}

	return comp
}

// Render writes one stored map as a PNG. A scale below 1 uses the
// configured factor.
func (e *Exporter) Render(name string, w io.Writer, scale int) error {
	if scale < 1 {
		scale = e.cfg.Scale
	}

	m, err := e.db.FindMapByName(name)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("pokemon: no map named \"%s\"", name)
	}
	if m.Blocks == nil {
		return fmt.Errorf("pokemon: map \"%s\" has no block data", name)
	}

	var ts *gamedata.Tileset
	if m.TilesetID >= 0 {
		m.TilesetID = e.cfg.ResolveTileset(m.TilesetID)
		if ts, err = e.db.FindTileset(m.TilesetID); err != nil {
			return err
		}
	}

	grid, err := e.composer.ResolveMap(*m, ts)
	if err != nil {
		return err
	}

	return render.WritePNG(w, grid, scale)
}
