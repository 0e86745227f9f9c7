package pokemon

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"

	"github.com/brynnb/pokemon-online/block"
	"github.com/brynnb/pokemon-online/gamedata"
	"github.com/brynnb/pokemon-online/mapgrid"
	"github.com/brynnb/pokemon-online/render"
)

func (e *Exporter) produceMaps(ctx context.Context, maps []gamedata.Map) (<-chan gamedata.Map, <-chan error, error) {
	out := make(chan gamedata.Map)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, m := range maps {
			select {
			case out <- m:
			case <-ctx.Done():
				errc <- errors.New("export cancelled")
				return
			}
		}
	}()
	return out, errc, nil
}

func (e *Exporter) mapWorker(ctx context.Context, tilesets map[int]gamedata.Tileset, in <-chan gamedata.Map) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for m := range in {
			if err := e.exportMap(tilesets, m); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

// exportMap stores one map and, when its assets are complete, its
// resolved grid. Malformed asset data is logged and skipped rather than
// aborting the rest of the export; only storage failures propagate.
func (e *Exporter) exportMap(tilesets map[int]gamedata.Tileset, m gamedata.Map) error {
	if err := e.db.addMap(m); err != nil {
		return err
	}

	if m.Blocks == nil {
		e.logger.Printf("No block data for \"%s\", skipping grid\n", m.Name)
		return nil
	}
	if m.TilesetID < 0 {
		e.logger.Printf("No tileset for \"%s\", skipping grid\n", m.Name)
		return nil
	}

	effective := e.cfg.ResolveTileset(m.TilesetID)

	var ts *gamedata.Tileset
	if t, ok := tilesets[effective]; ok {
		ts = &t
	}

	grid, err := e.composer.ResolveMap(mapgrid.Map{
		ID:        m.ID,
		Name:      m.Name,
		Width:     m.Width,
		Height:    m.Height,
		TilesetID: effective,
		Overworld: m.Overworld,
		Blocks:    m.Blocks,
	}, ts)
	if err != nil {
		e.logger.Printf("Skipping grid for \"%s\": %v\n", m.Name, err)
		return nil
	}

	return e.db.addGrid(m.ID, grid)
}

// exportTileset stores a tileset's raw records and a rendered image per
// block. Tilesets with missing or malformed graphics keep their name
// row so maps may still reference them.
func (e *Exporter) exportTileset(ts gamedata.Tileset) error {
	if err := e.db.addTileset(ts.ID, ts.Name); err != nil {
		return err
	}

	if len(ts.Tiles) == 0 {
		e.logger.Printf("No tile graphics for tileset \"%s\"\n", ts.Name)
		return nil
	}
	if err := e.db.addTilesetTiles(ts.ID, ts.Tiles); err != nil {
		return err
	}

	if len(ts.Blockset) == 0 {
		e.logger.Printf("No blockset for tileset \"%s\"\n", ts.Name)
		return nil
	}

	blocks, err := e.composer.Blockset(&ts)
	if err != nil {
		e.logger.Printf("Skipping blockset for \"%s\": %v\n", ts.Name, err)
		return nil
	}

	for i := 0; i < blocks.Len(); i++ {
		img, err := render.Block(blocks, i)
		if err != nil {
			return err
		}

		b := new(bytes.Buffer)
		if err := png.Encode(b, img); err != nil {
			return err
		}

		if err := e.db.addBlock(ts.ID, i, ts.Blockset[i*block.Size:(i+1)*block.Size], b.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Export ingests the asset tree, stores every tileset and map, and
// resolves each complete map's tile grid through a pool of workers
// sharing the composer's cached tilesets.
func (e *Exporter) Export() error {
	assets, err := gamedata.Scan(e.cfg.DataDir)
	if err != nil {
		return err
	}

	tilesets := make(map[int]gamedata.Tileset, len(assets.Tilesets))
	for _, ts := range assets.Tilesets {
		tilesets[ts.ID] = ts
		if err := e.exportTileset(ts); err != nil {
			return err
		}
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	maps, errc, err := e.produceMaps(ctx, assets.Maps)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < 10; i++ {
		errc, err := e.mapWorker(ctx, tilesets, maps)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	if err := waitForPipeline(errcList...); err != nil {
		return err
	}

	for _, c := range assets.Connections {
		if err := e.db.addConnection(c); err != nil {
			return err
		}
	}

	return nil
}
