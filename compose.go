package pokemon

import (
	"crypto/sha1"
	"sync"

	"github.com/brynnb/pokemon-online/block"
	"github.com/brynnb/pokemon-online/gamedata"
	"github.com/brynnb/pokemon-online/mapgrid"
	"github.com/brynnb/pokemon-online/overworld"
	"github.com/brynnb/pokemon-online/tile"
)

// Composer resolves maps against shared tileset state. Assembled
// blocksets are cached per tileset id and rebuilt only when the
// underlying bytes change, so every map sharing a tileset reuses one
// immutable tile and block set. Safe for concurrent use.
type Composer struct {
	classifier *block.Classifier

	mu        sync.Mutex
	blocksets map[int]*blocksetEntry
}

type blocksetEntry struct {
	sum    [sha1.Size]byte
	blocks *block.Set
}

func NewComposer(cfg *Config) *Composer {
	return &Composer{
		classifier: block.NewClassifier(cfg.Collision, cfg.ObstacleThreshold),
		blocksets:  make(map[int]*blocksetEntry),
	}
}

// Blockset returns the assembled blockset for ts, building and caching
// it on first use.
func (c *Composer) Blockset(ts *gamedata.Tileset) (*block.Set, error) {
	h := sha1.New()
	h.Write(ts.Tiles)
	h.Write(ts.Blockset)
	var sum [sha1.Size]byte
	copy(sum[:], h.Sum(nil))

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.blocksets[ts.ID]; ok && e.sum == sum {
		return e.blocks, nil
	}

	tiles, err := tile.NewSet(ts.Name, ts.Tiles)
	if err != nil {
		return nil, err
	}
	blocks, err := block.Assemble(ts.Name, ts.Blockset, tiles)
	if err != nil {
		return nil, err
	}

	c.blocksets[ts.ID] = &blocksetEntry{sum: sum, blocks: blocks}
	return blocks, nil
}

// ResolveMap expands one map into its tile grid. A nil tileset means
// the caller has no graphics for the map's tileset, which resolves to
// an unknown tileset error carrying the map's identity.
func (c *Composer) ResolveMap(m mapgrid.Map, ts *gamedata.Tileset) (*mapgrid.Grid, error) {
	if ts == nil {
		return mapgrid.Resolve(m, nil, c.classifier)
	}

	blocks, err := c.Blockset(ts)
	if err != nil {
		return nil, err
	}

	return mapgrid.Resolve(m, blocks, c.classifier)
}

// ClassifyWalkability reports whether a block permits movement, and
// whether that answer was guessed from the block index rather than read
// from collision data.
func (c *Composer) ClassifyWalkability(tilesetID int, blockIndex uint8) (walkable, heuristic bool) {
	return c.classifier.Classify(tilesetID, blockIndex)
}

// StitchOverworld places the supplied maps into one shared block
// coordinate space.
func (c *Composer) StitchOverworld(maps []overworld.MapDescriptor, connections []overworld.Connection) (*overworld.Result, error) {
	return overworld.Stitch(maps, connections)
}
