package pokemon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultDataDir   = "pokered"
	defaultDBPath    = "pokemon.db"
	defaultAnchorMap = 0
	defaultScale     = 1
)

// Config carries everything the exporter needs that is not derivable from
// the asset tree itself: where the tree and the database live, which map
// anchors the stored overworld cluster, the collision metadata per tileset,
// and the graphics-sharing aliases between tilesets.
type Config struct {
	// DataDir is the root of the game asset tree.
	DataDir string `yaml:"data_dir"`

	// DBPath is the sqlite database file.
	DBPath string `yaml:"db_path"`

	// AnchorMap is the map id whose connected component is written to the
	// overworld position table.
	AnchorMap int `yaml:"anchor_map"`

	// ObstacleThreshold is the block-index cutoff used when a tileset has
	// no collision entries; 0 selects the built-in default.
	ObstacleThreshold uint8 `yaml:"obstacle_threshold"`

	// Collision lists the non-walkable block indices per tileset id.
	// Tilesets with an entry here are classified from it alone.
	Collision map[int][]uint8 `yaml:"collision"`

	// TilesetAliases redirects graphics lookups for tilesets that share
	// another tileset's tiles and blocks. Keys and values are tileset ids.
	// Aliases apply to graphics only, never to map identity.
	TilesetAliases map[int]int `yaml:"tileset_aliases"`

	// Scale is the integer up-scaling factor for rendered images.
	Scale int `yaml:"scale"`
}

// DefaultConfig returns the configuration used when no file is supplied.
// DOJO and MART carry no graphics of their own and borrow GYM's and
// POKECENTER's respectively.
func DefaultConfig() *Config {
	return &Config{
		DataDir:        defaultDataDir,
		DBPath:         defaultDBPath,
		AnchorMap:      defaultAnchorMap,
		TilesetAliases: map[int]int{5: 7, 2: 6},
		Scale:          defaultScale,
	}
}

// LoadConfig reads a YAML configuration file and fills unset fields with
// their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pokemon: load %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pokemon: unmarshal %s: %w", path, err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.TilesetAliases == nil {
		cfg.TilesetAliases = DefaultConfig().TilesetAliases
	}
	if cfg.Scale < 1 {
		cfg.Scale = defaultScale
	}
}

// ResolveTileset follows the alias table to the tileset whose graphics
// should be used for id. Identity fields keep the original id.
func (cfg *Config) ResolveTileset(id int) int {
	if alias, ok := cfg.TilesetAliases[id]; ok {
		return alias
	}
	return id
}
