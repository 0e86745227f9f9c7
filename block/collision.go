package block

// DefaultThreshold is the obstacle cutoff used for tilesets with no
// collision data: block indices at or above it are guessed to be
// obstacles.
const DefaultThreshold = 32

// A Classifier decides whether a block permits movement.
//
// Collision data is a per-tileset set of block indices known to be
// obstacles. A tileset with any entries at all is classified purely
// from that data: listed blocks are obstacles, everything else is
// walkable. A tileset with no entries falls back to the threshold
// guess, and the result is flagged so callers can tell a guess from
// real data.
type Classifier struct {
	threshold uint8
	obstacles map[int]map[uint8]struct{}
}

// NewClassifier builds a Classifier from per-tileset obstacle block
// indices. A zero threshold selects DefaultThreshold.
func NewClassifier(obstacles map[int][]uint8, threshold uint8) *Classifier {
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	c := &Classifier{
		threshold: threshold,
		obstacles: make(map[int]map[uint8]struct{}, len(obstacles)),
	}
	for ts, ids := range obstacles {
		set := make(map[uint8]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		c.obstacles[ts] = set
	}

	return c
}

// Classify reports whether block index b of tileset ts is walkable,
// and whether that answer came from the threshold heuristic rather
// than collision data.
func (c *Classifier) Classify(ts int, b uint8) (walkable, heuristic bool) {
	if set := c.obstacles[ts]; len(set) > 0 {
		_, obstacle := set[b]
		return !obstacle, false
	}
	return b < c.threshold, true
}
