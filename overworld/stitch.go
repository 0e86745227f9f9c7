/*
Package overworld places connected maps into one shared block
coordinate space.

Outdoor maps declare directional connections: north, south, east or
west, a target map, and an alignment offset in blocks. Starting from an
anchor map per connected component, a breadth-first walk over those
edges assigns every reachable map an origin. Reaching a map again
through a different path must produce the same origin; a disagreement
means the connection metadata is self-contradictory, and the whole
component is rejected rather than picking one of the answers.
*/
package overworld

import (
	"errors"
	"fmt"
	"sort"
)

// BorderBlocks is the width of the transition strip drawn from a
// neighboring map at a map boundary. It plays no part in placement
// arithmetic; consumers use it to decide how much of a neighbor to
// resolve near an edge.
const BorderBlocks = 3

// Direction is a cardinal connection direction.
type Direction int

const (
	North Direction = iota + 1
	South
	East
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return "unknown"
}

// ParseDirection maps the lowercase direction keywords used by map
// headers onto Direction values.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "north":
		return North, true
	case "south":
		return South, true
	case "east":
		return East, true
	case "west":
		return West, true
	}
	return 0, false
}

func (d Direction) reverse() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return d
}

var (
	// ErrUnknownTargetMap marks a connection referencing a map outside
	// the supplied set. It is reported per connection, never fatal.
	ErrUnknownTargetMap = errors.New("overworld: unknown target map")

	// ErrInconsistentGraph marks a connected component whose
	// connections disagree about a map's origin.
	ErrInconsistentGraph = errors.New("overworld: inconsistent connection graph")
)

// A MapDescriptor carries the identity and block dimensions the walk
// needs for one map.
type MapDescriptor struct {
	ID     int
	Name   string
	Width  int // in blocks
	Height int // in blocks
}

// A Connection is one directional edge between two maps. North and
// south connections shift the target horizontally by Offset blocks;
// east and west connections shift it vertically. Positive offsets move
// the target right or down.
type Connection struct {
	From      int
	Direction Direction
	To        int
	Offset    int
}

// A Placement is a map origin in the shared space, in blocks.
type Placement struct {
	X int
	Y int
}

// A Dangling records a connection that could not be walked because one
// of its ends was not supplied.
type Dangling struct {
	Connection Connection
	Err        error
}

// A Result is a finished stitch. Placements holds the origin of every
// cleanly placed map keyed by map id; Dangling lists the connections
// whose ends were missing, whose components still place.
type Result struct {
	Placements map[int]Placement
	Dangling   []Dangling
}

type edge struct {
	dir    Direction
	to     int
	offset int
}

// Stitch places every supplied map reachable over the supplied
// connections. Each weakly connected component anchors its lowest map
// id at (0, 0), so the outcome depends only on the inputs, not on
// traversal order. Components whose connections contradict each other
// are dropped from the result and reported through the returned error,
// which may accompany an otherwise valid Result.
func Stitch(maps []MapDescriptor, connections []Connection) (*Result, error) {
	byID := make(map[int]MapDescriptor, len(maps))
	ids := make([]int, 0, len(maps))
	for _, m := range maps {
		if _, ok := byID[m.ID]; !ok {
			ids = append(ids, m.ID)
		}
		byID[m.ID] = m
	}
	sort.Ints(ids)

	res := &Result{Placements: make(map[int]Placement, len(maps))}

	adj := make(map[int][]edge)
	for _, c := range connections {
		from, ok := byID[c.From]
		if !ok {
			res.Dangling = append(res.Dangling, Dangling{
				Connection: c,
				Err: fmt.Errorf("%w: %s edge from absent map %d",
					ErrUnknownTargetMap, c.Direction, c.From),
			})
			continue
		}
		if _, ok := byID[c.To]; !ok {
			res.Dangling = append(res.Dangling, Dangling{
				Connection: c,
				Err: fmt.Errorf("%w: %s %s edge targets absent map %d",
					ErrUnknownTargetMap, from.Name, c.Direction, c.To),
			})
			continue
		}

		adj[c.From] = append(adj[c.From], edge{dir: c.Direction, to: c.To, offset: c.Offset})

		// Walking the edge backwards mirrors the direction and negates
		// the offset, so a component places identically no matter
		// which end the walk reaches first.
		adj[c.To] = append(adj[c.To], edge{dir: c.Direction.reverse(), to: c.From, offset: -c.Offset})
	}

	visited := make(map[int]bool, len(ids))
	var errs []error
	for _, id := range ids {
		if visited[id] {
			continue
		}

		placements, err := stitchComponent(id, byID, adj)
		for pid := range placements {
			visited[pid] = true
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for pid, p := range placements {
			res.Placements[pid] = p
		}
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}

// stitchComponent walks one component breadth-first from its anchor.
// The returned table covers every map the walk reached even when the
// component turns out inconsistent, so the caller can mark them
// visited before discarding the placements.
func stitchComponent(anchor int, byID map[int]MapDescriptor, adj map[int][]edge) (map[int]Placement, error) {
	placements := map[int]Placement{anchor: {}}
	queue := []int{anchor}
	var errs []error

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		p := placements[cur]
		curM := byID[cur]

		for _, e := range adj[cur] {
			toM := byID[e.to]

			var q Placement
			switch e.dir {
			case North:
				q = Placement{X: p.X + e.offset, Y: p.Y - toM.Height}
			case South:
				q = Placement{X: p.X + e.offset, Y: p.Y + curM.Height}
			case West:
				q = Placement{X: p.X - toM.Width, Y: p.Y + e.offset}
			case East:
				q = Placement{X: p.X + curM.Width, Y: p.Y + e.offset}
			}

			if prev, ok := placements[e.to]; ok {
				if prev != q {
					errs = append(errs, fmt.Errorf("%w: %s resolves to (%d, %d) and to (%d, %d) via the %s edge from %s",
						ErrInconsistentGraph, toM.Name, prev.X, prev.Y, q.X, q.Y, e.dir, curM.Name))
				}
				continue
			}

			placements[e.to] = q
			queue = append(queue, e.to)
		}
	}

	if len(errs) > 0 {
		return placements, errors.Join(errs...)
	}
	return placements, nil
}
