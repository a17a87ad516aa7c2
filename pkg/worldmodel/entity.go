// Package worldmodel holds the robot's short-term picture of the arena:
// where enemies were seen, where they are expected next, and which cells are
// known to be impassable. Everything is expressed in the north-aligned frame of
// the current radar window (see package grid).
package worldmodel

import (
	"fmt"

	"github.com/teslashibe/go-arenabot/pkg/grid"
)

// EnemyID is the opaque per-opponent identifier assigned by the radar.
type EnemyID string

// EnemyPosition is one opponent's last known offset from the robot.
type EnemyPosition struct {
	ID       EnemyID         `json:"id"`
	Position grid.Coordinate `json:"position"`
}

// NewEnemyPosition builds an EnemyPosition.
func NewEnemyPosition(id EnemyID, pos grid.Coordinate) EnemyPosition {
	return EnemyPosition{ID: id, Position: pos}
}

func (e EnemyPosition) String() string {
	return fmt.Sprintf("%s@%v", e.ID, e.Position)
}

// EnemyPositions is the set of sightings from one scan, in insertion order.
// The zero value is empty and ready to use.
type EnemyPositions struct {
	items []EnemyPosition
}

// NewEnemyPositions builds a set from the given sightings, keeping their order.
func NewEnemyPositions(items ...EnemyPosition) EnemyPositions {
	return EnemyPositions{items: append([]EnemyPosition(nil), items...)}
}

// Push appends a sighting.
func (e *EnemyPositions) Push(p EnemyPosition) {
	e.items = append(e.items, p)
}

// Clone returns a set that shares no storage with e.
func (e EnemyPositions) Clone() EnemyPositions {
	return NewEnemyPositions(e.items...)
}

// Len returns the number of sightings.
func (e EnemyPositions) Len() int {
	return len(e.items)
}

// All returns a copy of the sightings in insertion order.
func (e EnemyPositions) All() []EnemyPosition {
	return append([]EnemyPosition(nil), e.items...)
}

// Coordinates returns just the positions, in insertion order.
func (e EnemyPositions) Coordinates() []grid.Coordinate {
	out := make([]grid.Coordinate, len(e.items))
	for i, p := range e.items {
		out[i] = p.Position
	}
	return out
}

// Lookup finds the sighting for id.
func (e EnemyPositions) Lookup(id EnemyID) (grid.Coordinate, bool) {
	for _, p := range e.items {
		if p.ID == id {
			return p.Position, true
		}
	}
	return grid.Coordinate{}, false
}

// At reports whether some enemy was seen at c.
func (e EnemyPositions) At(c grid.Coordinate) (EnemyID, bool) {
	for _, p := range e.items {
		if p.Position == c {
			return p.ID, true
		}
	}
	return "", false
}

// ReOrigin moves the set into a frame whose origin sits at displacement from
// the old one: every position has displacement subtracted. Sightings that end
// up outside window w are dropped, as they can no longer be compared with a
// fresh scan. The result is written to new storage, so copies of e taken
// earlier keep their positions.
func (e *EnemyPositions) ReOrigin(displacement grid.Coordinate, w grid.Window) {
	kept := make([]EnemyPosition, 0, len(e.items))
	for _, p := range e.items {
		p.Position = p.Position.Sub(displacement)
		if w.Contains(p.Position) {
			kept = append(kept, p)
		}
	}
	e.items = kept
}
