package worldmodel

import (
	"sort"

	"github.com/teslashibe/go-arenabot/pkg/grid"
)

// Borders is the set of cells a scan showed to be outside the arena.
// It is rebuilt on every scan; the zero value is empty.
type Borders struct {
	cells map[grid.Coordinate]struct{}
}

// NewBorders builds a border set from the given cells.
func NewBorders(cells ...grid.Coordinate) Borders {
	var b Borders
	for _, c := range cells {
		b.Set(c)
	}
	return b
}

// Set marks c as a border cell.
func (b *Borders) Set(c grid.Coordinate) {
	if b.cells == nil {
		b.cells = make(map[grid.Coordinate]struct{})
	}
	b.cells[c] = struct{}{}
}

// IsBorder reports whether c is a known border cell.
func (b Borders) IsBorder(c grid.Coordinate) bool {
	_, ok := b.cells[c]
	return ok
}

// Len returns the number of border cells.
func (b Borders) Len() int {
	return len(b.cells)
}

// Cells returns the border cells sorted top-to-bottom, left-to-right.
func (b Borders) Cells() []grid.Coordinate {
	out := make([]grid.Coordinate, 0, len(b.cells))
	for c := range b.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y > out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Prediction is where one enemy is expected to be after the next tick.
type Prediction struct {
	ID        EnemyID         `json:"id"`
	Predicted grid.Coordinate `json:"predicted"`
	// Moving is false when the enemy had no previous sighting and is assumed to stay put.
	Moving bool `json:"moving"`
}

// Predictions holds one extrapolated position per enemy, in the order of the
// current sighting set.
type Predictions []Prediction

// Coordinates returns the predicted positions.
func (p Predictions) Coordinates() []grid.Coordinate {
	out := make([]grid.Coordinate, len(p))
	for i, pr := range p {
		out[i] = pr.Predicted
	}
	return out
}

// Lookup finds the prediction for id.
func (p Predictions) Lookup(id EnemyID) (grid.Coordinate, bool) {
	for _, pr := range p {
		if pr.ID == id {
			return pr.Predicted, true
		}
	}
	return grid.Coordinate{}, false
}

// Predict extrapolates each enemy one tick ahead assuming constant velocity:
// predicted = current + (current - previous). Both sets must already share a
// frame (see EnemyPositions.ReOrigin). Enemies without a previous sighting are
// predicted to stay where they are. Predictions that leave window w are dropped.
func Predict(current, previous EnemyPositions, w grid.Window) Predictions {
	out := make(Predictions, 0, current.Len())
	for _, cur := range current.items {
		pred := Prediction{ID: cur.ID, Predicted: cur.Position}
		if prev, ok := previous.Lookup(cur.ID); ok {
			pred.Predicted = cur.Position.Add(cur.Position.Sub(prev))
			pred.Moving = true
		}
		if !w.Contains(pred.Predicted) {
			continue
		}
		out = append(out, pred)
	}
	return out
}
