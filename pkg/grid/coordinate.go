package grid

import "fmt"

// Coordinate is an offset from the window center. Values outside the window
// are representable; only indexing rejects them.
type Coordinate struct {
	X int8 `json:"x"`
	Y int8 `json:"y"`
}

// Origin is the window center, where the robot sits right after a scan.
var Origin = Coordinate{}

// NewCoordinate builds a Coordinate.
func NewCoordinate(x, y int8) Coordinate {
	return Coordinate{X: x, Y: y}
}

// Add translates c by d.
func (c Coordinate) Add(d Coordinate) Coordinate {
	return Coordinate{X: c.X + d.X, Y: c.Y + d.Y}
}

// Sub translates c by -d.
func (c Coordinate) Sub(d Coordinate) Coordinate {
	return Coordinate{X: c.X - d.X, Y: c.Y - d.Y}
}

// Neg mirrors c through the origin.
func (c Coordinate) Neg() Coordinate {
	return Coordinate{X: -c.X, Y: -c.Y}
}

// RotateRight rotates c a quarter-turn clockwise about the origin.
func (c Coordinate) RotateRight() Coordinate {
	return Coordinate{X: c.Y, Y: -c.X}
}

// OrientateNorth re-expresses a scan-local offset (+Y ahead of the robot,
// +X to its right) in the north-aligned frame, given the robot's heading
// when the scan was taken.
func (c Coordinate) OrientateNorth(heading Orientation) Coordinate {
	switch heading {
	case North:
		return c
	case East:
		return c.RotateRight()
	case South:
		return c.RotateRight().RotateRight()
	case West:
		return c.RotateRight().RotateRight().RotateRight()
	}
	panic(fmt.Sprintf("grid: invalid orientation %d", uint8(heading)))
}

// Chebyshev returns the king-move distance between c and d.
func (c Coordinate) Chebyshev(d Coordinate) int {
	dx, dy := absInt(int(c.X)-int(d.X)), absInt(int(c.Y)-int(d.Y))
	if dx > dy {
		return dx
	}
	return dy
}

// Manhattan returns the rook-move distance between c and d.
func (c Coordinate) Manhattan(d Coordinate) int {
	return absInt(int(c.X)-int(d.X)) + absInt(int(c.Y)-int(d.Y))
}

// Index returns the row-major index of c in window w. Row 0 is the top row
// (Y = +half), matching how scans are printed. ok is false when c lies
// outside the window; callers treat that as "unknown", not as an error.
func (c Coordinate) Index(w Window) (idx int, ok bool) {
	if !w.Contains(c) {
		return 0, false
	}
	half := w.Half()
	row := half - int(c.Y)
	col := int(c.X) + half
	return row*w.Side() + col, true
}

// MustIndex is Index for data that must already be window-bounded.
// It panics otherwise.
func (c Coordinate) MustIndex(w Window) int {
	idx, ok := c.Index(w)
	if !ok {
		panic(fmt.Sprintf("grid: coordinate %v outside %dx%d window", c, w.Side(), w.Side()))
	}
	return idx
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
