package grid

import "fmt"

// Window is the side length of the square radar window centered on the robot.
type Window int

// Supported radar window sizes.
const (
	Window7 Window = 7
	Window9 Window = 9

	DefaultWindow = Window9
)

// NewWindow validates a window side. Only the sizes the radar supports are accepted.
func NewWindow(side int) (Window, error) {
	switch Window(side) {
	case Window7, Window9:
		return Window(side), nil
	}
	return 0, fmt.Errorf("unsupported radar window %d (want 7 or 9)", side)
}

// Side returns the side length.
func (w Window) Side() int { return int(w) }

// Half returns the largest absolute offset inside the window.
func (w Window) Half() int { return int(w) / 2 }

// Cells returns the number of cells in the window.
func (w Window) Cells() int { return int(w) * int(w) }

// Contains reports whether c lies inside the window.
func (w Window) Contains(c Coordinate) bool {
	h := w.Half()
	return absInt(int(c.X)) <= h && absInt(int(c.Y)) <= h
}

// Coordinate is the inverse of Coordinate.Index.
func (w Window) Coordinate(idx int) (Coordinate, bool) {
	if idx < 0 || idx >= w.Cells() {
		return Coordinate{}, false
	}
	half := w.Half()
	row, col := idx/w.Side(), idx%w.Side()
	return Coordinate{X: int8(col - half), Y: int8(half - row)}, true
}

// Each visits every window coordinate in index order.
func (w Window) Each(fn func(idx int, c Coordinate)) {
	half := w.Half()
	idx := 0
	for y := half; y >= -half; y-- {
		for x := -half; x <= half; x++ {
			fn(idx, Coordinate{X: int8(x), Y: int8(y)})
			idx++
		}
	}
}
