// Package grid provides the egocentric coordinate and heading algebra used by
// the rest of the navigation stack.
//
// All stored spatial data lives in a north-aligned frame centered on the robot
// at the moment of its last radar scan. Scan-local offsets are converted into
// that frame once, at the sensing boundary, with Coordinate.OrientateNorth.
package grid

import "fmt"

// Orientation is an absolute heading. The four values form a group under
// quarter-turn rotation: North+1 = East, West+1 = North.
type Orientation uint8

const (
	North Orientation = iota
	East
	South
	West
)

// orientationCount is the group order.
const orientationCount = 4

// Orientations lists all headings in clockwise order starting at North.
var Orientations = [orientationCount]Orientation{North, East, South, West}

// OrientationFromInt maps 0..3 to North..West.
// Compass hardware reports 1..4, callers subtract one first.
func OrientationFromInt(i int) (Orientation, error) {
	if i < 0 || i >= orientationCount {
		return North, fmt.Errorf("orientation out of range: %d", i)
	}
	return Orientation(i), nil
}

// ParseOrientation parses "north", "east", "south" or "west" (also N/E/S/W).
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "north", "North", "N", "n":
		return North, nil
	case "east", "East", "E", "e":
		return East, nil
	case "south", "South", "S", "s":
		return South, nil
	case "west", "West", "W", "w":
		return West, nil
	}
	return North, fmt.Errorf("unknown orientation %q", s)
}

// Right returns the heading after a clockwise quarter-turn.
func (o Orientation) Right() Orientation {
	return (o + 1) % orientationCount
}

// Left returns the heading after a counter-clockwise quarter-turn.
func (o Orientation) Left() Orientation {
	return (o + orientationCount - 1) % orientationCount
}

// Add composes two rotations, treating other as a number of clockwise quarter-turns.
func (o Orientation) Add(other Orientation) Orientation {
	return (o + other) % orientationCount
}

// Relative returns the rotation that takes from onto o, so that
// from.Add(o.Relative(from)) == o.
func (o Orientation) Relative(from Orientation) Orientation {
	return (o + orientationCount - from) % orientationCount
}

// Forward returns the unit step for moving ahead with this heading, in the
// north-aligned frame (North is +Y, East is +X).
func (o Orientation) Forward() Coordinate {
	switch o {
	case North:
		return Coordinate{X: 0, Y: 1}
	case East:
		return Coordinate{X: 1, Y: 0}
	case South:
		return Coordinate{X: 0, Y: -1}
	case West:
		return Coordinate{X: -1, Y: 0}
	}
	panic(fmt.Sprintf("grid: invalid orientation %d", uint8(o)))
}

func (o Orientation) String() string {
	switch o {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return fmt.Sprintf("orientation(%d)", uint8(o))
}

// MarshalText encodes the heading by name.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes a heading name.
func (o *Orientation) UnmarshalText(b []byte) error {
	v, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
