package grid

import "fmt"

// Direction is a robot-relative action: step forward or backward, or turn in place.
type Direction uint8

const (
	Front Direction = iota
	Back
	Left
	Right
)

// Directions lists every action in policy tie-break priority order.
var Directions = [4]Direction{Front, Back, Right, Left}

func (d Direction) String() string {
	switch d {
	case Front:
		return "front"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// MarshalText encodes the action by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// IsTurn reports whether the action only changes heading.
func (d Direction) IsTurn() bool {
	return d == Left || d == Right
}

// RobotPosition is the robot pose inside the current radar window's frame.
// Position returns to the origin each time a scan is ingested and
// accumulates one offset per executed step in between.
type RobotPosition struct {
	Position    Coordinate  `json:"position"`
	Orientation Orientation `json:"orientation"`
}

// NewRobotPosition returns a pose at the window origin.
func NewRobotPosition(heading Orientation) RobotPosition {
	return RobotPosition{Orientation: heading}
}

// After returns the pose that results from taking the action.
func (p RobotPosition) After(d Direction) RobotPosition {
	switch d {
	case Front:
		p.Position = p.Position.Add(p.Orientation.Forward())
	case Back:
		p.Position = p.Position.Sub(p.Orientation.Forward())
	case Left:
		p.Orientation = p.Orientation.Left()
	case Right:
		p.Orientation = p.Orientation.Right()
	default:
		panic(fmt.Sprintf("grid: invalid direction %d", uint8(d)))
	}
	return p
}

// TakeStep applies the action to the pose.
func (p *RobotPosition) TakeStep(d Direction) {
	*p = p.After(d)
}

// ResetOrigin re-centers the pose on the window origin, keeping the heading.
func (p *RobotPosition) ResetOrigin() {
	p.Position = Origin
}

// Ahead returns the cell directly in front of the robot.
func (p RobotPosition) Ahead() Coordinate {
	return p.Position.Add(p.Orientation.Forward())
}

func (p RobotPosition) String() string {
	return fmt.Sprintf("%v facing %v", p.Position, p.Orientation)
}
