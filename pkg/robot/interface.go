// Package robot connects the navigation stack to the robot's hardware.
//
// Hardware access follows the Interface Segregation Principle: radar, motor,
// arm and compass are separate small interfaces composed into Hardware.
// Consumers should depend only on the interfaces they actually use.
package robot

import (
	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/radar"
)

// Radar provides radar sweeps.
type Radar interface {
	// RadarReady reports whether a fresh sweep is available.
	RadarReady() bool
	// Scan returns the sweep for a window of side w, in the robot's local frame.
	Scan(w grid.Window) (radar.Scan, error)
}

// Motor moves the robot by one cell or turns it by a quarter.
type Motor interface {
	MotorReady() bool
	StepForward() error
	StepBackward() error
	TurnLeft() error
	TurnRight() error
}

// Arm attacks the cell directly ahead.
type Arm interface {
	ArmReady() bool
	Stab() error
}

// Compass reports the absolute heading. It is read once at startup.
type Compass interface {
	Heading() (grid.Orientation, error)
}

// Hardware is the composite interface the Brain drives.
type Hardware interface {
	Radar
	Motor
	Arm
	Compass
}

// Observer receives a snapshot after every step that changed the Brain's state.
// Observe is called on the control loop goroutine and must not block.
type Observer interface {
	Observe(Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

// Observe calls f(s).
func (f ObserverFunc) Observe(s Snapshot) { f(s) }

// Observers fans a snapshot out to several observers in order. nil entries
// are skipped.
type Observers []Observer

// Observe forwards s to every observer.
func (obs Observers) Observe(s Snapshot) {
	for _, o := range obs {
		if o != nil {
			o.Observe(s)
		}
	}
}

// Ensure RemoteHardware implements Hardware
var _ Hardware = (*RemoteHardware)(nil)

// actuate runs the motor primitive for d.
func actuate(m Motor, d grid.Direction) error {
	switch d {
	case grid.Front:
		return m.StepForward()
	case grid.Back:
		return m.StepBackward()
	case grid.Left:
		return m.TurnLeft()
	case grid.Right:
		return m.TurnRight()
	}
	panic("robot: invalid direction " + d.String())
}
