// Package tracking keeps the robot's short-term memory of enemies across
// radar scans and extrapolates where they are heading.
package tracking

import (
	"fmt"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/radar"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

// Tracker owns the current and previous enemy sighting sets and the borders
// of the latest scan.
type Tracker struct {
	window grid.Window

	current  worldmodel.EnemyPositions
	previous worldmodel.EnemyPositions
	borders  worldmodel.Borders

	predictions worldmodel.Predictions
	scans       uint64
}

// New creates a tracker for the given radar window.
func New(window grid.Window) *Tracker {
	return &Tracker{window: window}
}

// Ingest folds one radar scan into the tracker. pose is the robot pose at the
// moment of the scan, in the frame of the previous scan: its position is the
// net displacement since that scan, its orientation the heading the new scan
// was taken with.
//
// The order matters: the previous sightings must be shifted into the new
// frame before they are compared with the fresh ones.
func (t *Tracker) Ingest(scan radar.Scan, pose grid.RobotPosition) error {
	// 1. current sightings become the previous ones
	t.current, t.previous = t.previous, t.current

	// 2. shift them into the frame centered on where the robot is now
	t.previous.ReOrigin(pose.Position, t.window)

	// 3. read the new scan
	enemies, borders, err := radar.Interpret(scan, pose.Orientation, t.window)
	if err != nil {
		return fmt.Errorf("interpret scan %d: %w", t.scans+1, err)
	}
	t.current = enemies
	t.borders = borders

	// 4. extrapolate one tick ahead
	t.predictions = worldmodel.Predict(t.current, t.previous, t.window)
	t.scans++

	return nil
}

// Window returns the radar window the tracker was built for.
func (t *Tracker) Window() grid.Window {
	return t.window
}

// Current returns a copy of the sightings from the latest scan.
func (t *Tracker) Current() worldmodel.EnemyPositions {
	return t.current.Clone()
}

// Previous returns the sightings from the scan before, re-expressed in the
// latest scan's frame. The result is a copy.
func (t *Tracker) Previous() worldmodel.EnemyPositions {
	return t.previous.Clone()
}

// Borders returns the border cells of the latest scan.
func (t *Tracker) Borders() worldmodel.Borders {
	return t.borders
}

// Predictions returns the one-tick-ahead estimate for every current enemy.
func (t *Tracker) Predictions() worldmodel.Predictions {
	return t.predictions
}

// Scans returns how many scans have been ingested.
func (t *Tracker) Scans() uint64 {
	return t.scans
}
