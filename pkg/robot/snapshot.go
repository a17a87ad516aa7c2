package robot

import (
	"time"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/threatmap"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

// Snapshot is a copy of the Brain's state for dashboards and logs.
type Snapshot struct {
	Time        time.Time                  `json:"time"`
	Window      int                        `json:"window"`
	Pose        grid.RobotPosition         `json:"pose"`
	Enemies     []worldmodel.EnemyPosition `json:"enemies"`
	Predictions worldmodel.Predictions     `json:"predictions"`
	Borders     []grid.Coordinate          `json:"borders"`
	Threat      [][]threatmap.Score        `json:"threat"`
	LastAction  string                     `json:"lastAction,omitempty"`
	Stats       Stats                      `json:"stats"`
}

// Snapshot copies the current state.
func (b *Brain) Snapshot() Snapshot {
	return Snapshot{
		Time:        time.Now(),
		Window:      b.opts.Window.Side(),
		Pose:        b.pose,
		Enemies:     b.tracker.Current().All(),
		Predictions: append(worldmodel.Predictions(nil), b.tracker.Predictions()...),
		Borders:     b.tracker.Borders().Cells(),
		Threat:      b.threat.Rows(),
		LastAction:  b.lastAction,
		Stats:       b.stats,
	}
}
