package radar

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

var (
	// ErrSensorDesync means the radar reported an enemy cell without an
	// identifier. The radar and the arena disagree; nothing downstream can be trusted.
	ErrSensorDesync = errors.New("radar: enemy cell without identifier")

	// ErrWindowMismatch means the scan size differs from the configured window.
	ErrWindowMismatch = errors.New("radar: scan size does not match window")
)

// Interpret reads one scan taken while the robot faced heading and returns the
// enemies and border cells it shows, re-expressed in the north-aligned frame.
func Interpret(scan Scan, heading grid.Orientation, w grid.Window) (worldmodel.EnemyPositions, worldmodel.Borders, error) {
	var (
		enemies worldmodel.EnemyPositions
		borders worldmodel.Borders
	)

	if scan.Size() != w.Side() {
		return enemies, borders, fmt.Errorf("%w: got %d, want %d", ErrWindowMismatch, scan.Size(), w.Side())
	}

	half := int8(w.Half())
	for y := half; y >= -half; y-- {
		for x := -half; x <= half; x++ {
			if x == 0 && y == 0 {
				continue
			}
			coord := grid.NewCoordinate(x, y).OrientateNorth(heading)
			switch scan.At(x, y) {
			case Enemy:
				id, ok := scan.BotAt(x, y)
				if !ok {
					return enemies, borders, fmt.Errorf("%w at (%d,%d)", ErrSensorDesync, x, y)
				}
				enemies.Push(worldmodel.NewEnemyPosition(id, coord))
			case Void:
				borders.Set(coord)
			case Floor, Self:
			}
		}
	}

	return enemies, borders, nil
}
