package protocol

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/radar"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

// =============================================================================
// Conversions between wire payloads and domain types
// =============================================================================

// NewScanData encodes a radar frame
func NewScanData(f *radar.Frame) ScanData {
	data := ScanData{Size: f.Size(), Rows: f.Rows()}
	for c, id := range f.Bots() {
		data.Bots = append(data.Bots, BotData{X: c.X, Y: c.Y, ID: string(id)})
	}
	return data
}

// Frame decodes the scan into a radar frame for window w
func (s ScanData) Frame(w grid.Window) (*radar.Frame, error) {
	if s.Size != w.Side() {
		return nil, fmt.Errorf("%w: got %d, want %d", radar.ErrWindowMismatch, s.Size, w.Side())
	}
	bots := make(map[grid.Coordinate]worldmodel.EnemyID, len(s.Bots))
	for _, b := range s.Bots {
		bots[grid.NewCoordinate(b.X, b.Y)] = worldmodel.EnemyID(b.ID)
	}
	return radar.NewFrame(w, s.Rows, bots)
}

// ActionFor maps a robot action to its wire name
func ActionFor(d grid.Direction) string {
	switch d {
	case grid.Front:
		return ActionForward
	case grid.Back:
		return ActionBackward
	case grid.Left:
		return ActionTurnLeft
	case grid.Right:
		return ActionTurnRight
	}
	return ""
}

// DirectionFor maps a wire action name back to a robot action
func DirectionFor(action string) (grid.Direction, error) {
	switch action {
	case ActionForward:
		return grid.Front, nil
	case ActionBackward:
		return grid.Back, nil
	case ActionTurnLeft:
		return grid.Left, nil
	case ActionTurnRight:
		return grid.Right, nil
	}
	return 0, fmt.Errorf("unknown motor action %q", action)
}

// NewMotorMessage creates a motor command message
func NewMotorMessage(d grid.Direction) (*Message, error) {
	return NewMessage(TypeMotor, MotorCommand{Action: ActionFor(d)})
}

// NewScanMessage creates a radar sweep request
func NewScanMessage(w grid.Window) (*Message, error) {
	return NewMessage(TypeScan, ScanRequest{Size: w.Side()})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response to a ping
func NewPongMessage(ping PingData) (*Message, error) {
	now := time.Now().UnixMilli()
	return NewMessage(TypePong, PongData{
		ID:        ping.ID,
		PingTS:    ping.Timestamp,
		PongTS:    now,
		LatencyMs: now - ping.Timestamp,
	})
}
