package robot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-arenabot/internal/config"
	"github.com/teslashibe/go-arenabot/internal/httpc"
	"github.com/teslashibe/go-arenabot/internal/log"
	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/protocol"
	"github.com/teslashibe/go-arenabot/pkg/radar"
)

// ErrClosed is returned by RemoteHardware calls after Close.
var ErrClosed = errors.New("robot: remote hardware closed")

// RemoteHardware implements Hardware over a WebSocket connection to an arena
// server (see cmd/arena). Each call is one request/reply round trip.
//
// Readiness predicates cannot return errors. Once the connection fails they
// report ready, so the Brain's next hardware call surfaces the failure.
type RemoteHardware struct {
	addr    string
	timeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
	err    error // sticky; set once the connection is unusable
}

// DialRemote checks the arena's status endpoint, then opens the robot
// WebSocket. addr is host:port.
func DialRemote(ctx context.Context, addr string, timeout time.Duration) (*RemoteHardware, protocol.StatusData, error) {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	var status protocol.StatusData
	statusCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := httpc.GetJSON(statusCtx, nil, config.ArenaStatusURL(addr), &status); err != nil {
		return nil, status, fmt.Errorf("arena status check failed: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
	}
	conn, _, err := dialer.DialContext(ctx, config.ArenaWebSocketURL(addr), nil)
	if err != nil {
		return nil, status, fmt.Errorf("arena connect failed: %w", err)
	}

	log.Info("connected to arena", "addr", addr, "arena", status.Name, "size", status.Size, "enemies", status.Enemies)
	return &RemoteHardware{addr: addr, timeout: timeout, conn: conn}, status, nil
}

// Close closes the connection.
func (r *RemoteHardware) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == ErrClosed {
		return nil
	}
	r.err = ErrClosed
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(r.timeout))
	return r.conn.Close()
}

// call builds a request of type typ and sends it.
func (r *RemoteHardware) call(typ protocol.MessageType, data, out interface{}) error {
	msg, err := protocol.NewMessage(typ, data)
	if err != nil {
		return err
	}
	return r.send(msg, out)
}

// send stamps msg with the next request id, writes it and decodes the
// matching reply into out.
func (r *RemoteHardware) send(msg *protocol.Message, out interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}

	r.nextID++
	msg.ID = r.nextID

	raw, err := msg.Bytes()
	if err != nil {
		return err
	}

	r.conn.SetWriteDeadline(time.Now().Add(r.timeout))
	if err := r.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		r.err = fmt.Errorf("arena write failed: %w", err)
		return r.err
	}

	r.conn.SetReadDeadline(time.Now().Add(r.timeout))
	_, raw, err = r.conn.ReadMessage()
	r.conn.SetReadDeadline(time.Time{})
	if err != nil {
		r.err = fmt.Errorf("arena read failed: %w", err)
		return r.err
	}

	reply, err := protocol.ParseMessage(raw)
	if err != nil {
		r.err = err
		return err
	}
	if reply.ID != msg.ID {
		r.err = fmt.Errorf("arena reply out of order: got id %d, want %d", reply.ID, msg.ID)
		return r.err
	}
	if err := reply.Err(); err != nil {
		return err
	}
	if out != nil {
		return reply.ParseData(out)
	}
	return nil
}

func (r *RemoteHardware) ready() protocol.ReadyData {
	var rd protocol.ReadyData
	if err := r.call(protocol.TypeReady, nil, &rd); err != nil {
		return protocol.ReadyData{Radar: true, Motor: true, Arm: true}
	}
	return rd
}

// RadarReady implements Radar.
func (r *RemoteHardware) RadarReady() bool { return r.ready().Radar }

// MotorReady implements Motor.
func (r *RemoteHardware) MotorReady() bool { return r.ready().Motor }

// ArmReady implements Arm.
func (r *RemoteHardware) ArmReady() bool { return r.ready().Arm }

// Scan implements Radar.
func (r *RemoteHardware) Scan(w grid.Window) (radar.Scan, error) {
	req, err := protocol.NewScanMessage(w)
	if err != nil {
		return nil, err
	}
	var data protocol.ScanData
	if err := r.send(req, &data); err != nil {
		return nil, err
	}
	return data.Frame(w)
}

func (r *RemoteHardware) motor(d grid.Direction) error {
	req, err := protocol.NewMotorMessage(d)
	if err != nil {
		return err
	}
	var ack protocol.AckData
	if err := r.send(req, &ack); err != nil {
		return err
	}
	if !ack.OK {
		return fmt.Errorf("arena refused %s", d)
	}
	return nil
}

// StepForward implements Motor.
func (r *RemoteHardware) StepForward() error { return r.motor(grid.Front) }

// StepBackward implements Motor.
func (r *RemoteHardware) StepBackward() error { return r.motor(grid.Back) }

// TurnLeft implements Motor.
func (r *RemoteHardware) TurnLeft() error { return r.motor(grid.Left) }

// TurnRight implements Motor.
func (r *RemoteHardware) TurnRight() error { return r.motor(grid.Right) }

// Stab implements Arm.
func (r *RemoteHardware) Stab() error {
	var ack protocol.AckData
	if err := r.call(protocol.TypeArm, nil, &ack); err != nil {
		return err
	}
	if !ack.OK {
		return errors.New("arena refused stab")
	}
	return nil
}

// Heading implements Compass.
func (r *RemoteHardware) Heading() (grid.Orientation, error) {
	var data protocol.CompassData
	if err := r.call(protocol.TypeCompass, nil, &data); err != nil {
		return 0, err
	}
	return grid.ParseOrientation(data.Heading)
}

// Ping measures the round trip to the arena.
func (r *RemoteHardware) Ping() (time.Duration, error) {
	req, err := protocol.NewPingMessage(r.addr)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	var pong protocol.PongData
	if err := r.send(req, &pong); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
