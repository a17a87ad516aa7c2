package arena

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/protocol"
)

func startServer(t *testing.T, srv *Server, addr string) *fiber.App {
	t.Helper()
	app := srv.NewApp()
	go app.Listen(addr)
	t.Cleanup(func() { _ = app.Shutdown() })
	time.Sleep(100 * time.Millisecond)
	return app
}

func roundTrip(t *testing.T, ws *websocket.Conn, id uint64, typ protocol.MessageType, data interface{}) *protocol.Message {
	t.Helper()
	msg, err := protocol.NewMessage(typ, data)
	require.NoError(t, err)
	msg.ID = id
	raw, err := msg.Bytes()
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, raw))

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err = ws.ReadMessage()
	require.NoError(t, err)
	reply, err := protocol.ParseMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, id, reply.ID)
	return reply
}

func TestServer_Requests(t *testing.T) {
	a := testArena(t)
	require.NoError(t, a.PlaceRobot(grid.NewCoordinate(5, 5), grid.South))
	require.NoError(t, a.PlaceEnemy("e1", grid.NewCoordinate(5, 3)))

	srv := NewServer(a)
	startServer(t, srv, ":17451")

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:17451/ws/robot/test-brain", nil)
	require.NoError(t, err)
	defer ws.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, srv.RobotCount())
	assert.NotNil(t, srv.GetRobot("test-brain"))

	// readiness
	reply := roundTrip(t, ws, 1, protocol.TypeReady, nil)
	var ready protocol.ReadyData
	require.NoError(t, reply.ParseData(&ready))
	assert.Equal(t, protocol.ReadyData{Radar: true, Motor: true, Arm: true}, ready)

	// compass
	reply = roundTrip(t, ws, 2, protocol.TypeCompass, nil)
	var compass protocol.CompassData
	require.NoError(t, reply.ParseData(&compass))
	assert.Equal(t, "south", compass.Heading)

	// scan: facing south, the enemy two cells south is straight ahead
	reply = roundTrip(t, ws, 3, protocol.TypeScan, protocol.ScanRequest{Size: 9})
	var scan protocol.ScanData
	require.NoError(t, reply.ParseData(&scan))
	assert.Equal(t, 9, scan.Size)
	require.Len(t, scan.Bots, 1)
	assert.Equal(t, protocol.BotData{X: 0, Y: 2, ID: "e1"}, scan.Bots[0])

	// motor
	reply = roundTrip(t, ws, 4, protocol.TypeMotor, protocol.MotorCommand{Action: protocol.ActionTurnLeft})
	require.NoError(t, reply.Err())
	assert.Equal(t, grid.East, a.Robot().Orientation)

	// cooldown surfaces as an error reply
	reply = roundTrip(t, ws, 5, protocol.TypeMotor, protocol.MotorCommand{Action: protocol.ActionForward})
	assert.Equal(t, protocol.TypeError, reply.Type)
	assert.Error(t, reply.Err())

	// bad requests
	reply = roundTrip(t, ws, 6, protocol.TypeScan, protocol.ScanRequest{Size: 8})
	assert.Error(t, reply.Err())
	reply = roundTrip(t, ws, 7, protocol.MessageType("dance"), nil)
	assert.Error(t, reply.Err())

	// ping
	reply = roundTrip(t, ws, 8, protocol.TypePing, protocol.PingData{ID: "p", Timestamp: time.Now().UnixMilli()})
	assert.Equal(t, protocol.TypePong, reply.Type)

	stats := srv.GetStats()
	assert.Equal(t, uint64(8), stats.MessagesReceived)
	assert.Equal(t, uint64(3), stats.Errors)

	ws.Close()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, srv.RobotCount())
}

func TestServer_StatusAPI(t *testing.T) {
	a := testArena(t)
	require.NoError(t, a.PlaceEnemy("e1", grid.NewCoordinate(1, 1)))
	a.Advance(7)

	app := NewServer(a).NewApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status protocol.StatusData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, protocol.StatusData{Name: "arena", Size: 10, Enemies: 1, Robots: 0, Tick: 7}, status)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/map", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "^")
	assert.Contains(t, string(body), "@")
}

func TestServer_RejectsPlainHTTPOnWS(t *testing.T) {
	app := NewServer(testArena(t)).NewApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/robot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
