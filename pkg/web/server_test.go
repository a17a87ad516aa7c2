package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/robot"
	"github.com/teslashibe/go-arenabot/pkg/threatmap"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

func sampleSnapshot() robot.Snapshot {
	m := threatmap.New(grid.Window7, threatmap.DefaultConfig())
	m.Calculate(worldmodel.NewEnemyPositions(worldmodel.NewEnemyPosition("e1", grid.NewCoordinate(0, 2))))
	m.MaskBorder(grid.NewCoordinate(-3, 3))

	return robot.Snapshot{
		Window:     7,
		Pose:       grid.NewRobotPosition(grid.East),
		Enemies:    []worldmodel.EnemyPosition{worldmodel.NewEnemyPosition("e1", grid.NewCoordinate(0, 2))},
		Threat:     m.Rows(),
		LastAction: "back",
	}
}

func TestServer_StateBeforeFirstSnapshot(t *testing.T) {
	s := NewServer("0")

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/state", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_Observe(t *testing.T) {
	s := NewServer("0")
	s.Observe(sampleSnapshot())

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/state", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got struct {
		Window int `json:"window"`
		Pose   struct {
			Orientation string `json:"orientation"`
		} `json:"pose"`
		Enemies    []worldmodel.EnemyPosition `json:"enemies"`
		LastAction string                     `json:"lastAction"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 7, got.Window)
	assert.Equal(t, "east", got.Pose.Orientation)
	assert.Equal(t, "back", got.LastAction)
	require.Len(t, got.Enemies, 1)
	assert.Equal(t, grid.NewCoordinate(0, 2), got.Enemies[0].Position)
}

func TestServer_ThreatMap(t *testing.T) {
	s := NewServer("0")
	s.Observe(sampleSnapshot())

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/map", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	want := "#122210\n" +
		"0123210\n" +
		"0122210\n" +
		"0111110\n" +
		"0000000\n" +
		"0000000\n" +
		"0000000"
	assert.Equal(t, want, string(body))
}

func TestServer_Health(t *testing.T) {
	s := NewServer("0")

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ok", got["status"])
	assert.NotEmpty(t, got["run"])
}

func TestServer_WSRequiresUpgrade(t *testing.T) {
	s := NewServer("0")

	resp, err := s.App().Test(httptest.NewRequest("GET", "/ws/state", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestRenderThreat(t *testing.T) {
	rows := [][]threatmap.Score{{0, 9, 10}, {threatmap.Sentinel, 1, 2}}
	assert.Equal(t, "09+\n#12", RenderThreat(rows))
}
