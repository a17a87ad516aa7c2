package web

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-arenabot/internal/log"
	"github.com/teslashibe/go-arenabot/pkg/hub"
	"github.com/teslashibe/go-arenabot/pkg/threatmap"
)

// handleHealth reports liveness and the process run id
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"run":     log.RunID(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"clients": s.stateHub.ClientCount(),
	})
}

// handleState returns the latest brain snapshot
func (s *Server) handleState(c *fiber.Ctx) error {
	snap, ok := s.State()
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no snapshot yet",
		})
	}
	return c.JSON(snap)
}

// handleThreatMap returns the latest threat map as text
func (s *Server) handleThreatMap(c *fiber.Ctx) error {
	snap, ok := s.State()
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).SendString("no snapshot yet")
	}
	return c.SendString(RenderThreat(snap.Threat))
}

// handleStateWS streams snapshots, starting with the latest one
func (s *Server) handleStateWS(c *websocket.Conn) {
	var initial []hub.Message
	if snap, ok := s.State(); ok {
		if msg, err := hub.EncodeJSON(snap); err == nil {
			initial = append(initial, msg)
		}
	}
	hub.NewClient(s.stateHub, c, initial...).Run()
}

// RenderThreat draws threat rows top row first: '#' for masked cells,
// digits for low scores and '+' above nine.
func RenderThreat(rows [][]threatmap.Score) string {
	var sb strings.Builder
	for i, row := range rows {
		for _, v := range row {
			switch {
			case v == threatmap.Sentinel:
				sb.WriteByte('#')
			case v > 9:
				sb.WriteByte('+')
			default:
				sb.WriteByte(byte('0' + v))
			}
		}
		if i < len(rows)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
