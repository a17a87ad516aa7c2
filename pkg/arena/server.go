package arena

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-arenabot/internal/log"
	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/protocol"
	"github.com/teslashibe/go-arenabot/pkg/radar"
)

// RobotConnection represents a connected brain
type RobotConnection struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send sends a message to the brain
func (r *RobotConnection) Send(msg *protocol.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	return r.Conn.WriteMessage(websocket.TextMessage, data)
}

// Server exposes an Arena's robot body over WebSocket. Every connected
// brain drives the same body; requests are answered in arrival order.
type Server struct {
	arena *Arena

	mu     sync.RWMutex
	robots map[string]*RobotConnection

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	errors           atomic.Uint64
}

// NewServer creates a server for the arena
func NewServer(a *Arena) *Server {
	return &Server{
		arena:  a,
		robots: make(map[string]*RobotConnection),
	}
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (s *Server) RegisterRoutes(app *fiber.App) {
	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Robot connection endpoint
	app.Get("/ws/robot", websocket.New(s.handleRobot))
	app.Get("/ws/robot/:id", websocket.New(s.handleRobot))
}

// handleRobot serves one brain connection
func (s *Server) handleRobot(c *websocket.Conn) {
	robotID := c.Params("id")
	if robotID == "" {
		robotID = uuid.NewString()
	}

	robot := &RobotConnection{
		ID:        robotID,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	s.mu.Lock()
	s.robots[robotID] = robot
	robotCount := len(s.robots)
	s.mu.Unlock()

	log.Info("brain connected", "robot", robotID, "total", robotCount)

	defer func() {
		s.mu.Lock()
		delete(s.robots, robotID)
		robotCount := len(s.robots)
		s.mu.Unlock()

		log.Info("brain disconnected", "robot", robotID, "total", robotCount)
	}()

	// Read loop
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			log.Debug("brain read error", "robot", robotID, "error", err)
			return
		}

		robot.mu.Lock()
		robot.LastSeen = time.Now()
		robot.mu.Unlock()

		s.messagesReceived.Add(1)
		reply := s.handleMessage(data)
		if reply == nil {
			continue
		}
		if err := robot.Send(reply); err != nil {
			log.Warn("reply failed", "robot", robotID, "error", err)
			return
		}
		s.messagesSent.Add(1)
	}
}

// handleMessage answers one request. Unparseable input gets no reply.
func (s *Server) handleMessage(data []byte) *protocol.Message {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.errors.Add(1)
		log.Warn("parse error", "error", err)
		return nil
	}

	reply, err := s.dispatch(msg)
	if err != nil {
		s.errors.Add(1)
		return protocol.NewErrorReply(msg, err)
	}
	return reply
}

func (s *Server) dispatch(msg *protocol.Message) (*protocol.Message, error) {
	switch msg.Type {
	case protocol.TypeReady:
		return protocol.NewReply(msg, protocol.ReadyData{
			Radar: s.arena.RadarReady(),
			Motor: s.arena.MotorReady(),
			Arm:   s.arena.ArmReady(),
		})

	case protocol.TypeScan:
		var req protocol.ScanRequest
		if err := msg.ParseData(&req); err != nil {
			return nil, err
		}
		w, err := grid.NewWindow(req.Size)
		if err != nil {
			return nil, err
		}
		scan, err := s.arena.Scan(w)
		if err != nil {
			return nil, err
		}
		return protocol.NewReply(msg, protocol.NewScanData(scan.(*radar.Frame)))

	case protocol.TypeMotor:
		var cmd protocol.MotorCommand
		if err := msg.ParseData(&cmd); err != nil {
			return nil, err
		}
		d, err := protocol.DirectionFor(cmd.Action)
		if err != nil {
			return nil, err
		}
		if err := s.arena.motor(d); err != nil {
			return nil, err
		}
		return protocol.NewReply(msg, protocol.AckData{OK: true})

	case protocol.TypeArm:
		if err := s.arena.Stab(); err != nil {
			return nil, err
		}
		return protocol.NewReply(msg, protocol.AckData{OK: true})

	case protocol.TypeCompass:
		heading, err := s.arena.Heading()
		if err != nil {
			return nil, err
		}
		return protocol.NewReply(msg, protocol.CompassData{Heading: heading.String()})

	case protocol.TypePing:
		var ping protocol.PingData
		if err := msg.ParseData(&ping); err != nil {
			return nil, err
		}
		pong, err := protocol.NewPongMessage(ping)
		if err != nil {
			return nil, err
		}
		pong.ID = msg.ID
		return pong, nil
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "unknown message type "+string(msg.Type))
}

// RobotCount returns the number of connected brains
func (s *Server) RobotCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.robots)
}

// GetRobot returns a connection by ID
func (s *Server) GetRobot(robotID string) *RobotConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.robots[robotID]
}

// Stats contains server statistics
type Stats struct {
	RobotCount       int    `json:"robot_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	Errors           uint64 `json:"errors"`
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		RobotCount:       s.RobotCount(),
		MessagesReceived: s.messagesReceived.Load(),
		MessagesSent:     s.messagesSent.Load(),
		Errors:           s.errors.Load(),
	}
}

// RobotInfo contains info about a connected brain
type RobotInfo struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// GetRobotInfos returns info about all connected brains
func (s *Server) GetRobotInfos() []RobotInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]RobotInfo, 0, len(s.robots))
	for _, r := range s.robots {
		r.mu.Lock()
		infos = append(infos, RobotInfo{
			ID:        r.ID,
			Connected: r.Connected,
			LastSeen:  r.LastSeen,
		})
		r.mu.Unlock()
	}
	return infos
}

// Status returns the /api/status payload
func (s *Server) Status() protocol.StatusData {
	name, size, enemies, tick := s.arena.Status()
	return protocol.StatusData{
		Name:    name,
		Size:    size,
		Enemies: enemies,
		Robots:  s.RobotCount(),
		Tick:    tick,
	}
}

// RegisterAPIRoutes registers the HTTP API
func (s *Server) RegisterAPIRoutes(api fiber.Router) {
	api.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(s.Status())
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"server": s.GetStats(),
			"arena":  s.arena.Stats(),
		})
	})

	api.Get("/robots", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"robots": s.GetRobotInfos(),
			"count":  s.RobotCount(),
		})
	})

	// Plain-text picture of the whole arena
	api.Get("/map", func(c *fiber.Ctx) error {
		return c.SendString(s.arena.String())
	})
}

// NewApp builds a Fiber app serving the arena
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "arena",
	})
	s.RegisterRoutes(app)
	s.RegisterAPIRoutes(app.Group("/api"))
	return app
}
