// Package web provides a real-time dashboard for the arenabot brain
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-arenabot/internal/log"
	"github.com/teslashibe/go-arenabot/pkg/hub"
	"github.com/teslashibe/go-arenabot/pkg/robot"
)

// Server is the web dashboard server. It implements robot.Observer.
type Server struct {
	app  *fiber.App
	port string

	started time.Time

	// State
	state    robot.Snapshot
	hasState bool
	stateMu  sync.RWMutex

	// Hub for websocket broadcast (thread-safe!)
	stateHub *hub.Hub
}

var _ robot.Observer = (*Server)(nil)

// NewServer creates a new web dashboard server
func NewServer(port string) *Server {
	s := &Server{
		port:     port,
		started:  time.Now(),
		stateHub: hub.New("state"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "arenabot dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/state", s.handleState)
	api.Get("/map", s.handleThreatMap)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// App exposes the Fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the web server
func (s *Server) Start() error {
	log.Info("web dashboard", "url", "http://localhost:"+s.port)

	go s.stateHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Warn("web server error", "error", err)
		}
	}()
}

// Observe stores the latest snapshot and broadcasts it to dashboards
func (s *Server) Observe(snap robot.Snapshot) {
	s.stateMu.Lock()
	s.state = snap
	s.hasState = true
	s.stateMu.Unlock()

	if err := s.stateHub.BroadcastJSON(snap); err != nil {
		log.Warn("snapshot encode failed", "error", err)
	}
}

// State returns the latest snapshot and whether one has been observed
func (s *Server) State() (robot.Snapshot, bool) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state, s.hasState
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	s.stateHub.Stop()
	return s.app.Shutdown()
}
