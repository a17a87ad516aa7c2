package config

import (
	"fmt"
	"os"
)

// Default ports.
const (
	DefaultArenaPort     = "7450"
	DefaultDashboardPort = "8080"
)

// ArenaAddress returns the arena server address from ARENA_ADDR.
// Falls back to the provided default if not set.
func ArenaAddress(defaultAddr string) string {
	if addr := os.Getenv("ARENA_ADDR"); addr != "" {
		return addr
	}
	return defaultAddr
}

// ArenaAddressRequired returns the arena server address from ARENA_ADDR.
// Exits if not set.
func ArenaAddressRequired() string {
	addr := os.Getenv("ARENA_ADDR")
	if addr == "" {
		fmt.Fprintln(os.Stderr, "Error: ARENA_ADDR environment variable is required")
		fmt.Fprintln(os.Stderr, "Usage: ARENA_ADDR=192.168.68.80:7450 go run ./cmd/arenabot -hardware remote")
		os.Exit(1)
	}
	return addr
}

// ArenaWebSocketURL returns the websocket endpoint of an arena server.
func ArenaWebSocketURL(addr string) string {
	return fmt.Sprintf("ws://%s/ws/robot", addr)
}

// ArenaStatusURL returns the HTTP status endpoint of an arena server.
func ArenaStatusURL(addr string) string {
	return fmt.Sprintf("http://%s/api/status", addr)
}
